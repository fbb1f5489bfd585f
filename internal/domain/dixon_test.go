package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(c Category, points ...int) []Score {
	out := make([]Score, len(points))
	for i, p := range points {
		out[i] = Score{
			Meta:     Meta{ID: fmt.Sprintf("%s-%d", c, i)},
			Category: c,
			Kind:     PanelOfficial,
			Points:   intPtr(p),
		}
	}
	return out
}

// TestOutliers verifies Dixon's test against the 95% table.
func TestOutliers(t *testing.T) {
	policy := DefaultOutlierPolicy()
	testCases := []struct {
		name   string
		scores []Score
		want   []string
	}{
		{
			name:   "low outlier",
			scores: sample(CategoryMusic, 70, 71, 72, 70, 71, 40),
			want:   []string{"music-5"},
		},
		{
			name:   "high outlier",
			scores: sample(CategorySinging, 60, 61, 60, 62, 61, 95),
			want:   []string{"singing-5"},
		},
		{
			name:   "tight panel",
			scores: sample(CategoryPresentation, 70, 72, 74, 71, 73, 75),
			want:   nil,
		},
		{
			name:   "identical scores",
			scores: sample(CategoryMusic, 70, 70, 70, 70),
			want:   nil,
		},
		{
			name:   "sample too small for the table",
			scores: sample(CategoryMusic, 10, 90),
			want:   nil,
		},
		{
			name:   "categories are tested separately",
			scores: append(sample(CategoryMusic, 70, 71, 72, 70, 71, 40), sample(CategorySinging, 40, 41, 42, 40, 41, 40)...),
			want:   []string{"music-5"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Outliers(tc.scores))
		})
	}
}

// TestOutliersIgnoresPracticeAndUnentered verifies the sample composition.
func TestOutliersIgnoresPracticeAndUnentered(t *testing.T) {
	scores := sample(CategoryMusic, 70, 71, 72)
	scores = append(scores,
		Score{Meta: Meta{ID: "practice"}, Category: CategoryMusic, Kind: PanelPractice, Points: intPtr(5)},
		Score{Meta: Meta{ID: "blank"}, Category: CategoryMusic, Kind: PanelOfficial},
	)
	assert.Empty(t, DefaultOutlierPolicy().Outliers(scores))
}

// TestOutliersDisabled verifies that an empty table never flags.
func TestOutliersDisabled(t *testing.T) {
	assert.Empty(t, OutlierPolicy{}.Outliers(sample(CategoryMusic, 70, 71, 72, 70, 71, 40)))
}

// TestDixonPolicy verifies the built-in confidence levels.
func TestDixonPolicy(t *testing.T) {
	for _, confidence := range []int{90, 95, 99} {
		t.Run(fmt.Sprintf("%d", confidence), func(t *testing.T) {
			p, err := DixonPolicy(confidence)
			require.NoError(t, err)
			assert.Len(t, p.Critical, 8)
		})
	}

	_, err := DixonPolicy(80)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	// At 99% a borderline high value passes that fails at 90%.
	borderline := sample(CategoryMusic, 60, 61, 62, 63, 64, 75)
	loose, _ := DixonPolicy(90)
	strict, _ := DixonPolicy(99)
	assert.Equal(t, []string{"music-5"}, loose.Outliers(borderline))
	assert.Empty(t, strict.Outliers(borderline))
}
