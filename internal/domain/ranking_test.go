package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	id    string
	total *int
}

func places(ps []Placement[entry]) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		if p.Place == nil {
			out[i] = nil
			continue
		}
		out[i] = *p.Place
	}
	return out
}

func ids(ps []Placement[entry]) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Item.id
	}
	return out
}

func rankEntries(entries ...entry) []Placement[entry] {
	return Rank(entries,
		func(e entry) *int { return e.total },
		func(e entry) string { return e.id })
}

// TestRank verifies competition ranking with tie sharing and skipping.
func TestRank(t *testing.T) {
	testCases := []struct {
		name       string
		entries    []entry
		wantIDs    []string
		wantPlaces []any
	}{
		{
			name: "ties share and the next place skips",
			entries: []entry{
				{"a", intPtr(90)}, {"b", intPtr(90)}, {"c", intPtr(80)}, {"d", intPtr(70)}, {"e", intPtr(70)},
			},
			wantIDs:    []string{"a", "b", "c", "d", "e"},
			wantPlaces: []any{1, 1, 3, 4, 4},
		},
		{
			name: "three way tie",
			entries: []entry{
				{"d", intPtr(50)}, {"a", intPtr(90)}, {"c", intPtr(90)}, {"b", intPtr(90)},
			},
			wantIDs:    []string{"a", "b", "c", "d"},
			wantPlaces: []any{1, 1, 1, 4},
		},
		{
			name: "nil totals last and unplaced",
			entries: []entry{
				{"a", nil}, {"b", intPtr(10)}, {"c", nil}, {"d", intPtr(20)},
			},
			wantIDs:    []string{"d", "b", "a", "c"},
			wantPlaces: []any{1, 2, nil, nil},
		},
		{
			name:       "empty",
			entries:    nil,
			wantIDs:    []string{},
			wantPlaces: []any{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := rankEntries(tc.entries...)
			assert.Equal(t, tc.wantIDs, ids(got))
			assert.Equal(t, tc.wantPlaces, places(got))
		})
	}
}

// TestRankIsReproducible verifies that input order does not affect output.
func TestRankIsReproducible(t *testing.T) {
	forward := rankEntries(entry{"x", intPtr(5)}, entry{"y", intPtr(5)}, entry{"z", intPtr(7)})
	reverse := rankEntries(entry{"z", intPtr(7)}, entry{"y", intPtr(5)}, entry{"x", intPtr(5)})
	assert.Equal(t, ids(forward), ids(reverse))
	assert.Equal(t, places(forward), places(reverse))
}

// TestRankFloats verifies ranking over float values, as used for seeding.
func TestRankFloats(t *testing.T) {
	type seed struct {
		id     string
		prelim *float64
	}
	got := Rank([]seed{{"a", floatPtr(71.2)}, {"b", floatPtr(80.5)}, {"c", floatPtr(71.2)}},
		func(s seed) *float64 { return s.prelim },
		func(s seed) string { return s.id })
	assert.Equal(t, "b", got[0].Item.id)
	assert.Equal(t, 1, *got[0].Place)
	assert.Equal(t, 2, *got[1].Place)
	assert.Equal(t, 2, *got[2].Place)
}
