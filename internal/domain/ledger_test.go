package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCheckPoints verifies the inclusive [0, 100] range.
func TestCheckPoints(t *testing.T) {
	testCases := []struct {
		name    string
		points  int
		wantErr bool
	}{
		{"minimum", 0, false},
		{"typical", 73, false},
		{"maximum", 100, false},
		{"negative", -1, true},
		{"above maximum", 101, true},
		{"far above", 1000, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPoints(tc.points)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, EntityScore, verr.Entity)
			assert.Equal(t, []string{"points: must be between 0 - 100"}, verr.Errors)
		})
	}
}

// TestEnterScore verifies entry rules and the recalculation that follows.
func TestEnterScore(t *testing.T) {
	f := newContestFixture(t, 1, 1)
	f.accepted(70)
	f.accepted(72)
	f.must(BuildContest(f.s, f.env, f.contest.ID))
	f.must(StartContest(f.s, f.env, f.contest.ID))
	perfs := f.s.PerformancesOf(f.firstSession().ID)
	require.Len(t, perfs, 2)

	t.Run("unknown score", func(t *testing.T) {
		_, err := EnterScore(f.s, f.env, "missing", 70)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	f.must(StartPerformance(f.s, f.env, perfs[0].ID))

	t.Run("performance must be open", func(t *testing.T) {
		c := f.s.Clone()
		p := c.Performances[perfs[0].ID]
		p.Status = PerformanceConfirmed
		c.PutPerformance(p)

		_, err := EnterScore(c, f.env, c.ScoresOfPerformance(p.ID)[0].ID, 70)
		var perr *PreconditionError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "performance_open", perr.Condition)
	})

	t.Run("out of range is rejected without a write", func(t *testing.T) {
		sc := f.s.ScoresOfPerformance(perfs[0].ID)[0]
		_, err := EnterScore(f.s, f.env, sc.ID, 101)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Nil(t, f.s.Scores[sc.ID].Points)
	})

	t.Run("entry recalculates song and performance", func(t *testing.T) {
		scores := f.s.ScoresOfPerformance(perfs[0].ID)
		require.Len(t, scores, 6)
		got, err := EnterScore(f.s, f.env, scores[0].ID, 80)
		require.NoError(t, err)
		assert.Equal(t, 80, *got.Points)

		song := f.s.Songs[scores[0].SongID]
		assert.Equal(t, 80, *song.MusPoints)
		assert.Nil(t, song.TotalPoints)
		assert.Equal(t, 80, *f.s.Performances[perfs[0].ID].MusPoints)
	})

	t.Run("re-entry replaces points", func(t *testing.T) {
		sc := f.s.ScoresOfPerformance(perfs[0].ID)[0]
		_, err := EnterScore(f.s, f.env, sc.ID, 60)
		require.NoError(t, err)
		assert.Equal(t, 60, *f.s.Performances[perfs[0].ID].MusPoints)
	})

	t.Run("validated score is closed", func(t *testing.T) {
		sc := f.s.ScoresOfPerformance(perfs[0].ID)[0]
		f.must(ValidateScore(f.s, f.env, sc.ID))
		_, err := EnterScore(f.s, f.env, sc.ID, 70)
		var perr *PreconditionError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "score_open", perr.Condition)
	})
}

// TestReadinessPredicates verifies the entered and validated checks used as
// preconditions.
func TestReadinessPredicates(t *testing.T) {
	f := newContestFixture(t, 1, 1)
	f.accepted(70)
	f.must(BuildContest(f.s, f.env, f.contest.ID))
	f.must(StartContest(f.s, f.env, f.contest.ID))
	perf := f.s.PerformancesOf(f.firstSession().ID)[0]

	assert.False(t, ScoresEntered(f.s, perf.ID), "no scores yet")
	assert.False(t, SongsEntered(f.s, perf.ID), "no songs yet")

	f.must(StartPerformance(f.s, f.env, perf.ID))
	songs := f.s.SongsOf(perf.ID)
	require.Len(t, songs, 2)
	assert.False(t, SongEntered(f.s, songs[0].ID))
	assert.False(t, ScoresEntered(f.s, perf.ID))

	f.enterTotal(perf.ID, 420)
	assert.True(t, SongEntered(f.s, songs[0].ID))
	assert.True(t, ScoresEntered(f.s, perf.ID))
	assert.True(t, SongsEntered(f.s, perf.ID))
	assert.False(t, ScoresValidated(f.s, perf.ID))
	assert.False(t, ScoresValidated(f.s, perf.SessionID))

	for _, sc := range f.s.ScoresOfPerformance(perf.ID) {
		assert.True(t, ScoreEntered(f.s, sc.ID))
		f.must(ValidateScore(f.s, f.env, sc.ID))
	}
	assert.True(t, ScoresValidated(f.s, perf.ID))
	assert.True(t, ScoresValidated(f.s, perf.SessionID))
	assert.False(t, ScoreEntered(f.s, "missing"))
}
