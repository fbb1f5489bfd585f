package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// contestFixture builds a contest with a full official panel and an admin
// judge directly in a Snapshot.
type contestFixture struct {
	t       *testing.T
	s       *Snapshot
	env     Env
	contest Contest
	seq     int
}

func newContestFixture(t *testing.T, size, rounds int) *contestFixture {
	t.Helper()
	f := &contestFixture{t: t, s: NewSnapshot()}
	f.env = Env{
		NewID:    f.nextID,
		Now:      func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) },
		Shuffle:  SeededShuffler{Seed: 7},
		Outliers: DefaultOutlierPolicy(),
	}

	conv, err := AddConvention(f.s, f.env, Convention{Organization: "BHS", Title: "International", Year: 2024})
	require.NoError(t, err)
	f.contest, err = AddContest(f.s, f.env, Contest{
		ConventionID: conv.ID,
		Kind:         ContestQuartet,
		Size:         size,
		Rounds:       rounds,
	})
	require.NoError(t, err)

	_, err = AddJudge(f.s, f.env, Judge{ContestID: f.contest.ID, Category: CategoryAdmin, Kind: PanelOfficial, Slot: 1})
	require.NoError(t, err)
	for _, c := range ScoringCategories {
		for slot := 1; slot <= size; slot++ {
			_, err := AddJudge(f.s, f.env, Judge{ContestID: f.contest.ID, Category: c, Kind: PanelOfficial, Slot: slot})
			require.NoError(t, err)
		}
	}
	return f
}

func (f *contestFixture) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%04d", f.seq)
}

// accepted adds a quartet contestant and walks it to Accepted.
func (f *contestFixture) accepted(prelim float64) Contestant {
	f.t.Helper()
	g, err := AddGroup(f.s, f.env, Group{Kind: GroupQuartet})
	require.NoError(f.t, err)
	c, err := AddContestant(f.s, f.env, Contestant{ContestID: f.contest.ID, GroupID: g.ID, Prelim: &prelim})
	require.NoError(f.t, err)
	f.must(QualifyContestant(f.s, f.env, c.ID))
	f.must(AcceptContestant(f.s, f.env, c.ID))
	return f.s.Contestants[c.ID]
}

func (f *contestFixture) must(_ TransitionResult, err error) {
	f.t.Helper()
	require.NoError(f.t, err)
}

// enterAll enters points for every score of a performance in
// ScoresOfPerformance order.
func (f *contestFixture) enterAll(performanceID string, points ...int) {
	f.t.Helper()
	scores := f.s.ScoresOfPerformance(performanceID)
	require.Len(f.t, scores, len(points))
	for i, sc := range scores {
		_, err := EnterScore(f.s, f.env, sc.ID, points[i])
		require.NoError(f.t, err)
	}
}

// enterTotal spreads total evenly over every score of a performance, putting
// the remainder on the first score.
func (f *contestFixture) enterTotal(performanceID string, total int) {
	f.t.Helper()
	scores := f.s.ScoresOfPerformance(performanceID)
	points := make([]int, len(scores))
	for i := range points {
		points[i] = total / len(scores)
	}
	points[0] += total % len(scores)
	f.enterAll(performanceID, points...)
}

// firstSession returns the contest's round 1.
func (f *contestFixture) firstSession() Session {
	f.t.Helper()
	sess, ok := f.s.SessionByNum(f.contest.ID, 1)
	require.True(f.t, ok)
	return sess
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
