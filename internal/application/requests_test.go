package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/testutils"
)

// TestEngine_AddValidation tests that malformed requests are rejected with
// field-level messages before reaching the store.
func TestEngine_AddValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Dependencies{})
	c := setupContest(t, e, 1, 2, "Quadrophonics")
	qual := 73.0

	tests := []struct {
		name       string
		add        func() error
		wantEntity string
		wantMsgs   []string
		wantErr    error
	}{
		{
			name: "convention year too early",
			add: func() error {
				_, err := e.AddConvention(ctx, ConventionRequest{Organization: "BHS", Year: 1900})
				return err
			},
			wantEntity: domain.EntityConvention,
			wantMsgs:   []string{"year: must be at least 1938"},
		},
		{
			name: "group missing everything",
			add: func() error {
				_, err := e.AddGroup(ctx, GroupRequest{})
				return err
			},
			wantEntity: domain.EntityGroup,
			wantMsgs:   []string{"name: is required", "kind: is required"},
		},
		{
			name: "contest with unknown kind",
			add: func() error {
				_, err := e.AddContest(ctx, ContestRequest{ConventionID: "x", Kind: "barbershop", Size: 1, Rounds: 1})
				return err
			},
			wantEntity: domain.EntityContest,
			wantMsgs:   []string{"kind: must be one of quartet chorus senior collegiate"},
		},
		{
			name: "contest panel too large",
			add: func() error {
				_, err := e.AddContest(ctx, ContestRequest{ConventionID: "x", Kind: "chorus", Size: 6, Rounds: 1})
				return err
			},
			wantEntity: domain.EntityContest,
			wantMsgs:   []string{"size: must be at most 5"},
		},
		{
			name: "qualifier without score",
			add: func() error {
				_, err := e.AddAward(ctx, AwardRequest{
					ContestID: c.contest.ID, Kind: "quartet", Level: "district", Goal: "qualifier", Rounds: 1,
				})
				return err
			},
			wantEntity: domain.EntityAward,
			wantMsgs:   []string{"qual_score: required when goal is qualifier"},
		},
		{
			name: "award counts too many rounds",
			add: func() error {
				_, err := e.AddAward(ctx, AwardRequest{
					ContestID: c.contest.ID, Kind: "novice", Level: "district", Goal: "qualifier",
					QualScore: &qual, Rounds: 3,
				})
				return err
			},
			wantEntity: domain.EntityAward,
			wantMsgs:   []string{"rounds: cannot exceed the contest's rounds"},
		},
		{
			name: "judge seat taken",
			add: func() error {
				_, err := e.AddJudge(ctx, JudgeRequest{ContestID: c.contest.ID, Category: "music", Kind: "official", Slot: 1})
				return err
			},
			wantEntity: domain.EntityJudge,
			wantMsgs:   []string{"slot: seat already taken"},
			wantErr:    domain.ErrDuplicate,
		},
		{
			name: "judge slot beyond panel size",
			add: func() error {
				_, err := e.AddJudge(ctx, JudgeRequest{ContestID: c.contest.ID, Category: "music", Kind: "official", Slot: 2})
				return err
			},
			wantEntity: domain.EntityJudge,
			wantMsgs:   []string{"slot: must be at most the contest size 1"},
		},
		{
			name: "group entered twice",
			add: func() error {
				_, err := e.AddContestant(ctx, ContestantRequest{ContestID: c.contest.ID, GroupID: c.contestants[0].GroupID})
				return err
			},
			wantEntity: domain.EntityContestant,
			wantErr:    domain.ErrDuplicate,
		},
		{
			name: "session outside rounds",
			add: func() error {
				_, err := e.AddSession(ctx, SessionRequest{ContestID: c.contest.ID, Num: 3})
				return err
			},
			wantEntity: domain.EntitySession,
		},
		{
			name: "singer part unknown",
			add: func() error {
				_, err := e.AddSinger(ctx, SingerRequest{ContestantID: c.contestants[0].ID, PersonID: "p", Part: "soprano"})
				return err
			},
			wantEntity: domain.EntitySinger,
			wantMsgs:   []string{"part: must be one of tenor lead baritone bass"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.add()

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantEntity, verr.Entity)
			for _, msg := range tt.wantMsgs {
				assert.Contains(t, verr.Errors, msg)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// TestEngine_AddReferences tests that dangling references are reported as
// not found.
func TestEngine_AddReferences(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Dependencies{})

	_, err := e.AddContest(ctx, ContestRequest{ConventionID: "missing", Kind: "quartet", Size: 1, Rounds: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.AddPerformance(ctx, PerformanceRequest{SessionID: "missing", ContestantID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestEngine_AddMembers tests seating singers and directors against the
// kind of group they join.
func TestEngine_AddMembers(t *testing.T) {
	ctx := context.Background()
	metrics := testutils.NewMockMetricsCollector()
	e := newTestEngine(t, Dependencies{Metrics: metrics})
	c := setupContest(t, e, 1, 1, "Ringmasters")
	quartet := c.contestants[0]

	chorusGroup, err := e.AddGroup(ctx, GroupRequest{Name: "Westminster Chorus", Kind: "chorus"})
	require.NoError(t, err)
	chorus, err := e.AddContestant(ctx, ContestantRequest{ContestID: c.contest.ID, GroupID: chorusGroup.ID})
	require.NoError(t, err)

	persons := make([]domain.Person, 5)
	for i := range persons {
		persons[i], err = e.AddPerson(ctx, PersonRequest{Name: "Singer"})
		require.NoError(t, err)
	}

	for i, part := range []string{"tenor", "lead", "baritone", "bass"} {
		sg, err := e.AddSinger(ctx, SingerRequest{ContestantID: quartet.ID, PersonID: persons[i].ID, Part: part})
		require.NoError(t, err)
		assert.Contains(t, sg.Name, "Ringmasters")
	}

	_, err = e.AddSinger(ctx, SingerRequest{ContestantID: quartet.ID, PersonID: persons[4].ID, Part: "lead"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "contestant_id: quartet already has four singers")

	_, err = e.AddSinger(ctx, SingerRequest{ContestantID: chorus.ID, PersonID: persons[4].ID, Part: "lead"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "contestant_id: singers belong to quartets only")

	d, err := e.AddDirector(ctx, DirectorRequest{ContestantID: chorus.ID, PersonID: persons[4].ID})
	require.NoError(t, err)
	assert.Equal(t, "Westminster Chorus Director", d.Name)

	_, err = e.AddDirector(ctx, DirectorRequest{ContestantID: quartet.ID, PersonID: persons[4].ID})
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, 4.0, metrics.Sum("entities_created_total", map[string]string{"entity": domain.EntitySinger}))
	assert.Equal(t, 1.0, metrics.Sum("entities_created_total", map[string]string{"entity": domain.EntityDirector}))
}

// TestEngine_AddPerformance tests programming a later round by hand.
func TestEngine_AddPerformance(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Dependencies{})
	c := setupContest(t, e, 1, 2, "Boston Common", "Acoustix")
	startContest(t, e, c)

	var finals domain.Session
	require.NoError(t, e.View(ctx, func(s *domain.Snapshot) error {
		finals, _ = s.SessionByNum(c.contest.ID, 2)
		return nil
	}))

	first, err := e.AddPerformance(ctx, PerformanceRequest{SessionID: finals.ID, ContestantID: c.contestants[1].ID})
	require.NoError(t, err)
	second, err := e.AddPerformance(ctx, PerformanceRequest{SessionID: finals.ID, ContestantID: c.contestants[0].ID})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, "BHS International 2024 Quartet Finals Acoustix", first.Name)
	assert.Equal(t, "02", second.Draw())

	_, err = e.AddPerformance(ctx, PerformanceRequest{SessionID: finals.ID, ContestantID: c.contestants[1].ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
