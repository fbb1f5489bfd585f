package domain

var awardMachine = NewMachine(EntityAward,
	Transition[AwardStatus]{
		Name:    TransitionBuild,
		Sources: []AwardStatus{AwardNew},
		Target:  AwardBuilt,
	},
	Transition[AwardStatus]{
		Name:    TransitionStart,
		Sources: []AwardStatus{AwardBuilt},
		Target:  AwardStarted,
		Conditions: []Condition{{
			Name:   "contest_started",
			Reason: "contest has not started",
			Check:  contestStarted,
		}},
	},
	Transition[AwardStatus]{
		Name:    TransitionFinish,
		Sources: []AwardStatus{AwardStarted},
		Target:  AwardFinished,
		Conditions: []Condition{{
			Name:   "sessions_finished",
			Reason: "sessions counted by the award are not finished",
			Check:  awardSessionsFinished,
		}},
	},
	Transition[AwardStatus]{
		Name:    TransitionFinalize,
		Sources: []AwardStatus{AwardFinished},
		Target:  AwardFinal,
	},
)

// AwardMachine returns the transition table for awards.
func AwardMachine() *Machine[AwardStatus] { return awardMachine }

func contestStarted(s *Snapshot, awardID string) bool {
	a, ok := s.Awards[awardID]
	if !ok {
		return false
	}
	c, ok := s.Contests[a.ContestID]
	return ok && c.Status >= ContestStarted
}

func awardSessionsFinished(s *Snapshot, awardID string) bool {
	a, ok := s.Awards[awardID]
	if !ok {
		return false
	}
	for _, sess := range s.SessionsOf(a.ContestID) {
		if sess.Num <= a.Rounds && sess.Status < SessionFinished {
			return false
		}
	}
	return true
}

func fireAward(s *Snapshot, id, name string) (Award, TransitionResult, error) {
	a, err := s.Award(id)
	if err != nil {
		return Award{}, TransitionResult{}, err
	}
	target, res, err := fire(awardMachine, s, id, name, a.Status)
	if err != nil {
		return Award{}, TransitionResult{}, err
	}
	a.Status = target
	s.PutAward(a)
	return a, res, nil
}

// BuildAward builds an award and makes sure its contest has a session for
// every round the award counts.
func BuildAward(s *Snapshot, env Env, id string) (TransitionResult, error) {
	a, res, err := fireAward(s, id, TransitionBuild)
	if err != nil {
		return TransitionResult{}, err
	}
	c, err := s.Contest(a.ContestID)
	if err != nil {
		return TransitionResult{}, err
	}
	ensureSessions(s, env, c, a.Rounds)
	return res, nil
}

// StartAward starts an award once its contest has started, entering every
// competing contestant as a competitor. Existing competitors are kept.
func StartAward(s *Snapshot, env Env, id string) (TransitionResult, error) {
	a, res, err := fireAward(s, id, TransitionStart)
	if err != nil {
		return TransitionResult{}, err
	}
	entered := make(map[string]bool)
	for _, comp := range s.CompetitorsOf(a.ID) {
		entered[comp.ContestantID] = true
	}
	for _, ct := range s.ContestantsOf(a.ContestID) {
		if !ct.Status.competing() || entered[ct.ID] {
			continue
		}
		s.PutCompetitor(Competitor{
			Meta:         Meta{ID: env.NewID()},
			Status:       CompetitorNew,
			AwardID:      a.ID,
			ContestantID: ct.ID,
		})
	}
	return res, nil
}

// FinishAward finishes an award. The whole contest is recalculated from its
// scores up, each competitor is tallied over the rounds the award counts and
// competitors are placed by total points.
func FinishAward(s *Snapshot, env Env, id string) (TransitionResult, error) {
	env = env.withDefaults()
	a, res, err := fireAward(s, id, TransitionFinish)
	if err != nil {
		return TransitionResult{}, err
	}
	c, err := s.Contest(a.ContestID)
	if err != nil {
		return TransitionResult{}, err
	}
	if err := RecalculateContest(s, c.ID); err != nil {
		return TransitionResult{}, err
	}

	competitors := s.CompetitorsOf(a.ID)
	tallies := make([]Tally, len(competitors))
	if err := env.ForEach(len(competitors), func(i int) error {
		tallies[i] = competitorTally(s, competitors[i], a, c.Size)
		return nil
	}); err != nil {
		return TransitionResult{}, err
	}
	for i := range competitors {
		competitors[i].Tally = tallies[i]
		s.PutCompetitor(competitors[i])
	}

	RankCompetitors(s, a.ID)
	return res, nil
}

// FinalizeAward finalizes a finished award.
func FinalizeAward(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	_, res, err := fireAward(s, id, TransitionFinalize)
	return res, err
}

// RankCompetitors writes the place of every competitor of an award from the
// stored total points.
func RankCompetitors(s *Snapshot, awardID string) []Placement[Competitor] {
	placements := Rank(s.CompetitorsOf(awardID),
		func(c Competitor) *int { return c.TotalPoints },
		func(c Competitor) string { return c.ID })
	for i, pl := range placements {
		pl.Item.Place = pl.Place
		s.PutCompetitor(pl.Item)
		placements[i].Item = pl.Item
	}
	return placements
}
