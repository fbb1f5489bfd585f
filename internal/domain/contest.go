package domain

var contestMachine = NewMachine(EntityContest,
	Transition[ContestStatus]{
		Name:    TransitionBuild,
		Sources: []ContestStatus{ContestNew},
		Target:  ContestBuilt,
	},
	Transition[ContestStatus]{
		Name:    TransitionStart,
		Sources: []ContestStatus{ContestBuilt},
		Target:  ContestStarted,
	},
	Transition[ContestStatus]{
		Name:    TransitionFinalize,
		Sources: []ContestStatus{ContestStarted},
		Target:  ContestFinal,
		Conditions: []Condition{{
			Name:   "awards_final",
			Reason: "awards not yet final",
			Check:  awardsFinal,
		}},
	},
)

// ContestMachine returns the transition table for contests.
func ContestMachine() *Machine[ContestStatus] { return contestMachine }

func awardsFinal(s *Snapshot, contestID string) bool {
	for _, a := range s.AwardsOf(contestID) {
		if a.Status != AwardFinal {
			return false
		}
	}
	return true
}

func fireContest(s *Snapshot, id, name string) (Contest, TransitionResult, error) {
	c, err := s.Contest(id)
	if err != nil {
		return Contest{}, TransitionResult{}, err
	}
	target, res, err := fire(contestMachine, s, id, name, c.Status)
	if err != nil {
		return Contest{}, TransitionResult{}, err
	}
	c.Status = target
	s.PutContest(c)
	return c, res, nil
}

// ensureSessions creates any missing session numbered 1..rounds for a
// contest and returns the sessions in round order.
func ensureSessions(s *Snapshot, env Env, c Contest, rounds int) []Session {
	out := make([]Session, 0, rounds)
	for num := 1; num <= rounds; num++ {
		if sess, ok := s.SessionByNum(c.ID, num); ok {
			out = append(out, sess)
			continue
		}
		sess := Session{
			Meta:      Meta{ID: env.NewID()},
			Status:    SessionNew,
			ContestID: c.ID,
			Num:       num,
			Kind:      SessionKindFor(c.Rounds, num),
		}
		s.PutSession(sess)
		out = append(out, sess)
	}
	return out
}

// BuildContest builds a contest and creates one session per round.
func BuildContest(s *Snapshot, env Env, id string) (TransitionResult, error) {
	c, res, err := fireContest(s, id, TransitionBuild)
	if err != nil {
		return TransitionResult{}, err
	}
	ensureSessions(s, env, c, c.Rounds)
	return res, nil
}

// StartContest starts a contest. Every accepted contestant is registered in
// drawn order and gets a first-round performance at its draw position.
func StartContest(s *Snapshot, env Env, id string) (TransitionResult, error) {
	env = env.withDefaults()
	c, res, err := fireContest(s, id, TransitionStart)
	if err != nil {
		return TransitionResult{}, err
	}

	var accepted []Contestant
	for _, ct := range s.ContestantsOf(c.ID) {
		if ct.Status == ContestantAccepted {
			accepted = append(accepted, ct)
		}
	}
	env.Shuffle.Shuffle(len(accepted), func(i, j int) {
		accepted[i], accepted[j] = accepted[j], accepted[i]
	})

	first := ensureSessions(s, env, c, 1)[0]
	for pos, ct := range accepted {
		eff, err := fireContestant(s, ct.ID, TransitionRegister, false)
		if err != nil {
			return TransitionResult{}, err
		}
		res.Effects = append(res.Effects, eff)
		s.PutPerformance(Performance{
			Meta:         Meta{ID: env.NewID()},
			Status:       PerformanceNew,
			SessionID:    first.ID,
			ContestantID: ct.ID,
			Position:     pos,
		})
	}
	return res, nil
}

// FinalizeContest finalizes a contest once all of its awards are final. It
// recalculates every contestant and places those still competing.
func FinalizeContest(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	c, res, err := fireContest(s, id, TransitionFinalize)
	if err != nil {
		return TransitionResult{}, err
	}
	if err := RecalculateContest(s, c.ID); err != nil {
		return TransitionResult{}, err
	}
	RankContestants(s, c.ID)
	return res, nil
}

// RankContestants writes the place of every competing contestant of a
// contest from the stored total points.
func RankContestants(s *Snapshot, contestID string) []Placement[Contestant] {
	var competing []Contestant
	for _, ct := range s.ContestantsOf(contestID) {
		if ct.Status.competing() {
			competing = append(competing, ct)
		}
	}
	placements := Rank(competing,
		func(c Contestant) *int { return c.TotalPoints },
		func(c Contestant) string { return c.ID })
	for i, pl := range placements {
		pl.Item.Place = pl.Place
		s.PutContestant(pl.Item)
		placements[i].Item = pl.Item
	}
	return placements
}

// SeedContestants ranks the accepted contestants of a built contest by
// descending prelim score and writes the result to Seed. Statuses are not
// changed.
func SeedContestants(s *Snapshot, _ Env, contestID string) ([]Contestant, error) {
	c, err := s.Contest(contestID)
	if err != nil {
		return nil, err
	}
	if c.Status != ContestBuilt {
		return nil, &PreconditionError{
			Entity:     EntityContest,
			ID:         contestID,
			Transition: "seed",
			Condition:  "contest_built",
			Reason:     "contest is " + c.Status.String(),
		}
	}
	var accepted []Contestant
	for _, ct := range s.ContestantsOf(contestID) {
		if ct.Status == ContestantAccepted {
			accepted = append(accepted, ct)
		}
	}
	placements := Rank(accepted,
		func(c Contestant) *float64 { return c.Prelim },
		func(c Contestant) string { return c.ID })
	out := make([]Contestant, len(placements))
	for i, pl := range placements {
		pl.Item.Seed = pl.Place
		s.PutContestant(pl.Item)
		out[i] = pl.Item
	}
	return out, nil
}
