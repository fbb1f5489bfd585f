package domain

var sessionMachine = NewMachine(EntitySession,
	Transition[SessionStatus]{
		Name:    TransitionStart,
		Sources: []SessionStatus{SessionNew},
		Target:  SessionStarted,
	},
	Transition[SessionStatus]{
		Name:    TransitionFinish,
		Sources: []SessionStatus{SessionStarted},
		Target:  SessionFinished,
		Conditions: []Condition{
			{Name: "performances_finished", Reason: "performances not yet finished", Check: performancesFinished},
			{Name: "scores_validated", Reason: "scores not yet validated", Check: ScoresValidated},
		},
	},
	Transition[SessionStatus]{
		Name:    TransitionFinalize,
		Sources: []SessionStatus{SessionFinished},
		Target:  SessionFinal,
	},
)

// SessionMachine returns the transition table for sessions.
func SessionMachine() *Machine[SessionStatus] { return sessionMachine }

func performancesFinished(s *Snapshot, sessionID string) bool {
	for _, p := range s.PerformancesOf(sessionID) {
		if p.Status < PerformanceFinished {
			return false
		}
	}
	return true
}

func fireSession(s *Snapshot, id, name string) (Session, TransitionResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Session{}, TransitionResult{}, err
	}
	target, res, err := fire(sessionMachine, s, id, name, sess.Status)
	if err != nil {
		return Session{}, TransitionResult{}, err
	}
	sess.Status = target
	s.PutSession(sess)
	return sess, res, nil
}

// StartSession opens a round.
func StartSession(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	_, res, err := fireSession(s, id, TransitionStart)
	return res, err
}

// FinishSession closes a round once every performance has finished and every
// score is validated, then recalculates and places its performances.
func FinishSession(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	sess, res, err := fireSession(s, id, TransitionFinish)
	if err != nil {
		return TransitionResult{}, err
	}
	for _, p := range s.PerformancesOf(sess.ID) {
		if err := RecalculatePerformance(s, p.ID); err != nil {
			return TransitionResult{}, err
		}
	}
	RankPerformances(s, sess.ID)
	return res, nil
}

// FinalizeSession finalizes a finished round. No tally or place changes.
func FinalizeSession(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	_, res, err := fireSession(s, id, TransitionFinalize)
	return res, err
}

// RankPerformances writes the place of every performance in a session from
// the stored total points.
func RankPerformances(s *Snapshot, sessionID string) []Placement[Performance] {
	placements := Rank(s.PerformancesOf(sessionID),
		func(p Performance) *int { return p.TotalPoints },
		func(p Performance) string { return p.ID })
	for i, pl := range placements {
		pl.Item.Place = pl.Place
		s.PutPerformance(pl.Item)
		placements[i].Item = pl.Item
	}
	return placements
}
