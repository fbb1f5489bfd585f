package domain

var scoreEnteredCondition = Condition{
	Name:   "score_entered",
	Reason: "points have not been entered",
	Check:  ScoreEntered,
}

var scoreMachine = NewMachine(EntityScore,
	Transition[ScoreStatus]{
		Name:       TransitionFlag,
		Sources:    []ScoreStatus{ScoreNew},
		Target:     ScoreFlagged,
		Conditions: []Condition{scoreEnteredCondition},
	},
	Transition[ScoreStatus]{
		Name:       TransitionValidate,
		Sources:    []ScoreStatus{ScoreNew, ScoreFlagged},
		Target:     ScoreValidated,
		Conditions: []Condition{scoreEnteredCondition},
	},
	Transition[ScoreStatus]{
		Name:    TransitionConfirm,
		Sources: []ScoreStatus{ScoreValidated},
		Target:  ScoreConfirmed,
	},
	Transition[ScoreStatus]{
		Name:    TransitionFinalize,
		Sources: []ScoreStatus{ScoreConfirmed},
		Target:  ScoreFinal,
	},
)

// ScoreMachine returns the transition table for scores.
func ScoreMachine() *Machine[ScoreStatus] { return scoreMachine }

func fireScore(s *Snapshot, id, name string) (TransitionResult, error) {
	sc, err := s.Score(id)
	if err != nil {
		return TransitionResult{}, err
	}
	target, res, err := fire(scoreMachine, s, id, name, sc.Status)
	if err != nil {
		return TransitionResult{}, err
	}
	sc.Status = target
	s.PutScore(sc)
	return res, nil
}

// FlagScore marks an entered score for review.
func FlagScore(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireScore(s, id, TransitionFlag)
}

// ValidateScore accepts an entered score, including one that was flagged.
func ValidateScore(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireScore(s, id, TransitionValidate)
}

// ConfirmScore confirms a validated score.
func ConfirmScore(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireScore(s, id, TransitionConfirm)
}

// FinalizeScore finalizes a confirmed score.
func FinalizeScore(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireScore(s, id, TransitionFinalize)
}

// EnterScore records points for a score and recalculates the tallies of its
// song and performance. Points may be entered while the score is new or
// flagged and its performance is started or finished; entering over a
// flagged score keeps it flagged until it is validated.
func EnterScore(s *Snapshot, _ Env, id string, points int) (Score, error) {
	if err := CheckPoints(points); err != nil {
		return Score{}, err
	}
	sc, err := s.Score(id)
	if err != nil {
		return Score{}, err
	}
	if sc.Status != ScoreNew && sc.Status != ScoreFlagged {
		return Score{}, &PreconditionError{
			Entity:     EntityScore,
			ID:         id,
			Transition: "enter",
			Condition:  "score_open",
			Reason:     "score is " + sc.Status.String(),
		}
	}
	song, err := s.Song(sc.SongID)
	if err != nil {
		return Score{}, err
	}
	perf, err := s.Performance(song.PerformanceID)
	if err != nil {
		return Score{}, err
	}
	if perf.Status != PerformanceStarted && perf.Status != PerformanceFinished {
		return Score{}, &PreconditionError{
			Entity:     EntityScore,
			ID:         id,
			Transition: "enter",
			Condition:  "performance_open",
			Reason:     "performance is " + perf.Status.String(),
		}
	}

	sc.Points = &points
	s.PutScore(sc)
	if err := RecalculatePerformance(s, perf.ID); err != nil {
		return Score{}, err
	}
	return sc, nil
}
