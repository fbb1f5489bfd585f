package domain

var performanceMachine = NewMachine(EntityPerformance,
	Transition[PerformanceStatus]{
		Name:    TransitionStart,
		Sources: []PerformanceStatus{PerformanceNew},
		Target:  PerformanceStarted,
		Conditions: []Condition{{
			Name:   "preceding_finished",
			Reason: "the preceding performance has not finished",
			Check:  precedingFinished,
		}},
	},
	Transition[PerformanceStatus]{
		Name:    TransitionFinish,
		Sources: []PerformanceStatus{PerformanceStarted},
		Target:  PerformanceFinished,
		Conditions: []Condition{
			{Name: "scores_entered", Reason: "scores not yet entered", Check: ScoresEntered},
			{Name: "songs_entered", Reason: "songs not yet entered", Check: SongsEntered},
		},
	},
	Transition[PerformanceStatus]{
		Name:    TransitionConfirm,
		Sources: []PerformanceStatus{PerformanceFinished},
		Target:  PerformanceConfirmed,
		Conditions: []Condition{
			{Name: "scores_validated", Reason: "scores not yet validated", Check: ScoresValidated},
		},
	},
	Transition[PerformanceStatus]{
		Name:    TransitionFinalize,
		Sources: []PerformanceStatus{PerformanceConfirmed},
		Target:  PerformanceFinal,
	},
)

// PerformanceMachine returns the transition table for performances.
func PerformanceMachine() *Machine[PerformanceStatus] { return performanceMachine }

// precedingFinished holds when the performance drawn immediately before this
// one in the same session has finished, or when there is none.
func precedingFinished(s *Snapshot, id string) bool {
	perf, ok := s.Performances[id]
	if !ok {
		return false
	}
	for _, other := range s.PerformancesOf(perf.SessionID) {
		if other.Position == perf.Position-1 && other.Status < PerformanceFinished {
			return false
		}
	}
	return true
}

func firePerformance(s *Snapshot, id, name string) (Performance, TransitionResult, error) {
	perf, err := s.Performance(id)
	if err != nil {
		return Performance{}, TransitionResult{}, err
	}
	target, res, err := fire(performanceMachine, s, id, name, perf.Status)
	if err != nil {
		return Performance{}, TransitionResult{}, err
	}
	perf.Status = target
	s.PutPerformance(perf)
	return perf, res, nil
}

// StartPerformance starts a performance and creates its two songs, each with
// one new score per scoring judge of the contest.
func StartPerformance(s *Snapshot, env Env, id string) (TransitionResult, error) {
	perf, res, err := firePerformance(s, id, TransitionStart)
	if err != nil {
		return TransitionResult{}, err
	}
	contest, err := s.ContestOfPerformance(perf.ID)
	if err != nil {
		return TransitionResult{}, err
	}
	judges := s.ScoringJudges(contest.ID)
	for order := 1; order <= SongsPerPerformance; order++ {
		song := Song{Meta: Meta{ID: env.NewID()}, Status: SongNew, PerformanceID: perf.ID, Order: order}
		s.PutSong(song)
		for _, j := range judges {
			s.PutScore(Score{
				Meta:     Meta{ID: env.NewID()},
				Status:   ScoreNew,
				SongID:   song.ID,
				JudgeID:  j.ID,
				Category: j.Category,
				Kind:     j.Kind,
			})
		}
	}
	return res, nil
}

// FinishPerformance finishes a fully entered performance. It recalculates
// the song and performance tallies, runs outlier detection over the scores
// of both songs (new outliers are flagged, remaining new scores validated)
// and confirms each song.
func FinishPerformance(s *Snapshot, env Env, id string) (TransitionResult, error) {
	perf, res, err := firePerformance(s, id, TransitionFinish)
	if err != nil {
		return TransitionResult{}, err
	}
	if err := RecalculatePerformance(s, perf.ID); err != nil {
		return TransitionResult{}, err
	}

	scores := s.ScoresOfPerformance(perf.ID)
	outliers := make(map[string]bool)
	for _, sid := range env.Outliers.Outliers(scores) {
		outliers[sid] = true
	}
	for _, sc := range scores {
		if sc.Status != ScoreNew {
			continue
		}
		name := TransitionValidate
		if outliers[sc.ID] {
			name = TransitionFlag
		}
		eff, err := fireScore(s, sc.ID, name)
		if err != nil {
			return TransitionResult{}, err
		}
		res.Effects = append(res.Effects, eff)
	}

	for _, song := range s.SongsOf(perf.ID) {
		eff, err := fireSong(s, song.ID, TransitionConfirm)
		if err != nil {
			return TransitionResult{}, err
		}
		res.Effects = append(res.Effects, eff)
	}
	return res, nil
}

// ConfirmPerformance confirms a finished performance whose scores have all
// been validated, and confirms those scores.
func ConfirmPerformance(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	perf, res, err := firePerformance(s, id, TransitionConfirm)
	if err != nil {
		return TransitionResult{}, err
	}
	for _, sc := range s.ScoresOfPerformance(perf.ID) {
		if sc.Status != ScoreValidated {
			continue
		}
		eff, err := fireScore(s, sc.ID, TransitionConfirm)
		if err != nil {
			return TransitionResult{}, err
		}
		res.Effects = append(res.Effects, eff)
	}
	return res, nil
}

// FinalizePerformance finalizes a confirmed performance together with its
// songs and scores.
func FinalizePerformance(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	perf, res, err := firePerformance(s, id, TransitionFinalize)
	if err != nil {
		return TransitionResult{}, err
	}
	for _, song := range s.SongsOf(perf.ID) {
		if song.Status == SongConfirmed {
			eff, err := fireSong(s, song.ID, TransitionFinalize)
			if err != nil {
				return TransitionResult{}, err
			}
			res.Effects = append(res.Effects, eff)
		}
		for _, sc := range s.ScoresOf(song.ID) {
			if sc.Status != ScoreConfirmed {
				continue
			}
			eff, err := fireScore(s, sc.ID, TransitionFinalize)
			if err != nil {
				return TransitionResult{}, err
			}
			res.Effects = append(res.Effects, eff)
		}
	}
	return res, nil
}
