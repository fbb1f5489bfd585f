package domain

var contestantMachine = NewMachine(EntityContestant,
	Transition[ContestantStatus]{
		Name:    TransitionQualify,
		Sources: []ContestantStatus{ContestantNew},
		Target:  ContestantQualified,
	},
	Transition[ContestantStatus]{
		Name:    TransitionAccept,
		Sources: []ContestantStatus{ContestantQualified, ContestantDeclined},
		Target:  ContestantAccepted,
	},
	Transition[ContestantStatus]{
		Name:    TransitionDecline,
		Sources: []ContestantStatus{ContestantQualified, ContestantAccepted},
		Target:  ContestantDeclined,
	},
	Transition[ContestantStatus]{
		Name:    TransitionRegister,
		Sources: []ContestantStatus{ContestantAccepted},
		Target:  ContestantOfficial,
	},
	Transition[ContestantStatus]{
		Name:    TransitionDrop,
		Sources: []ContestantStatus{ContestantOfficial},
		Target:  ContestantDropped,
	},
	Transition[ContestantStatus]{
		Name:    TransitionFinish,
		Sources: []ContestantStatus{ContestantOfficial},
		Target:  ContestantFinished,
	},
	Transition[ContestantStatus]{
		Name:    TransitionFinalize,
		Sources: []ContestantStatus{ContestantFinished},
		Target:  ContestantFinal,
	},
)

// ContestantMachine returns the transition table for contestants.
func ContestantMachine() *Machine[ContestantStatus] { return contestantMachine }

func fireContestant(s *Snapshot, id, name string, notify bool) (TransitionResult, error) {
	c, err := s.Contestant(id)
	if err != nil {
		return TransitionResult{}, err
	}
	target, res, err := fire(contestantMachine, s, id, name, c.Status)
	if err != nil {
		return TransitionResult{}, err
	}
	c.Status = target
	s.PutContestant(c)
	res.Notify = notify
	return res, nil
}

// QualifyContestant marks a contestant as qualified to enter.
func QualifyContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionQualify, true)
}

// AcceptContestant records that a qualified group accepted its place; a
// group that declined may change its mind.
func AcceptContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionAccept, true)
}

// DeclineContestant records that a group declined to compete.
func DeclineContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionDecline, true)
}

// RegisterContestant makes an accepted contestant official. Contest start
// registers every accepted contestant; it is exposed for completeness.
func RegisterContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionRegister, false)
}

// DropContestant withdraws an official contestant.
func DropContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionDrop, true)
}

// FinishContestant marks an official contestant as done competing.
func FinishContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionFinish, true)
}

// FinalizeContestant finalizes a finished contestant.
func FinalizeContestant(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireContestant(s, id, TransitionFinalize, true)
}
