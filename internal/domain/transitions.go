package domain

import "fmt"

// Transition names shared by the per-entity machines.
const (
	TransitionBuild    = "build"
	TransitionStart    = "start"
	TransitionFinish   = "finish"
	TransitionFinalize = "finalize"
	TransitionQualify  = "qualify"
	TransitionAccept   = "accept"
	TransitionDecline  = "decline"
	TransitionRegister = "register"
	TransitionDrop     = "drop"
	TransitionFlag     = "flag"
	TransitionValidate = "validate"
	TransitionConfirm  = "confirm"
)

// TransitionFunc applies one named transition, with its cascades, to the
// entity id inside s. On error s may hold partial writes and must be
// discarded; stores guarantee this by running transitions on a clone.
type TransitionFunc func(s *Snapshot, env Env, id string) (TransitionResult, error)

var pastTense = map[string]string{
	TransitionBuild:    "Built",
	TransitionStart:    "Started",
	TransitionFinish:   "Finished",
	TransitionFinalize: "Finalized",
	TransitionQualify:  "Qualified",
	TransitionAccept:   "Accepted",
	TransitionDecline:  "Declined",
	TransitionRegister: "Registered",
	TransitionDrop:     "Dropped",
	TransitionFlag:     "Flagged",
	TransitionValidate: "Validated",
	TransitionConfirm:  "Confirmed",
}

// fire runs the guard and returns the target status with the result that
// describes it. The caller persists the target status.
func fire[S Status](m *Machine[S], s *Snapshot, id, name string, current S) (S, TransitionResult, error) {
	target, err := m.Fire(s, id, name, current)
	if err != nil {
		return current, TransitionResult{}, err
	}
	return target, result(m.Entity(), id, name, current, target, pastTense[name]), nil
}

// Registry maps "entity/transition" to its TransitionFunc for every public
// transition. It backs generic dispatch such as scenario files.
var Registry = map[string]TransitionFunc{
	key(EntityContest, TransitionBuild):    BuildContest,
	key(EntityContest, TransitionStart):    StartContest,
	key(EntityContest, TransitionFinalize): FinalizeContest,

	key(EntityAward, TransitionBuild):    BuildAward,
	key(EntityAward, TransitionStart):    StartAward,
	key(EntityAward, TransitionFinish):   FinishAward,
	key(EntityAward, TransitionFinalize): FinalizeAward,

	key(EntityContestant, TransitionQualify):  QualifyContestant,
	key(EntityContestant, TransitionAccept):   AcceptContestant,
	key(EntityContestant, TransitionDecline):  DeclineContestant,
	key(EntityContestant, TransitionRegister): RegisterContestant,
	key(EntityContestant, TransitionDrop):     DropContestant,
	key(EntityContestant, TransitionFinish):   FinishContestant,
	key(EntityContestant, TransitionFinalize): FinalizeContestant,

	key(EntitySession, TransitionStart):    StartSession,
	key(EntitySession, TransitionFinish):   FinishSession,
	key(EntitySession, TransitionFinalize): FinalizeSession,

	key(EntityPerformance, TransitionStart):    StartPerformance,
	key(EntityPerformance, TransitionFinish):   FinishPerformance,
	key(EntityPerformance, TransitionConfirm):  ConfirmPerformance,
	key(EntityPerformance, TransitionFinalize): FinalizePerformance,

	key(EntitySong, TransitionConfirm):  ConfirmSong,
	key(EntitySong, TransitionFinalize): FinalizeSong,

	key(EntityScore, TransitionFlag):     FlagScore,
	key(EntityScore, TransitionValidate): ValidateScore,
	key(EntityScore, TransitionConfirm):  ConfirmScore,
	key(EntityScore, TransitionFinalize): FinalizeScore,
}

func key(entity, transition string) string { return entity + "/" + transition }

// Lookup returns the TransitionFunc for an entity and transition name.
func Lookup(entity, transition string) (TransitionFunc, error) {
	fn, ok := Registry[key(entity, transition)]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no transition %q", ErrInvalidTransition, entity, transition)
	}
	return fn, nil
}
