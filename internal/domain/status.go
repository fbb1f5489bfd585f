package domain

import "fmt"

// Status is the constraint satisfied by every per-entity status enum.
// Values are ordered: a later stage always has a larger value.
type Status interface {
	~int
	fmt.Stringer
}

func label[S ~int](names map[S]string, s S) string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// ContestStatus tracks a Contest through its lifecycle.
type ContestStatus int

const (
	ContestNew     ContestStatus = 0
	ContestBuilt   ContestStatus = 10
	ContestStarted ContestStatus = 20
	ContestFinal   ContestStatus = 30
)

var contestStatusNames = map[ContestStatus]string{
	ContestNew:     "new",
	ContestBuilt:   "built",
	ContestStarted: "started",
	ContestFinal:   "final",
}

func (s ContestStatus) String() string { return label(contestStatusNames, s) }

// AwardStatus tracks an Award through its lifecycle.
type AwardStatus int

const (
	AwardNew      AwardStatus = 0
	AwardBuilt    AwardStatus = 10
	AwardStarted  AwardStatus = 20
	AwardFinished AwardStatus = 25
	AwardFinal    AwardStatus = 30
)

var awardStatusNames = map[AwardStatus]string{
	AwardNew:      "new",
	AwardBuilt:    "built",
	AwardStarted:  "started",
	AwardFinished: "finished",
	AwardFinal:    "final",
}

func (s AwardStatus) String() string { return label(awardStatusNames, s) }

// ContestantStatus tracks a Contestant from qualification to final results.
// Declined and Dropped are terminal-ish states, never deletions.
type ContestantStatus int

const (
	ContestantNew       ContestantStatus = 0
	ContestantQualified ContestantStatus = 10
	ContestantAccepted  ContestantStatus = 20
	ContestantDeclined  ContestantStatus = 30
	ContestantDropped   ContestantStatus = 40
	ContestantOfficial  ContestantStatus = 50
	ContestantFinished  ContestantStatus = 60
	ContestantFinal     ContestantStatus = 90
)

var contestantStatusNames = map[ContestantStatus]string{
	ContestantNew:       "new",
	ContestantQualified: "qualified",
	ContestantAccepted:  "accepted",
	ContestantDeclined:  "declined",
	ContestantDropped:   "dropped",
	ContestantOfficial:  "official",
	ContestantFinished:  "finished",
	ContestantFinal:     "final",
}

func (s ContestantStatus) String() string { return label(contestantStatusNames, s) }

// competing reports whether the contestant has been registered into the
// contest and was not dropped.
func (s ContestantStatus) competing() bool {
	return s == ContestantOfficial || s == ContestantFinished || s == ContestantFinal
}

// CompetitorStatus has a single value; competitors carry results only.
type CompetitorStatus int

const CompetitorNew CompetitorStatus = 0

func (s CompetitorStatus) String() string {
	return label(map[CompetitorStatus]string{CompetitorNew: "new"}, s)
}

// SessionStatus tracks one round of a contest.
type SessionStatus int

const (
	SessionNew      SessionStatus = 0
	SessionStarted  SessionStatus = 20
	SessionFinished SessionStatus = 25
	SessionFinal    SessionStatus = 30
)

var sessionStatusNames = map[SessionStatus]string{
	SessionNew:      "new",
	SessionStarted:  "started",
	SessionFinished: "finished",
	SessionFinal:    "final",
}

func (s SessionStatus) String() string { return label(sessionStatusNames, s) }

// PerformanceStatus tracks one contestant's appearance in a session.
type PerformanceStatus int

const (
	PerformanceNew       PerformanceStatus = 0
	PerformanceStarted   PerformanceStatus = 20
	PerformanceFinished  PerformanceStatus = 25
	PerformanceConfirmed PerformanceStatus = 40
	PerformanceFinal     PerformanceStatus = 50
)

var performanceStatusNames = map[PerformanceStatus]string{
	PerformanceNew:       "new",
	PerformanceStarted:   "started",
	PerformanceFinished:  "finished",
	PerformanceConfirmed: "confirmed",
	PerformanceFinal:     "final",
}

func (s PerformanceStatus) String() string { return label(performanceStatusNames, s) }

// SongStatus tracks a single song of a performance.
type SongStatus int

const (
	SongNew       SongStatus = 0
	SongConfirmed SongStatus = 40
	SongFinal     SongStatus = 50
)

var songStatusNames = map[SongStatus]string{
	SongNew:       "new",
	SongConfirmed: "confirmed",
	SongFinal:     "final",
}

func (s SongStatus) String() string { return label(songStatusNames, s) }

// ScoreStatus tracks review of a single judge's score.
type ScoreStatus int

const (
	ScoreNew       ScoreStatus = 0
	ScoreFlagged   ScoreStatus = 30
	ScoreValidated ScoreStatus = 35
	ScoreConfirmed ScoreStatus = 40
	ScoreFinal     ScoreStatus = 50
)

var scoreStatusNames = map[ScoreStatus]string{
	ScoreNew:       "new",
	ScoreFlagged:   "flagged",
	ScoreValidated: "validated",
	ScoreConfirmed: "confirmed",
	ScoreFinal:     "final",
}

func (s ScoreStatus) String() string { return label(scoreStatusNames, s) }
