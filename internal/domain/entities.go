// Package domain contains pure, dependency-free models, lifecycle state
// machines and scoring calculations for the contest engine.
package domain

import (
	"fmt"
	"time"
)

// Meta holds the fields shared by every entity. Name and the timestamps are
// derived by the engine when an entity is written and are never set by
// callers directly.
type Meta struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Convention is the event hosting one or more contests.
type Convention struct {
	Meta
	Organization string `json:"organization"`
	Title        string `json:"title"`
	Year         int    `json:"year"`
}

// Group is an opaque identity supplied by the membership directory.
type Group struct {
	Meta
	Kind GroupKind `json:"kind"`
}

// Person is an opaque identity supplied by the membership directory.
type Person struct {
	Meta
}

// Contest is one kind of competition within a convention.
type Contest struct {
	Meta
	Status       ContestStatus `json:"status"`
	ConventionID string        `json:"convention_id"`
	Kind         ContestKind   `json:"kind"`
	// Size is the number of judges per category on the panel.
	Size   int `json:"size"`
	Rounds int `json:"rounds"`

	// Denormalized from the convention.
	Year         int    `json:"year"`
	Organization string `json:"organization"`
}

// Award is a title computed from a subset of a contest's rounds.
type Award struct {
	Meta
	Status       AwardStatus `json:"status"`
	ContestID    string      `json:"contest_id"`
	Organization string      `json:"organization"`
	Kind         AwardKind   `json:"kind"`
	Level        AwardLevel  `json:"level"`
	Goal         AwardGoal   `json:"goal"`
	// QualScore is required when Goal is GoalQualifier.
	QualScore *float64 `json:"qual_score,omitempty"`
	Year      int      `json:"year"`
	// Rounds is the number of rounds counted toward the award; it may be
	// fewer than the contest's rounds.
	Rounds int `json:"rounds"`
}

// Contestant is a group's entry into a contest.
type Contestant struct {
	Meta
	Status    ContestantStatus `json:"status"`
	ContestID string           `json:"contest_id"`
	GroupID   string           `json:"group_id"`
	Seed      *int             `json:"seed,omitempty"`
	Prelim    *float64         `json:"prelim,omitempty"`
	Men       *int             `json:"men,omitempty"`
	Place     *int             `json:"place,omitempty"`
	Tally
}

// DeltaScore is the difference between the final and the prelim score.
func (c Contestant) DeltaScore() *float64 {
	if c.TotalScore == nil || c.Prelim == nil {
		return nil
	}
	d := *c.TotalScore - *c.Prelim
	return &d
}

// DeltaPlace is the difference between the seed and the final place.
func (c Contestant) DeltaPlace() *int {
	if c.Seed == nil || c.Place == nil {
		return nil
	}
	d := *c.Seed - *c.Place
	return &d
}

// Competitor is a contestant's standing for one award.
type Competitor struct {
	Meta
	Status       CompetitorStatus `json:"status"`
	AwardID      string           `json:"award_id"`
	ContestantID string           `json:"contestant_id"`
	Place        *int             `json:"place,omitempty"`
	Tally
}

// Session is one round of a contest.
type Session struct {
	Meta
	Status    SessionStatus `json:"status"`
	ContestID string        `json:"contest_id"`
	Kind      SessionKind   `json:"kind"`
	Num       int           `json:"num"`
	// Slots is the number of places that advance to the next round.
	Slots *int `json:"slots,omitempty"`
}

// Performance is one contestant's appearance within one session.
type Performance struct {
	Meta
	Status       PerformanceStatus `json:"status"`
	SessionID    string            `json:"session_id"`
	ContestantID string            `json:"contestant_id"`
	Position     int               `json:"position"`
	Place        *int              `json:"place,omitempty"`
	Tally
}

// Draw renders the 1-based draw order as two digits.
func (p Performance) Draw() string { return fmt.Sprintf("%02d", p.Position+1) }

// SongsPerPerformance is the number of songs every performance consists of.
const SongsPerPerformance = 2

// Song is one of the two songs sung in a performance.
type Song struct {
	Meta
	Status        SongStatus `json:"status"`
	PerformanceID string     `json:"performance_id"`
	Order         int        `json:"order"`
	Title         string     `json:"title,omitempty"`
	Tally
}

// Score is one judge's raw points for one category of one song.
type Score struct {
	Meta
	Status   ScoreStatus `json:"status"`
	SongID   string      `json:"song_id"`
	JudgeID  string      `json:"judge_id"`
	Category Category    `json:"category"`
	Kind     PanelKind   `json:"kind"`
	// Points is nil until the score has been entered.
	Points *int `json:"points,omitempty"`
}

// Entered reports whether points have been recorded.
func (s Score) Entered() bool { return s.Points != nil }

// Judge is a person assigned to one category and slot of a contest panel.
type Judge struct {
	Meta
	ContestID string    `json:"contest_id"`
	PersonID  string    `json:"person_id,omitempty"`
	Category  Category  `json:"category"`
	Kind      PanelKind `json:"kind"`
	Slot      int       `json:"slot"`
}

// Scoring reports whether the judge awards points.
func (j Judge) Scoring() bool { return j.Category != CategoryAdmin }

// Designation is the category initial followed by the slot, e.g. "M1".
func (j Judge) Designation() string {
	name := j.Category.String()
	return fmt.Sprintf("%c%d", name[0]-'a'+'A', j.Slot)
}

// Singer places a person on one voice part of a quartet contestant.
type Singer struct {
	Meta
	ContestantID string `json:"contestant_id"`
	PersonID     string `json:"person_id"`
	Part         Part   `json:"part"`
}

// Director leads a chorus contestant.
type Director struct {
	Meta
	ContestantID string `json:"contestant_id"`
	PersonID     string `json:"person_id"`
}

// MaxSingers is the number of voice parts in a quartet.
const MaxSingers = 4
