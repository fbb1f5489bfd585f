package domain

import (
	"fmt"
	"strings"
)

func parseEnum[T ~int](names map[T]string, s, what string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for v, n := range names {
		if n == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}

// ContestKind is the kind of competition held within a convention.
type ContestKind int

const (
	ContestQuartet    ContestKind = 1
	ContestChorus     ContestKind = 2
	ContestSenior     ContestKind = 3
	ContestCollegiate ContestKind = 4
)

var contestKindNames = map[ContestKind]string{
	ContestQuartet:    "quartet",
	ContestChorus:     "chorus",
	ContestSenior:     "senior",
	ContestCollegiate: "collegiate",
}

func (k ContestKind) String() string { return label(contestKindNames, k) }

// ParseContestKind converts a lowercase name into a ContestKind.
func ParseContestKind(s string) (ContestKind, error) {
	return parseEnum(contestKindNames, s, "contest kind")
}

// AwardKind is the kind of title an award confers. It may differ from the
// kind of the parent contest.
type AwardKind int

const (
	AwardQuartet       AwardKind = 1
	AwardChorus        AwardKind = 2
	AwardSenior        AwardKind = 3
	AwardCollegiate    AwardKind = 4
	AwardNovice        AwardKind = 5
	AwardPlateauA      AwardKind = 6
	AwardPlateauAA     AwardKind = 7
	AwardPlateauAAA    AwardKind = 8
	AwardDealersChoice AwardKind = 9
)

var awardKindNames = map[AwardKind]string{
	AwardQuartet:       "quartet",
	AwardChorus:        "chorus",
	AwardSenior:        "senior",
	AwardCollegiate:    "collegiate",
	AwardNovice:        "novice",
	AwardPlateauA:      "plateau_a",
	AwardPlateauAA:     "plateau_aa",
	AwardPlateauAAA:    "plateau_aaa",
	AwardDealersChoice: "dealers_choice",
}

func (k AwardKind) String() string { return label(awardKindNames, k) }

// ParseAwardKind converts a lowercase name into an AwardKind.
func ParseAwardKind(s string) (AwardKind, error) {
	return parseEnum(awardKindNames, s, "award kind")
}

// AwardLevel is the organizational level conferring the award.
type AwardLevel int

const (
	LevelInternational AwardLevel = 1
	LevelDistrict      AwardLevel = 2
	LevelDivision      AwardLevel = 3
)

var awardLevelNames = map[AwardLevel]string{
	LevelInternational: "international",
	LevelDistrict:      "district",
	LevelDivision:      "division",
}

func (l AwardLevel) String() string { return label(awardLevelNames, l) }

// ParseAwardLevel converts a lowercase name into an AwardLevel.
func ParseAwardLevel(s string) (AwardLevel, error) {
	return parseEnum(awardLevelNames, s, "award level")
}

// AwardGoal is the objective of an award.
type AwardGoal int

const (
	GoalChampionship AwardGoal = 1
	GoalQualifier    AwardGoal = 2
)

var awardGoalNames = map[AwardGoal]string{
	GoalChampionship: "championship",
	GoalQualifier:    "qualifier",
}

func (g AwardGoal) String() string { return label(awardGoalNames, g) }

// ParseAwardGoal converts a lowercase name into an AwardGoal.
func ParseAwardGoal(s string) (AwardGoal, error) {
	return parseEnum(awardGoalNames, s, "award goal")
}

// SessionKind names a round. The final round is always SessionFinals,
// counting backwards from there.
type SessionKind int

const (
	SessionFinals   SessionKind = 1
	SessionSemis    SessionKind = 2
	SessionQuarters SessionKind = 3
)

var sessionKindNames = map[SessionKind]string{
	SessionFinals:   "finals",
	SessionSemis:    "semis",
	SessionQuarters: "quarters",
}

func (k SessionKind) String() string { return label(sessionKindNames, k) }

// SessionKindFor returns the kind of round num (1-based) in a contest of
// the given number of rounds.
func SessionKindFor(rounds, num int) SessionKind {
	return SessionKind(rounds - num + 1)
}

// Category is the judging category of a Judge and of the Scores it awards.
type Category int

const (
	CategoryAdmin        Category = 0
	CategoryMusic        Category = 1
	CategoryPresentation Category = 2
	CategorySinging      Category = 3
)

var categoryNames = map[Category]string{
	CategoryAdmin:        "admin",
	CategoryMusic:        "music",
	CategoryPresentation: "presentation",
	CategorySinging:      "singing",
}

func (c Category) String() string { return label(categoryNames, c) }

// ParseCategory converts a lowercase name into a Category.
func ParseCategory(s string) (Category, error) {
	return parseEnum(categoryNames, s, "category")
}

// ScoringCategories lists the categories that contribute points, in
// tally order.
var ScoringCategories = []Category{CategoryMusic, CategoryPresentation, CategorySinging}

// PanelKind distinguishes official judges from practice and composite ones.
// Scores inherit the kind of the judge that awards them.
type PanelKind int

const (
	PanelOfficial  PanelKind = 10
	PanelPractice  PanelKind = 20
	PanelComposite PanelKind = 30
)

var panelKindNames = map[PanelKind]string{
	PanelOfficial:  "official",
	PanelPractice:  "practice",
	PanelComposite: "composite",
}

func (k PanelKind) String() string { return label(panelKindNames, k) }

// ParsePanelKind converts a lowercase name into a PanelKind.
func ParsePanelKind(s string) (PanelKind, error) {
	return parseEnum(panelKindNames, s, "panel kind")
}

// GroupKind distinguishes quartets from choruses.
type GroupKind int

const (
	GroupQuartet GroupKind = 1
	GroupChorus  GroupKind = 2
)

var groupKindNames = map[GroupKind]string{
	GroupQuartet: "quartet",
	GroupChorus:  "chorus",
}

func (k GroupKind) String() string { return label(groupKindNames, k) }

// ParseGroupKind converts a lowercase name into a GroupKind.
func ParseGroupKind(s string) (GroupKind, error) {
	return parseEnum(groupKindNames, s, "group kind")
}

// Part is a quartet singer's voice part.
type Part int

const (
	PartTenor    Part = 1
	PartLead     Part = 2
	PartBaritone Part = 3
	PartBass     Part = 4
)

var partNames = map[Part]string{
	PartTenor:    "tenor",
	PartLead:     "lead",
	PartBaritone: "baritone",
	PartBass:     "bass",
}

func (p Part) String() string { return label(partNames, p) }

// ParsePart converts a lowercase name into a Part.
func ParsePart(s string) (Part, error) {
	return parseEnum(partNames, s, "part")
}
