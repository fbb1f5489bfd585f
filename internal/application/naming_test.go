package application

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// TestNamer_Label tests rendering of enum labels.
func TestNamer_Label(t *testing.T) {
	n := NewNamer(language.English)

	tests := []struct {
		name  string
		value fmt.Stringer
		want  string
	}{
		{name: "single word", value: domain.AwardQuartet, want: "Quartet"},
		{name: "double letter plateau", value: domain.AwardPlateauAA, want: "Plateau AA"},
		{name: "triple letter plateau", value: domain.AwardPlateauAAA, want: "Plateau AAA"},
		{name: "single letter plateau", value: domain.AwardPlateauA, want: "Plateau A"},
		{name: "possessive", value: domain.AwardDealersChoice, want: "Dealer's Choice"},
		{name: "session kind", value: domain.SessionSemis, want: "Semis"},
		{name: "voice part", value: domain.PartBaritone, want: "Baritone"},
		{name: "unknown value", value: domain.AwardKind(99), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Label(tt.value))
		})
	}
}

// TestNamer_Name tests derived names across the object graph.
func TestNamer_Name(t *testing.T) {
	s := domain.NewSnapshot()
	s.PutConvention(domain.Convention{Meta: domain.Meta{ID: "conv"}, Organization: "BHS", Title: "Midwinter", Year: 2025})
	s.PutContest(domain.Contest{Meta: domain.Meta{ID: "contest"}, ConventionID: "conv", Kind: domain.ContestSenior, Size: 1, Rounds: 2})
	s.PutAward(domain.Award{
		Meta: domain.Meta{ID: "award"}, ContestID: "contest", Organization: "BHS", Year: 2025,
		Kind: domain.AwardPlateauAA, Level: domain.LevelDistrict, Goal: domain.GoalQualifier,
	})
	s.PutGroup(domain.Group{Meta: domain.Meta{ID: "group", Name: "Old School"}, Kind: domain.GroupQuartet})
	s.PutGroup(domain.Group{Meta: domain.Meta{ID: "chorus", Name: "Ambassadors of Harmony"}, Kind: domain.GroupChorus})
	s.PutContestant(domain.Contestant{Meta: domain.Meta{ID: "ct"}, ContestID: "contest", GroupID: "group"})
	s.PutContestant(domain.Contestant{Meta: domain.Meta{ID: "ct2"}, ContestID: "contest", GroupID: "chorus"})
	s.PutCompetitor(domain.Competitor{Meta: domain.Meta{ID: "comp"}, AwardID: "award", ContestantID: "ct"})
	s.PutSession(domain.Session{Meta: domain.Meta{ID: "sess"}, ContestID: "contest", Num: 1, Kind: domain.SessionSemis})
	s.PutPerformance(domain.Performance{Meta: domain.Meta{ID: "perf"}, SessionID: "sess", ContestantID: "ct"})
	s.PutSong(domain.Song{Meta: domain.Meta{ID: "song"}, PerformanceID: "perf", Order: 2})
	s.PutJudge(domain.Judge{Meta: domain.Meta{ID: "judge"}, ContestID: "contest", Category: domain.CategorySinging, Kind: domain.PanelPractice, Slot: 3})
	s.PutScore(domain.Score{Meta: domain.Meta{ID: "score"}, SongID: "song", JudgeID: "judge", Category: domain.CategorySinging})
	s.PutSinger(domain.Singer{Meta: domain.Meta{ID: "singer"}, ContestantID: "ct", Part: domain.PartLead})
	s.PutDirector(domain.Director{Meta: domain.Meta{ID: "dir"}, ContestantID: "ct2"})

	n := NewNamer(language.English)
	tests := []struct {
		name string
		ref  domain.Ref
		want string
		ok   bool
	}{
		{name: "convention", ref: domain.Ref{Kind: domain.EntityConvention, ID: "conv"}, want: "BHS Midwinter 2025", ok: true},
		{name: "contest", ref: domain.Ref{Kind: domain.EntityContest, ID: "contest"}, want: "BHS Midwinter 2025 Senior", ok: true},
		{name: "award", ref: domain.Ref{Kind: domain.EntityAward, ID: "award"}, want: "BHS District Plateau AA Qualifier 2025", ok: true},
		{name: "contestant", ref: domain.Ref{Kind: domain.EntityContestant, ID: "ct"}, want: "BHS Midwinter 2025 Senior Old School", ok: true},
		{name: "competitor", ref: domain.Ref{Kind: domain.EntityCompetitor, ID: "comp"}, want: "BHS District Plateau AA Qualifier 2025 Old School", ok: true},
		{name: "session", ref: domain.Ref{Kind: domain.EntitySession, ID: "sess"}, want: "BHS Midwinter 2025 Senior Semis", ok: true},
		{name: "performance", ref: domain.Ref{Kind: domain.EntityPerformance, ID: "perf"}, want: "BHS Midwinter 2025 Senior Semis Old School", ok: true},
		{name: "song", ref: domain.Ref{Kind: domain.EntitySong, ID: "song"}, want: "BHS Midwinter 2025 Senior Semis Old School Song 2", ok: true},
		{name: "score", ref: domain.Ref{Kind: domain.EntityScore, ID: "score"}, want: "BHS Midwinter 2025 Senior Semis Old School Song 2 S3", ok: true},
		{name: "judge", ref: domain.Ref{Kind: domain.EntityJudge, ID: "judge"}, want: "BHS Midwinter 2025 Senior Practice S3", ok: true},
		{name: "singer", ref: domain.Ref{Kind: domain.EntitySinger, ID: "singer"}, want: "Old School Lead", ok: true},
		{name: "director", ref: domain.Ref{Kind: domain.EntityDirector, ID: "dir"}, want: "Ambassadors of Harmony Director", ok: true},
		{name: "group keeps its own name", ref: domain.Ref{Kind: domain.EntityGroup, ID: "group"}},
		{name: "missing award", ref: domain.Ref{Kind: domain.EntityAward, ID: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Name(s, tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestJoin verifies that empty parts are skipped.
func TestJoin(t *testing.T) {
	assert.Equal(t, "BHS 2024", join("BHS", "", "2024"))
	assert.Equal(t, "", join("", ""))
	assert.Equal(t, "", year(0))
}
