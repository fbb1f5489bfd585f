package application

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// wordOverrides fixes words that title casing gets wrong.
var wordOverrides = map[string]string{
	"Aa":      "AA",
	"Aaa":     "AAA",
	"Dealers": "Dealer's",
}

// Namer derives the display name of an entity from its own fields and those
// of its ancestors. Names are recomputed from the snapshot every time, so
// the stored name of an ancestor never leaks a stale value into a child.
// Groups and persons keep the name supplied by the membership directory.
type Namer struct {
	tag language.Tag
}

// NewNamer creates a Namer that title-cases labels for the given language.
func NewNamer(tag language.Tag) *Namer {
	return &Namer{tag: tag}
}

// Label renders an enum label such as "plateau_aa" as "Plateau AA".
func (n *Namer) Label(v fmt.Stringer) string {
	raw := strings.ReplaceAll(v.String(), "_", " ")
	if raw == "" || strings.HasPrefix(raw, "unknown") {
		return ""
	}
	// A Caser is stateful and must not be shared between goroutines.
	words := strings.Fields(cases.Title(n.tag).String(raw))
	for i, w := range words {
		if o, ok := wordOverrides[w]; ok {
			words[i] = o
		}
	}
	return strings.Join(words, " ")
}

// Name returns the display name for ref. It reports false for entities whose
// name is not derived.
func (n *Namer) Name(s *domain.Snapshot, ref domain.Ref) (string, bool) {
	switch ref.Kind {
	case domain.EntityConvention:
		return n.convention(s, ref.ID), true
	case domain.EntityContest:
		return n.contest(s, ref.ID), true
	case domain.EntityAward:
		a, ok := s.Awards[ref.ID]
		if !ok {
			return "", false
		}
		return join(a.Organization, n.Label(a.Level), n.Label(a.Kind), n.Label(a.Goal), year(a.Year)), true
	case domain.EntityContestant:
		ct, ok := s.Contestants[ref.ID]
		if !ok {
			return "", false
		}
		return join(n.contest(s, ct.ContestID), s.Groups[ct.GroupID].Name), true
	case domain.EntityCompetitor:
		comp, ok := s.Competitors[ref.ID]
		if !ok {
			return "", false
		}
		award, _ := n.Name(s, domain.Ref{Kind: domain.EntityAward, ID: comp.AwardID})
		return join(award, groupName(s, comp.ContestantID)), true
	case domain.EntitySession:
		return n.session(s, ref.ID), true
	case domain.EntityPerformance:
		return n.performance(s, ref.ID), true
	case domain.EntitySong:
		return n.song(s, ref.ID), true
	case domain.EntityScore:
		sc, ok := s.Scores[ref.ID]
		if !ok {
			return "", false
		}
		return join(n.song(s, sc.SongID), s.Judges[sc.JudgeID].Designation()), true
	case domain.EntityJudge:
		j, ok := s.Judges[ref.ID]
		if !ok {
			return "", false
		}
		return join(n.contest(s, j.ContestID), n.Label(j.Kind), j.Designation()), true
	case domain.EntitySinger:
		sg, ok := s.Singers[ref.ID]
		if !ok {
			return "", false
		}
		return join(groupName(s, sg.ContestantID), n.Label(sg.Part)), true
	case domain.EntityDirector:
		d, ok := s.Directors[ref.ID]
		if !ok {
			return "", false
		}
		return join(groupName(s, d.ContestantID), "Director"), true
	}
	return "", false
}

func (n *Namer) convention(s *domain.Snapshot, id string) string {
	c := s.Conventions[id]
	return join(c.Organization, c.Title, year(c.Year))
}

func (n *Namer) contest(s *domain.Snapshot, id string) string {
	c, ok := s.Contests[id]
	if !ok {
		return ""
	}
	return join(n.convention(s, c.ConventionID), n.Label(c.Kind))
}

func (n *Namer) session(s *domain.Snapshot, id string) string {
	ss, ok := s.Sessions[id]
	if !ok {
		return ""
	}
	return join(n.contest(s, ss.ContestID), n.Label(ss.Kind))
}

func (n *Namer) performance(s *domain.Snapshot, id string) string {
	p, ok := s.Performances[id]
	if !ok {
		return ""
	}
	return join(n.session(s, p.SessionID), groupName(s, p.ContestantID))
}

func (n *Namer) song(s *domain.Snapshot, id string) string {
	sg, ok := s.Songs[id]
	if !ok {
		return ""
	}
	return join(n.performance(s, sg.PerformanceID), "Song", strconv.Itoa(sg.Order))
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// join concatenates the non-empty parts with single spaces.
func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
