package domain

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Entity type names used in errors, notices and touched references.
const (
	EntityConvention  = "convention"
	EntityGroup       = "group"
	EntityPerson      = "person"
	EntityContest     = "contest"
	EntityAward       = "award"
	EntityContestant  = "contestant"
	EntityCompetitor  = "competitor"
	EntitySession     = "session"
	EntityPerformance = "performance"
	EntitySong        = "song"
	EntityScore       = "score"
	EntityJudge       = "judge"
	EntitySinger      = "singer"
	EntityDirector    = "director"
)

// Ref identifies one entity in a Snapshot.
type Ref struct {
	Kind string
	ID   string
}

// Snapshot is the complete object graph of the contest engine. A Snapshot is
// treated as a value: writers receive a Clone, mutate it through the Put
// methods and the store installs it atomically when the unit of work
// succeeds, so readers never observe a partial transition.
//
// Entities are stored by value. Pointer fields inside an entity (such as
// Tally or Score.Points) are replaced, never written through, which keeps
// the shallow Clone safe.
type Snapshot struct {
	Conventions  map[string]Convention  `json:"conventions"`
	Groups       map[string]Group       `json:"groups"`
	Persons      map[string]Person      `json:"persons"`
	Contests     map[string]Contest     `json:"contests"`
	Awards       map[string]Award       `json:"awards"`
	Contestants  map[string]Contestant  `json:"contestants"`
	Competitors  map[string]Competitor  `json:"competitors"`
	Sessions     map[string]Session     `json:"sessions"`
	Performances map[string]Performance `json:"performances"`
	Songs        map[string]Song        `json:"songs"`
	Scores       map[string]Score       `json:"scores"`
	Judges       map[string]Judge       `json:"judges"`
	Singers      map[string]Singer      `json:"singers"`
	Directors    map[string]Director    `json:"directors"`

	touched map[Ref]struct{}
}

// NewSnapshot returns an empty Snapshot.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.ensure()
	return s
}

// ensure allocates any nil map, which is the state of a freshly decoded
// Snapshot whose payload omitted an entity type.
func (s *Snapshot) ensure() {
	if s.Conventions == nil {
		s.Conventions = make(map[string]Convention)
	}
	if s.Groups == nil {
		s.Groups = make(map[string]Group)
	}
	if s.Persons == nil {
		s.Persons = make(map[string]Person)
	}
	if s.Contests == nil {
		s.Contests = make(map[string]Contest)
	}
	if s.Awards == nil {
		s.Awards = make(map[string]Award)
	}
	if s.Contestants == nil {
		s.Contestants = make(map[string]Contestant)
	}
	if s.Competitors == nil {
		s.Competitors = make(map[string]Competitor)
	}
	if s.Sessions == nil {
		s.Sessions = make(map[string]Session)
	}
	if s.Performances == nil {
		s.Performances = make(map[string]Performance)
	}
	if s.Songs == nil {
		s.Songs = make(map[string]Song)
	}
	if s.Scores == nil {
		s.Scores = make(map[string]Score)
	}
	if s.Judges == nil {
		s.Judges = make(map[string]Judge)
	}
	if s.Singers == nil {
		s.Singers = make(map[string]Singer)
	}
	if s.Directors == nil {
		s.Directors = make(map[string]Director)
	}
}

// Normalize prepares a decoded Snapshot for use.
func (s *Snapshot) Normalize() *Snapshot {
	s.ensure()
	return s
}

// Clone returns an independent copy whose maps may be mutated without
// affecting s. The touched set of the copy starts empty.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Conventions:  maps.Clone(s.Conventions),
		Groups:       maps.Clone(s.Groups),
		Persons:      maps.Clone(s.Persons),
		Contests:     maps.Clone(s.Contests),
		Awards:       maps.Clone(s.Awards),
		Contestants:  maps.Clone(s.Contestants),
		Competitors:  maps.Clone(s.Competitors),
		Sessions:     maps.Clone(s.Sessions),
		Performances: maps.Clone(s.Performances),
		Songs:        maps.Clone(s.Songs),
		Scores:       maps.Clone(s.Scores),
		Judges:       maps.Clone(s.Judges),
		Singers:      maps.Clone(s.Singers),
		Directors:    maps.Clone(s.Directors),
	}
	c.ensure()
	return c
}

// Touched returns every entity written through a Put method since the
// snapshot was cloned, ordered by kind and then ID.
func (s *Snapshot) Touched() []Ref {
	refs := slices.Collect(maps.Keys(s.touched))
	slices.SortFunc(refs, func(a, b Ref) int {
		if c := strings.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return refs
}

// ResetTouched clears the touched set.
func (s *Snapshot) ResetTouched() { s.touched = nil }

func (s *Snapshot) touch(kind, id string) {
	if s.touched == nil {
		s.touched = make(map[Ref]struct{})
	}
	s.touched[Ref{Kind: kind, ID: id}] = struct{}{}
}

func (s *Snapshot) PutConvention(v Convention) {
	s.Conventions[v.ID] = v
	s.touch(EntityConvention, v.ID)
}

func (s *Snapshot) PutGroup(v Group) {
	s.Groups[v.ID] = v
	s.touch(EntityGroup, v.ID)
}

func (s *Snapshot) PutPerson(v Person) {
	s.Persons[v.ID] = v
	s.touch(EntityPerson, v.ID)
}

func (s *Snapshot) PutContest(v Contest) {
	s.Contests[v.ID] = v
	s.touch(EntityContest, v.ID)
}

func (s *Snapshot) PutAward(v Award) {
	s.Awards[v.ID] = v
	s.touch(EntityAward, v.ID)
}

func (s *Snapshot) PutContestant(v Contestant) {
	s.Contestants[v.ID] = v
	s.touch(EntityContestant, v.ID)
}

func (s *Snapshot) PutCompetitor(v Competitor) {
	s.Competitors[v.ID] = v
	s.touch(EntityCompetitor, v.ID)
}

func (s *Snapshot) PutSession(v Session) {
	s.Sessions[v.ID] = v
	s.touch(EntitySession, v.ID)
}

func (s *Snapshot) PutPerformance(v Performance) {
	s.Performances[v.ID] = v
	s.touch(EntityPerformance, v.ID)
}

func (s *Snapshot) PutSong(v Song) {
	s.Songs[v.ID] = v
	s.touch(EntitySong, v.ID)
}

func (s *Snapshot) PutScore(v Score) {
	s.Scores[v.ID] = v
	s.touch(EntityScore, v.ID)
}

func (s *Snapshot) PutJudge(v Judge) {
	s.Judges[v.ID] = v
	s.touch(EntityJudge, v.ID)
}

func (s *Snapshot) PutSinger(v Singer) {
	s.Singers[v.ID] = v
	s.touch(EntitySinger, v.ID)
}

func (s *Snapshot) PutDirector(v Director) {
	s.Directors[v.ID] = v
	s.touch(EntityDirector, v.ID)
}

func lookup[T any](m map[string]T, entity, id string) (T, error) {
	v, ok := m[id]
	if !ok {
		var zero T
		return zero, notFound(entity, id)
	}
	return v, nil
}

func (s *Snapshot) Convention(id string) (Convention, error) {
	return lookup(s.Conventions, EntityConvention, id)
}
func (s *Snapshot) Group(id string) (Group, error)     { return lookup(s.Groups, EntityGroup, id) }
func (s *Snapshot) Person(id string) (Person, error)   { return lookup(s.Persons, EntityPerson, id) }
func (s *Snapshot) Contest(id string) (Contest, error) { return lookup(s.Contests, EntityContest, id) }
func (s *Snapshot) Award(id string) (Award, error)     { return lookup(s.Awards, EntityAward, id) }
func (s *Snapshot) Contestant(id string) (Contestant, error) {
	return lookup(s.Contestants, EntityContestant, id)
}
func (s *Snapshot) Competitor(id string) (Competitor, error) {
	return lookup(s.Competitors, EntityCompetitor, id)
}
func (s *Snapshot) Session(id string) (Session, error) { return lookup(s.Sessions, EntitySession, id) }
func (s *Snapshot) Performance(id string) (Performance, error) {
	return lookup(s.Performances, EntityPerformance, id)
}
func (s *Snapshot) Song(id string) (Song, error)   { return lookup(s.Songs, EntitySong, id) }
func (s *Snapshot) Score(id string) (Score, error) { return lookup(s.Scores, EntityScore, id) }
func (s *Snapshot) Judge(id string) (Judge, error) { return lookup(s.Judges, EntityJudge, id) }

// ContestOfPerformance walks Performance → Session → Contest.
func (s *Snapshot) ContestOfPerformance(performanceID string) (Contest, error) {
	p, err := s.Performance(performanceID)
	if err != nil {
		return Contest{}, err
	}
	sess, err := s.Session(p.SessionID)
	if err != nil {
		return Contest{}, err
	}
	return s.Contest(sess.ContestID)
}

// ContestOfScore walks Score → Song → Performance → Session → Contest.
func (s *Snapshot) ContestOfScore(scoreID string) (Contest, error) {
	sc, err := s.Score(scoreID)
	if err != nil {
		return Contest{}, err
	}
	song, err := s.Song(sc.SongID)
	if err != nil {
		return Contest{}, err
	}
	return s.ContestOfPerformance(song.PerformanceID)
}

func filterSorted[T any](m map[string]T, keep func(T) bool, order func(a, b T) int) []T {
	var out []T
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, order)
	return out
}

func byID(a, b Meta) int { return strings.Compare(a.ID, b.ID) }

// SessionsOf returns a contest's sessions ordered by round number.
func (s *Snapshot) SessionsOf(contestID string) []Session {
	return filterSorted(s.Sessions,
		func(v Session) bool { return v.ContestID == contestID },
		func(a, b Session) int { return cmp.Or(cmp.Compare(a.Num, b.Num), byID(a.Meta, b.Meta)) })
}

// SessionByNum returns the contest's session for round num.
func (s *Snapshot) SessionByNum(contestID string, num int) (Session, bool) {
	for _, v := range s.Sessions {
		if v.ContestID == contestID && v.Num == num {
			return v, true
		}
	}
	return Session{}, false
}

// PerformancesOf returns a session's performances in draw order.
func (s *Snapshot) PerformancesOf(sessionID string) []Performance {
	return filterSorted(s.Performances,
		func(v Performance) bool { return v.SessionID == sessionID },
		func(a, b Performance) int {
			return cmp.Or(cmp.Compare(a.Position, b.Position), byID(a.Meta, b.Meta))
		})
}

// PerformancesOfContestant returns every performance of a contestant
// ordered by ID.
func (s *Snapshot) PerformancesOfContestant(contestantID string) []Performance {
	return filterSorted(s.Performances,
		func(v Performance) bool { return v.ContestantID == contestantID },
		func(a, b Performance) int { return byID(a.Meta, b.Meta) })
}

// SongsOf returns a performance's songs by order.
func (s *Snapshot) SongsOf(performanceID string) []Song {
	return filterSorted(s.Songs,
		func(v Song) bool { return v.PerformanceID == performanceID },
		func(a, b Song) int { return cmp.Or(cmp.Compare(a.Order, b.Order), byID(a.Meta, b.Meta)) })
}

// ScoresOf returns a song's scores ordered by category, then by the slot of
// the judge who awarded them.
func (s *Snapshot) ScoresOf(songID string) []Score {
	slot := func(sc Score) int { return s.Judges[sc.JudgeID].Slot }
	return filterSorted(s.Scores,
		func(v Score) bool { return v.SongID == songID },
		func(a, b Score) int {
			return cmp.Or(
				cmp.Compare(a.Category, b.Category),
				cmp.Compare(slot(a), slot(b)),
				byID(a.Meta, b.Meta),
			)
		})
}

// ScoresOfPerformance returns the scores of both songs of a performance.
func (s *Snapshot) ScoresOfPerformance(performanceID string) []Score {
	var out []Score
	for _, song := range s.SongsOf(performanceID) {
		out = append(out, s.ScoresOf(song.ID)...)
	}
	return out
}

func judgeOrder(a, b Judge) int {
	return cmp.Or(
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Category, b.Category),
		cmp.Compare(a.Slot, b.Slot),
		byID(a.Meta, b.Meta),
	)
}

// JudgesOf returns a contest's panel, admins included.
func (s *Snapshot) JudgesOf(contestID string) []Judge {
	return filterSorted(s.Judges,
		func(v Judge) bool { return v.ContestID == contestID },
		judgeOrder)
}

// ScoringJudges returns the judges of a contest that award points.
func (s *Snapshot) ScoringJudges(contestID string) []Judge {
	return filterSorted(s.Judges,
		func(v Judge) bool { return v.ContestID == contestID && v.Scoring() },
		judgeOrder)
}

// ContestantsOf returns a contest's contestants ordered by ID.
func (s *Snapshot) ContestantsOf(contestID string) []Contestant {
	return filterSorted(s.Contestants,
		func(v Contestant) bool { return v.ContestID == contestID },
		func(a, b Contestant) int { return byID(a.Meta, b.Meta) })
}

// CompetitorsOf returns an award's competitors ordered by ID.
func (s *Snapshot) CompetitorsOf(awardID string) []Competitor {
	return filterSorted(s.Competitors,
		func(v Competitor) bool { return v.AwardID == awardID },
		func(a, b Competitor) int { return byID(a.Meta, b.Meta) })
}

// AwardsOf returns a contest's awards ordered by ID.
func (s *Snapshot) AwardsOf(contestID string) []Award {
	return filterSorted(s.Awards,
		func(v Award) bool { return v.ContestID == contestID },
		func(a, b Award) int { return byID(a.Meta, b.Meta) })
}

// SingersOf returns a contestant's singers by part.
func (s *Snapshot) SingersOf(contestantID string) []Singer {
	return filterSorted(s.Singers,
		func(v Singer) bool { return v.ContestantID == contestantID },
		func(a, b Singer) int { return cmp.Or(cmp.Compare(a.Part, b.Part), byID(a.Meta, b.Meta)) })
}

// DirectorsOf returns a contestant's directors.
func (s *Snapshot) DirectorsOf(contestantID string) []Director {
	return filterSorted(s.Directors,
		func(v Director) bool { return v.ContestantID == contestantID },
		func(a, b Director) int { return byID(a.Meta, b.Meta) })
}

func stampMeta[T any](m map[string]T, id string, meta func(*T) *Meta, fn func(*Meta)) bool {
	v, ok := m[id]
	if !ok {
		return false
	}
	fn(meta(&v))
	m[id] = v
	return true
}

// Stamp applies fn to the Meta of the entity ref points at without marking
// it touched. It reports whether the entity exists.
func (s *Snapshot) Stamp(ref Ref, fn func(m *Meta)) bool {
	switch ref.Kind {
	case EntityConvention:
		return stampMeta(s.Conventions, ref.ID, func(v *Convention) *Meta { return &v.Meta }, fn)
	case EntityGroup:
		return stampMeta(s.Groups, ref.ID, func(v *Group) *Meta { return &v.Meta }, fn)
	case EntityPerson:
		return stampMeta(s.Persons, ref.ID, func(v *Person) *Meta { return &v.Meta }, fn)
	case EntityContest:
		return stampMeta(s.Contests, ref.ID, func(v *Contest) *Meta { return &v.Meta }, fn)
	case EntityAward:
		return stampMeta(s.Awards, ref.ID, func(v *Award) *Meta { return &v.Meta }, fn)
	case EntityContestant:
		return stampMeta(s.Contestants, ref.ID, func(v *Contestant) *Meta { return &v.Meta }, fn)
	case EntityCompetitor:
		return stampMeta(s.Competitors, ref.ID, func(v *Competitor) *Meta { return &v.Meta }, fn)
	case EntitySession:
		return stampMeta(s.Sessions, ref.ID, func(v *Session) *Meta { return &v.Meta }, fn)
	case EntityPerformance:
		return stampMeta(s.Performances, ref.ID, func(v *Performance) *Meta { return &v.Meta }, fn)
	case EntitySong:
		return stampMeta(s.Songs, ref.ID, func(v *Song) *Meta { return &v.Meta }, fn)
	case EntityScore:
		return stampMeta(s.Scores, ref.ID, func(v *Score) *Meta { return &v.Meta }, fn)
	case EntityJudge:
		return stampMeta(s.Judges, ref.ID, func(v *Judge) *Meta { return &v.Meta }, fn)
	case EntitySinger:
		return stampMeta(s.Singers, ref.ID, func(v *Singer) *Meta { return &v.Meta }, fn)
	case EntityDirector:
		return stampMeta(s.Directors, ref.ID, func(v *Director) *Meta { return &v.Meta }, fn)
	}
	return false
}
