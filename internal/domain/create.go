package domain

import "fmt"

// The Add functions insert a new entity into a snapshot after checking the
// relational rules that span entities: references exist, unique key
// combinations are free and cardinality limits hold. Field ranges are checked
// by the caller. Statuses always start at New and an empty ID is assigned
// from env.

// DefaultMen is the men-on-stage count assumed for a new contestant.
const DefaultMen = 4

func assignID(env Env, m *Meta) {
	if m.ID == "" {
		m.ID = env.NewID()
	}
}

func ensureNew[T any](m map[string]T, entity, id string) error {
	if _, ok := m[id]; ok {
		return duplicate(entity, "id", "already exists")
	}
	return nil
}

// AddConvention inserts a convention.
func AddConvention(s *Snapshot, env Env, v Convention) (Convention, error) {
	assignID(env, &v.Meta)
	if err := ensureNew(s.Conventions, EntityConvention, v.ID); err != nil {
		return Convention{}, err
	}
	s.PutConvention(v)
	return v, nil
}

// AddGroup inserts a group identity.
func AddGroup(s *Snapshot, env Env, v Group) (Group, error) {
	assignID(env, &v.Meta)
	if err := ensureNew(s.Groups, EntityGroup, v.ID); err != nil {
		return Group{}, err
	}
	s.PutGroup(v)
	return v, nil
}

// AddPerson inserts a person identity.
func AddPerson(s *Snapshot, env Env, v Person) (Person, error) {
	assignID(env, &v.Meta)
	if err := ensureNew(s.Persons, EntityPerson, v.ID); err != nil {
		return Person{}, err
	}
	s.PutPerson(v)
	return v, nil
}

// AddContest inserts a contest, denormalizing year and organization from its
// convention.
func AddContest(s *Snapshot, env Env, v Contest) (Contest, error) {
	conv, err := s.Convention(v.ConventionID)
	if err != nil {
		return Contest{}, err
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Contests, EntityContest, v.ID); err != nil {
		return Contest{}, err
	}
	v.Status = ContestNew
	v.Year = conv.Year
	v.Organization = conv.Organization
	s.PutContest(v)
	return v, nil
}

// AddAward inserts an award. A qualifier needs a qualifying score and an
// award cannot count more rounds than its contest has.
func AddAward(s *Snapshot, env Env, v Award) (Award, error) {
	c, err := s.Contest(v.ContestID)
	if err != nil {
		return Award{}, err
	}
	verr := NewValidationError(EntityAward)
	if v.Goal == GoalQualifier && v.QualScore == nil {
		verr.AddFieldError("qual_score", "required when goal is qualifier")
	}
	if v.Rounds > c.Rounds {
		verr.AddFieldError("rounds", "cannot exceed the contest's rounds")
	}
	if err := verr.ErrOrNil(); err != nil {
		return Award{}, err
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Awards, EntityAward, v.ID); err != nil {
		return Award{}, err
	}
	v.Status = AwardNew
	if v.Organization == "" {
		v.Organization = c.Organization
	}
	if v.Year == 0 {
		v.Year = c.Year
	}
	s.PutAward(v)
	return v, nil
}

// AddContestant enters a group into a contest. A group enters a contest at
// most once.
func AddContestant(s *Snapshot, env Env, v Contestant) (Contestant, error) {
	if _, err := s.Contest(v.ContestID); err != nil {
		return Contestant{}, err
	}
	if _, err := s.Group(v.GroupID); err != nil {
		return Contestant{}, err
	}
	for _, other := range s.ContestantsOf(v.ContestID) {
		if other.GroupID == v.GroupID {
			return Contestant{}, duplicate(EntityContestant, "group_id", "group already entered in contest")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Contestants, EntityContestant, v.ID); err != nil {
		return Contestant{}, err
	}
	v.Status = ContestantNew
	if v.Men == nil {
		men := DefaultMen
		v.Men = &men
	}
	v.Tally, v.Place = Tally{}, nil
	s.PutContestant(v)
	return v, nil
}

// AddCompetitor enters a contestant for an award of the same contest.
func AddCompetitor(s *Snapshot, env Env, v Competitor) (Competitor, error) {
	a, err := s.Award(v.AwardID)
	if err != nil {
		return Competitor{}, err
	}
	ct, err := s.Contestant(v.ContestantID)
	if err != nil {
		return Competitor{}, err
	}
	if a.ContestID != ct.ContestID {
		verr := NewValidationError(EntityCompetitor)
		verr.AddFieldError("contestant_id", "contestant and award belong to different contests")
		return Competitor{}, verr
	}
	for _, other := range s.CompetitorsOf(a.ID) {
		if other.ContestantID == ct.ID {
			return Competitor{}, duplicate(EntityCompetitor, "contestant_id", "contestant already competing for award")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Competitors, EntityCompetitor, v.ID); err != nil {
		return Competitor{}, err
	}
	v.Status = CompetitorNew
	v.Tally, v.Place = Tally{}, nil
	s.PutCompetitor(v)
	return v, nil
}

// AddSession inserts a round of a contest. Its kind follows from the round
// number.
func AddSession(s *Snapshot, env Env, v Session) (Session, error) {
	c, err := s.Contest(v.ContestID)
	if err != nil {
		return Session{}, err
	}
	if v.Num < 1 || v.Num > c.Rounds {
		verr := NewValidationError(EntitySession)
		verr.AddFieldError("num", "must be within the contest's rounds")
		return Session{}, verr
	}
	if _, ok := s.SessionByNum(c.ID, v.Num); ok {
		return Session{}, duplicate(EntitySession, "num", "round already exists")
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Sessions, EntitySession, v.ID); err != nil {
		return Session{}, err
	}
	v.Status = SessionNew
	v.Kind = SessionKindFor(c.Rounds, v.Num)
	s.PutSession(v)
	return v, nil
}

// AddPerformance appends a contestant to the draw of a session that has not
// finished. Contest start creates first-round performances itself; later
// rounds are drawn through here.
func AddPerformance(s *Snapshot, env Env, v Performance) (Performance, error) {
	sess, err := s.Session(v.SessionID)
	if err != nil {
		return Performance{}, err
	}
	ct, err := s.Contestant(v.ContestantID)
	if err != nil {
		return Performance{}, err
	}
	verr := NewValidationError(EntityPerformance)
	if sess.ContestID != ct.ContestID {
		verr.AddFieldError("contestant_id", "contestant and session belong to different contests")
	}
	if sess.Status >= SessionFinished {
		verr.AddFieldError("session_id", "session is "+sess.Status.String())
	}
	if err := verr.ErrOrNil(); err != nil {
		return Performance{}, err
	}
	existing := s.PerformancesOf(sess.ID)
	for _, other := range existing {
		if other.ContestantID == ct.ID {
			return Performance{}, duplicate(EntityPerformance, "contestant_id", "contestant already drawn in session")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Performances, EntityPerformance, v.ID); err != nil {
		return Performance{}, err
	}
	v.Status = PerformanceNew
	v.Position = len(existing)
	v.Tally, v.Place = Tally{}, nil
	s.PutPerformance(v)
	return v, nil
}

// AddJudge seats a judge on a contest panel. Each (kind, category, slot) seat
// holds one judge, and scoring slots run from 1 to the contest size. The
// panel is fixed once the contest starts or any of its performances has
// created scores.
func AddJudge(s *Snapshot, env Env, v Judge) (Judge, error) {
	contest, err := s.Contest(v.ContestID)
	if err != nil {
		return Judge{}, err
	}
	if v.PersonID != "" {
		if _, err := s.Person(v.PersonID); err != nil {
			return Judge{}, err
		}
	}
	verr := NewValidationError(EntityJudge)
	if contest.Status >= ContestStarted || performanceStarted(s, contest.ID) {
		verr.AddFieldError("contest_id", "panel is closed once the contest has started")
	}
	if v.Scoring() && v.Slot > contest.Size {
		verr.AddFieldError("slot", fmt.Sprintf("must be at most the contest size %d", contest.Size))
	}
	if err := verr.ErrOrNil(); err != nil {
		return Judge{}, err
	}
	for _, other := range s.JudgesOf(v.ContestID) {
		if other.Kind == v.Kind && other.Category == v.Category && other.Slot == v.Slot {
			return Judge{}, duplicate(EntityJudge, "slot", "seat already taken")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Judges, EntityJudge, v.ID); err != nil {
		return Judge{}, err
	}
	s.PutJudge(v)
	return v, nil
}

// AddSinger places a person on a part of a quartet contestant. A quartet
// has at most MaxSingers singers, one per part.
func AddSinger(s *Snapshot, env Env, v Singer) (Singer, error) {
	ct, err := s.Contestant(v.ContestantID)
	if err != nil {
		return Singer{}, err
	}
	g, err := s.Group(ct.GroupID)
	if err != nil {
		return Singer{}, err
	}
	if _, err := s.Person(v.PersonID); err != nil {
		return Singer{}, err
	}
	verr := NewValidationError(EntitySinger)
	if g.Kind != GroupQuartet {
		verr.AddFieldError("contestant_id", "singers belong to quartets only")
	}
	singers := s.SingersOf(ct.ID)
	if len(singers) >= MaxSingers {
		verr.AddFieldError("contestant_id", "quartet already has four singers")
	}
	if err := verr.ErrOrNil(); err != nil {
		return Singer{}, err
	}
	for _, other := range singers {
		if other.Part == v.Part {
			return Singer{}, duplicate(EntitySinger, "part", "part already sung")
		}
		if other.PersonID == v.PersonID {
			return Singer{}, duplicate(EntitySinger, "person_id", "person already singing")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Singers, EntitySinger, v.ID); err != nil {
		return Singer{}, err
	}
	s.PutSinger(v)
	return v, nil
}

// AddDirector assigns a director to a chorus contestant.
func AddDirector(s *Snapshot, env Env, v Director) (Director, error) {
	ct, err := s.Contestant(v.ContestantID)
	if err != nil {
		return Director{}, err
	}
	g, err := s.Group(ct.GroupID)
	if err != nil {
		return Director{}, err
	}
	if _, err := s.Person(v.PersonID); err != nil {
		return Director{}, err
	}
	if g.Kind != GroupChorus {
		verr := NewValidationError(EntityDirector)
		verr.AddFieldError("contestant_id", "directors belong to choruses only")
		return Director{}, verr
	}
	for _, other := range s.DirectorsOf(ct.ID) {
		if other.PersonID == v.PersonID {
			return Director{}, duplicate(EntityDirector, "person_id", "person already directing")
		}
	}
	assignID(env, &v.Meta)
	if err := ensureNew(s.Directors, EntityDirector, v.ID); err != nil {
		return Director{}, err
	}
	s.PutDirector(v)
	return v, nil
}

// performanceStarted reports whether any performance of the contest has
// left New, which means its scores already exist.
func performanceStarted(s *Snapshot, contestID string) bool {
	for _, sess := range s.SessionsOf(contestID) {
		for _, p := range s.PerformancesOf(sess.ID) {
			if p.Status >= PerformanceStarted {
				return true
			}
		}
	}
	return false
}
