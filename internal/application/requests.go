package application

import (
	"context"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// The request types describe new entities as callers supply them. Field
// ranges and enum names are checked here with struct tags; the rules that
// span entities (references, uniqueness, cardinality) are checked by the
// domain when the entity is added. Both kinds of failure surface as a
// *domain.ValidationError.

// ConventionRequest describes a new convention.
type ConventionRequest struct {
	Organization string `yaml:"organization" validate:"required,max=100"`
	Title        string `yaml:"title" validate:"max=100"`
	Year         int    `yaml:"year" validate:"required,gte=1938,lte=2100"`
}

// GroupRequest describes a group identity from the membership directory.
type GroupRequest struct {
	Name string `yaml:"name" validate:"required,max=255"`
	Kind string `yaml:"kind" validate:"required,oneof=quartet chorus"`
}

// PersonRequest describes a person identity from the membership directory.
type PersonRequest struct {
	Name string `yaml:"name" validate:"required,max=255"`
}

// ContestRequest describes a new contest.
type ContestRequest struct {
	ConventionID string `yaml:"convention_id" validate:"required"`
	Kind         string `yaml:"kind" validate:"required,oneof=quartet chorus senior collegiate"`
	// Size is the number of judges per category.
	Size   int `yaml:"size" validate:"required,min=1,max=5"`
	Rounds int `yaml:"rounds" validate:"required,min=1,max=3"`
}

// AwardRequest describes a new award.
type AwardRequest struct {
	ContestID string   `yaml:"contest_id" validate:"required"`
	Kind      string   `yaml:"kind" validate:"required,oneof=quartet chorus senior collegiate novice plateau_a plateau_aa plateau_aaa dealers_choice"`
	Level     string   `yaml:"level" validate:"required,oneof=international district division"`
	Goal      string   `yaml:"goal" validate:"required,oneof=championship qualifier"`
	QualScore *float64 `yaml:"qual_score" validate:"omitempty,gte=0,lte=100"`
	Rounds    int      `yaml:"rounds" validate:"required,min=1,max=3"`
}

// ContestantRequest describes a group entering a contest.
type ContestantRequest struct {
	ContestID string   `yaml:"contest_id" validate:"required"`
	GroupID   string   `yaml:"group_id" validate:"required"`
	Prelim    *float64 `yaml:"prelim" validate:"omitempty,gte=0,lte=100"`
	Men       *int     `yaml:"men" validate:"omitempty,min=1,max=300"`
}

// CompetitorRequest enters a contestant into an award.
type CompetitorRequest struct {
	AwardID      string `yaml:"award_id" validate:"required"`
	ContestantID string `yaml:"contestant_id" validate:"required"`
}

// SessionRequest describes one round of a contest.
type SessionRequest struct {
	ContestID string `yaml:"contest_id" validate:"required"`
	Num       int    `yaml:"num" validate:"required,min=1,max=3"`
	Slots     *int   `yaml:"slots" validate:"omitempty,min=1"`
}

// PerformanceRequest places a contestant on the program of a session.
type PerformanceRequest struct {
	SessionID    string `yaml:"session_id" validate:"required"`
	ContestantID string `yaml:"contestant_id" validate:"required"`
}

// JudgeRequest seats a judge on a contest panel.
type JudgeRequest struct {
	ContestID string `yaml:"contest_id" validate:"required"`
	PersonID  string `yaml:"person_id"`
	Category  string `yaml:"category" validate:"required,oneof=admin music presentation singing"`
	Kind      string `yaml:"kind" validate:"required,oneof=official practice composite"`
	Slot      int    `yaml:"slot" validate:"required,min=1,max=5"`
}

// SingerRequest places a person on a voice part of a quartet.
type SingerRequest struct {
	ContestantID string `yaml:"contestant_id" validate:"required"`
	PersonID     string `yaml:"person_id" validate:"required"`
	Part         string `yaml:"part" validate:"required,oneof=tenor lead baritone bass"`
}

// DirectorRequest assigns a person to lead a chorus.
type DirectorRequest struct {
	ContestantID string `yaml:"contestant_id" validate:"required"`
	PersonID     string `yaml:"person_id" validate:"required"`
}

// check runs struct validation over req and reports failures against entity.
func (e *Engine) check(entity string, req any) error {
	if err := e.validate.Struct(req); err != nil {
		return toValidationError(entity, err)
	}
	return nil
}

// parseField parses an enum field whose name was already checked by a
// oneof tag.
func parseField[T any](verr *domain.ValidationError, field, value string, parse func(string) (T, error)) T {
	v, err := parse(value)
	if err != nil {
		verr.AddFieldError(field, err.Error())
	}
	return v
}

// create adds an entity in its own unit of work and returns it with its
// derived name and timestamps.
func create[T any](
	ctx context.Context,
	e *Engine,
	entity string,
	add func(s *domain.Snapshot, env domain.Env) (T, error),
	reload func(s *domain.Snapshot, v T) T,
) (T, error) {
	var out T
	err := e.store.Update(ctx, func(s *domain.Snapshot) error {
		v, err := add(s, e.env)
		if err != nil {
			return err
		}
		e.stamp(s)
		out = reload(s, v)
		return nil
	})
	if err != nil {
		e.logger.WarnContext(ctx, "create rejected", "entity", entity, "error", err)
		var zero T
		return zero, err
	}
	if e.metrics != nil {
		e.metrics.RecordCounter("entities_created_total", 1, map[string]string{"entity": entity})
	}
	e.logger.DebugContext(ctx, "entity created", "entity", entity)
	return out, nil
}

// AddConvention creates a convention.
func (e *Engine) AddConvention(ctx context.Context, req ConventionRequest) (domain.Convention, error) {
	if err := e.check(domain.EntityConvention, req); err != nil {
		return domain.Convention{}, err
	}
	v := domain.Convention{Organization: req.Organization, Title: req.Title, Year: req.Year}
	return create(ctx, e, domain.EntityConvention,
		func(s *domain.Snapshot, env domain.Env) (domain.Convention, error) {
			return domain.AddConvention(s, env, v)
		},
		func(s *domain.Snapshot, v domain.Convention) domain.Convention { return s.Conventions[v.ID] })
}

// AddGroup records a group identity.
func (e *Engine) AddGroup(ctx context.Context, req GroupRequest) (domain.Group, error) {
	if err := e.check(domain.EntityGroup, req); err != nil {
		return domain.Group{}, err
	}
	verr := domain.NewValidationError(domain.EntityGroup)
	v := domain.Group{
		Meta: domain.Meta{Name: req.Name},
		Kind: parseField(verr, "kind", req.Kind, domain.ParseGroupKind),
	}
	if err := verr.ErrOrNil(); err != nil {
		return domain.Group{}, err
	}
	return create(ctx, e, domain.EntityGroup,
		func(s *domain.Snapshot, env domain.Env) (domain.Group, error) { return domain.AddGroup(s, env, v) },
		func(s *domain.Snapshot, v domain.Group) domain.Group { return s.Groups[v.ID] })
}

// AddPerson records a person identity.
func (e *Engine) AddPerson(ctx context.Context, req PersonRequest) (domain.Person, error) {
	if err := e.check(domain.EntityPerson, req); err != nil {
		return domain.Person{}, err
	}
	v := domain.Person{Meta: domain.Meta{Name: req.Name}}
	return create(ctx, e, domain.EntityPerson,
		func(s *domain.Snapshot, env domain.Env) (domain.Person, error) { return domain.AddPerson(s, env, v) },
		func(s *domain.Snapshot, v domain.Person) domain.Person { return s.Persons[v.ID] })
}

// AddContest creates a contest within a convention.
func (e *Engine) AddContest(ctx context.Context, req ContestRequest) (domain.Contest, error) {
	if err := e.check(domain.EntityContest, req); err != nil {
		return domain.Contest{}, err
	}
	verr := domain.NewValidationError(domain.EntityContest)
	v := domain.Contest{
		ConventionID: req.ConventionID,
		Kind:         parseField(verr, "kind", req.Kind, domain.ParseContestKind),
		Size:         req.Size,
		Rounds:       req.Rounds,
	}
	if err := verr.ErrOrNil(); err != nil {
		return domain.Contest{}, err
	}
	return create(ctx, e, domain.EntityContest,
		func(s *domain.Snapshot, env domain.Env) (domain.Contest, error) { return domain.AddContest(s, env, v) },
		func(s *domain.Snapshot, v domain.Contest) domain.Contest { return s.Contests[v.ID] })
}

// AddAward creates an award computed from a contest.
func (e *Engine) AddAward(ctx context.Context, req AwardRequest) (domain.Award, error) {
	if err := e.check(domain.EntityAward, req); err != nil {
		return domain.Award{}, err
	}
	verr := domain.NewValidationError(domain.EntityAward)
	v := domain.Award{
		ContestID: req.ContestID,
		Kind:      parseField(verr, "kind", req.Kind, domain.ParseAwardKind),
		Level:     parseField(verr, "level", req.Level, domain.ParseAwardLevel),
		Goal:      parseField(verr, "goal", req.Goal, domain.ParseAwardGoal),
		QualScore: req.QualScore,
		Rounds:    req.Rounds,
	}
	if err := verr.ErrOrNil(); err != nil {
		return domain.Award{}, err
	}
	return create(ctx, e, domain.EntityAward,
		func(s *domain.Snapshot, env domain.Env) (domain.Award, error) { return domain.AddAward(s, env, v) },
		func(s *domain.Snapshot, v domain.Award) domain.Award { return s.Awards[v.ID] })
}

// AddContestant enters a group into a contest.
func (e *Engine) AddContestant(ctx context.Context, req ContestantRequest) (domain.Contestant, error) {
	if err := e.check(domain.EntityContestant, req); err != nil {
		return domain.Contestant{}, err
	}
	v := domain.Contestant{ContestID: req.ContestID, GroupID: req.GroupID, Prelim: req.Prelim, Men: req.Men}
	return create(ctx, e, domain.EntityContestant,
		func(s *domain.Snapshot, env domain.Env) (domain.Contestant, error) {
			return domain.AddContestant(s, env, v)
		},
		func(s *domain.Snapshot, v domain.Contestant) domain.Contestant { return s.Contestants[v.ID] })
}

// AddCompetitor enters a contestant into an award by hand.
func (e *Engine) AddCompetitor(ctx context.Context, req CompetitorRequest) (domain.Competitor, error) {
	if err := e.check(domain.EntityCompetitor, req); err != nil {
		return domain.Competitor{}, err
	}
	v := domain.Competitor{AwardID: req.AwardID, ContestantID: req.ContestantID}
	return create(ctx, e, domain.EntityCompetitor,
		func(s *domain.Snapshot, env domain.Env) (domain.Competitor, error) {
			return domain.AddCompetitor(s, env, v)
		},
		func(s *domain.Snapshot, v domain.Competitor) domain.Competitor { return s.Competitors[v.ID] })
}

// AddSession creates one round of a contest.
func (e *Engine) AddSession(ctx context.Context, req SessionRequest) (domain.Session, error) {
	if err := e.check(domain.EntitySession, req); err != nil {
		return domain.Session{}, err
	}
	v := domain.Session{ContestID: req.ContestID, Num: req.Num, Slots: req.Slots}
	return create(ctx, e, domain.EntitySession,
		func(s *domain.Snapshot, env domain.Env) (domain.Session, error) { return domain.AddSession(s, env, v) },
		func(s *domain.Snapshot, v domain.Session) domain.Session { return s.Sessions[v.ID] })
}

// AddPerformance appends a contestant to the program of a session.
func (e *Engine) AddPerformance(ctx context.Context, req PerformanceRequest) (domain.Performance, error) {
	if err := e.check(domain.EntityPerformance, req); err != nil {
		return domain.Performance{}, err
	}
	v := domain.Performance{SessionID: req.SessionID, ContestantID: req.ContestantID}
	return create(ctx, e, domain.EntityPerformance,
		func(s *domain.Snapshot, env domain.Env) (domain.Performance, error) {
			return domain.AddPerformance(s, env, v)
		},
		func(s *domain.Snapshot, v domain.Performance) domain.Performance { return s.Performances[v.ID] })
}

// AddJudge seats a judge on a contest panel.
func (e *Engine) AddJudge(ctx context.Context, req JudgeRequest) (domain.Judge, error) {
	if err := e.check(domain.EntityJudge, req); err != nil {
		return domain.Judge{}, err
	}
	verr := domain.NewValidationError(domain.EntityJudge)
	v := domain.Judge{
		ContestID: req.ContestID,
		PersonID:  req.PersonID,
		Category:  parseField(verr, "category", req.Category, domain.ParseCategory),
		Kind:      parseField(verr, "kind", req.Kind, domain.ParsePanelKind),
		Slot:      req.Slot,
	}
	if err := verr.ErrOrNil(); err != nil {
		return domain.Judge{}, err
	}
	return create(ctx, e, domain.EntityJudge,
		func(s *domain.Snapshot, env domain.Env) (domain.Judge, error) { return domain.AddJudge(s, env, v) },
		func(s *domain.Snapshot, v domain.Judge) domain.Judge { return s.Judges[v.ID] })
}

// AddSinger places a person on a voice part of a quartet contestant.
func (e *Engine) AddSinger(ctx context.Context, req SingerRequest) (domain.Singer, error) {
	if err := e.check(domain.EntitySinger, req); err != nil {
		return domain.Singer{}, err
	}
	verr := domain.NewValidationError(domain.EntitySinger)
	v := domain.Singer{
		ContestantID: req.ContestantID,
		PersonID:     req.PersonID,
		Part:         parseField(verr, "part", req.Part, domain.ParsePart),
	}
	if err := verr.ErrOrNil(); err != nil {
		return domain.Singer{}, err
	}
	return create(ctx, e, domain.EntitySinger,
		func(s *domain.Snapshot, env domain.Env) (domain.Singer, error) { return domain.AddSinger(s, env, v) },
		func(s *domain.Snapshot, v domain.Singer) domain.Singer { return s.Singers[v.ID] })
}

// AddDirector assigns a person to lead a chorus contestant.
func (e *Engine) AddDirector(ctx context.Context, req DirectorRequest) (domain.Director, error) {
	if err := e.check(domain.EntityDirector, req); err != nil {
		return domain.Director{}, err
	}
	v := domain.Director{ContestantID: req.ContestantID, PersonID: req.PersonID}
	return create(ctx, e, domain.EntityDirector,
		func(s *domain.Snapshot, env domain.Env) (domain.Director, error) {
			return domain.AddDirector(s, env, v)
		},
		func(s *domain.Snapshot, v domain.Director) domain.Director { return s.Directors[v.ID] })
}
