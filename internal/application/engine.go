// Package application orchestrates the contest engine: it wires the domain
// state machines to a store, validates requests and configuration, derives
// names and timestamps, and reports every transition to logs, metrics,
// traces and notification hooks.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// Dependencies holds the optional collaborators of an Engine. Nil fields
// fall back to defaults: a discarding logger, no metrics, no tracing, no
// notifications, random UUIDs and the wall clock.
type Dependencies struct {
	Logger   *slog.Logger
	Metrics  ports.MetricsCollector
	Observer ports.TransitionObserver
	Notifier ports.Notifier
	// NewID generates entity IDs. Defaults to uuid.NewString.
	NewID func() string
	// Now stamps Created and Modified. Defaults to time.Now.
	Now func() time.Time
	// Shuffler overrides the draw configured in EngineConfig.
	Shuffler domain.Shuffler
}

// Engine is the operation surface of the contest engine. Every mutating
// operation runs as a single Store unit of work, so a failed transition
// leaves no partial writes and two concurrent transitions on the same
// entity can never both pass their guards.
type Engine struct {
	store    ports.Store
	env      domain.Env
	namer    *Namer
	validate *validator.Validate
	logger   *slog.Logger
	metrics  ports.MetricsCollector
	observer ports.TransitionObserver
	notifier ports.Notifier
	// queries collapses concurrent identical read queries.
	queries singleflight.Group
}

// NewEngine wires an Engine over store according to cfg. A nil cfg means
// DefaultConfig.
// It returns an error if the configuration is invalid.
func NewEngine(store ports.Store, cfg *EngineConfig, deps Dependencies) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", domain.ErrInvalidConfiguration)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	policy, err := cfg.OutlierPolicy()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		namer:    NewNamer(language.English),
		validate: v,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		observer: deps.Observer,
		notifier: deps.Notifier,
		env: domain.Env{
			NewID:    deps.NewID,
			Now:      deps.Now,
			Shuffle:  deps.Shuffler,
			Outliers: policy,
		},
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.env.NewID == nil {
		e.env.NewID = uuid.NewString
	}
	if e.env.Now == nil {
		e.env.Now = time.Now
	}
	if e.env.Shuffle == nil {
		e.env.Shuffle = cfg.Shuffler()
	}
	limit := cfg.Concurrency
	e.env.ForEach = func(n int, fn func(i int) error) error {
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i := range n {
			g.Go(func() error { return fn(i) })
		}
		return g.Wait()
	}
	return e, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error { return e.store.Close() }

// View runs fn against a consistent snapshot. fn must not mutate it.
func (e *Engine) View(ctx context.Context, fn func(s *domain.Snapshot) error) error {
	return e.store.View(ctx, fn)
}

// Fire runs the named transition on an entity. It is the generic entry point
// behind the per-transition methods.
func (e *Engine) Fire(ctx context.Context, entity, transition, id string) (domain.TransitionResult, error) {
	fn, err := domain.Lookup(entity, transition)
	if err != nil {
		return domain.TransitionResult{}, err
	}
	return e.apply(ctx, ports.TransitionEvent{Entity: entity, ID: id, Transition: transition}, fn)
}

// apply runs fn as one unit of work and handles everything around it:
// tracing, derived names and timestamps, metrics, logging and notices.
func (e *Engine) apply(
	ctx context.Context,
	event ports.TransitionEvent,
	fn domain.TransitionFunc,
) (domain.TransitionResult, error) {
	if e.observer != nil {
		ctx = e.observer.PreTransition(ctx, event)
	}
	start := time.Now()

	var res domain.TransitionResult
	open := -1
	err := e.store.Update(ctx, func(s *domain.Snapshot) error {
		r, err := fn(s, e.env, event.ID)
		if err != nil {
			return err
		}
		e.stamp(s)
		res = r
		if e.metrics != nil && movesPerformance(r) {
			open = openPerformances(s)
		}
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		res = domain.TransitionResult{}
	}

	if e.observer != nil {
		e.observer.PostTransition(ctx, event, res, elapsed, err)
	}
	e.record(event, res, elapsed, err)
	if err == nil && open >= 0 {
		e.metrics.RecordGauge("open_performances", float64(open), nil)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "transition rejected",
			"entity", event.Entity,
			"id", event.ID,
			"transition", event.Transition,
			"error", err,
		)
		return domain.TransitionResult{}, err
	}

	e.logger.InfoContext(ctx, res.Message,
		"entity", res.Entity,
		"id", res.ID,
		"transition", res.Transition,
		"from", res.From,
		"to", res.To,
		"effects", len(res.Effects),
	)
	e.notify(ctx, res)
	return res, nil
}

// stamp derives the name and timestamps of every entity written during the
// current unit of work.
func (e *Engine) stamp(s *domain.Snapshot) {
	now := e.env.Now().UTC()
	for _, ref := range s.Touched() {
		name, derived := e.namer.Name(s, ref)
		s.Stamp(ref, func(m *domain.Meta) {
			if derived {
				m.Name = name
			}
			if m.Created.IsZero() {
				m.Created = now
			}
			m.Modified = now
		})
	}
}

// record reports a transition to the metrics collector.
func (e *Engine) record(event ports.TransitionEvent, res domain.TransitionResult, elapsed time.Duration, err error) {
	if e.metrics == nil {
		return
	}
	labels := map[string]string{
		"entity":     event.Entity,
		"transition": event.Transition,
		"outcome":    domain.Outcome(err),
	}
	e.metrics.RecordLatency("transition", elapsed, labels)
	e.metrics.RecordCounter("transitions_total", 1, labels)
	if err != nil {
		return
	}

	res.Walk(func(r domain.TransitionResult) {
		if r.Entity == domain.EntityScore && r.Transition == domain.TransitionFlag {
			e.metrics.RecordCounter("scores_flagged_total", 1, map[string]string{"entity": domain.EntityScore})
		}
	})
}

func movesPerformance(res domain.TransitionResult) bool {
	moved := false
	res.Walk(func(r domain.TransitionResult) {
		if r.Entity == domain.EntityPerformance {
			moved = true
		}
	})
	return moved
}

// openPerformances counts performances that have started but are not yet
// confirmed.
func openPerformances(s *domain.Snapshot) int {
	n := 0
	for _, p := range s.Performances {
		if p.Status == domain.PerformanceStarted || p.Status == domain.PerformanceFinished {
			n++
		}
	}
	return n
}

// notify delivers the notices carried by a committed result. Delivery
// failures are logged and never undo the transition.
func (e *Engine) notify(ctx context.Context, res domain.TransitionResult) {
	if e.notifier == nil {
		return
	}
	res.Walk(func(r domain.TransitionResult) {
		notice, ok := r.Notice()
		if !ok {
			return
		}
		if err := e.notifier.Notify(ctx, notice); err != nil {
			e.logger.WarnContext(ctx, "notice not delivered",
				"entity", notice.Entity,
				"id", notice.ID,
				"transition", notice.Transition,
				"error", err,
			)
		}
	})
}

// EnterScore records the points a judge awarded and recalculates the owning
// song and performance in the same unit of work.
func (e *Engine) EnterScore(ctx context.Context, scoreID string, points int) (domain.Score, error) {
	var score domain.Score
	err := e.store.Update(ctx, func(s *domain.Snapshot) error {
		if _, err := domain.EnterScore(s, e.env, scoreID, points); err != nil {
			return err
		}
		e.stamp(s)
		var err error
		score, err = s.Score(scoreID)
		return err
	})
	if err != nil {
		e.logger.WarnContext(ctx, "score rejected", "id", scoreID, "points", points, "error", err)
		return domain.Score{}, err
	}
	if e.metrics != nil {
		e.metrics.RecordHistogram("score_points", float64(points), map[string]string{
			"category": score.Category.String(),
		})
	}
	e.logger.DebugContext(ctx, "score entered", "id", scoreID, "points", points)
	return score, nil
}

// SeedContestants writes the seed of every accepted contestant of a built
// contest from their prelim scores.
func (e *Engine) SeedContestants(ctx context.Context, contestID string) ([]domain.Contestant, error) {
	var seeded []domain.Contestant
	err := e.store.Update(ctx, func(s *domain.Snapshot) error {
		out, err := domain.SeedContestants(s, e.env, contestID)
		if err != nil {
			return err
		}
		e.stamp(s)
		seeded = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "contestants seeded", "contest", contestID, "count", len(seeded))
	return seeded, nil
}

// Available lists the transitions whose source status and preconditions
// currently hold for an entity.
func (e *Engine) Available(ctx context.Context, entity, id string) ([]string, error) {
	var names []string
	err := e.store.View(ctx, func(s *domain.Snapshot) error {
		var err error
		names, err = available(s, entity, id)
		return err
	})
	return names, err
}

func available(s *domain.Snapshot, entity, id string) ([]string, error) {
	switch entity {
	case domain.EntityContest:
		v, err := s.Contest(id)
		if err != nil {
			return nil, err
		}
		return domain.ContestMachine().Available(s, id, v.Status), nil
	case domain.EntityAward:
		v, err := s.Award(id)
		if err != nil {
			return nil, err
		}
		return domain.AwardMachine().Available(s, id, v.Status), nil
	case domain.EntityContestant:
		v, err := s.Contestant(id)
		if err != nil {
			return nil, err
		}
		return domain.ContestantMachine().Available(s, id, v.Status), nil
	case domain.EntitySession:
		v, err := s.Session(id)
		if err != nil {
			return nil, err
		}
		return domain.SessionMachine().Available(s, id, v.Status), nil
	case domain.EntityPerformance:
		v, err := s.Performance(id)
		if err != nil {
			return nil, err
		}
		return domain.PerformanceMachine().Available(s, id, v.Status), nil
	case domain.EntitySong:
		v, err := s.Song(id)
		if err != nil {
			return nil, err
		}
		return domain.SongMachine().Available(s, id, v.Status), nil
	case domain.EntityScore:
		v, err := s.Score(id)
		if err != nil {
			return nil, err
		}
		return domain.ScoreMachine().Available(s, id, v.Status), nil
	}
	return nil, fmt.Errorf("%w: %s has no lifecycle", domain.ErrInvalidTransition, entity)
}

// BuildContest moves a new contest to Built and creates its sessions.
func (e *Engine) BuildContest(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContest, domain.TransitionBuild, id)
}

// StartContest registers the accepted contestants in drawn order and opens
// the first round.
func (e *Engine) StartContest(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContest, domain.TransitionStart, id)
}

// FinalizeContest places the contestants once every award is final.
func (e *Engine) FinalizeContest(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContest, domain.TransitionFinalize, id)
}

// BuildAward moves a new award to Built and ensures its sessions exist.
func (e *Engine) BuildAward(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityAward, domain.TransitionBuild, id)
}

// StartAward enters every competing contestant as a competitor.
func (e *Engine) StartAward(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityAward, domain.TransitionStart, id)
}

// FinishAward tallies and places the competitors of an award.
func (e *Engine) FinishAward(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityAward, domain.TransitionFinish, id)
}

// FinalizeAward finalizes a finished award.
func (e *Engine) FinalizeAward(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityAward, domain.TransitionFinalize, id)
}

// QualifyContestant marks a contestant as qualified.
func (e *Engine) QualifyContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionQualify, id)
}

// AcceptContestant records that a contestant accepted its invitation.
func (e *Engine) AcceptContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionAccept, id)
}

// DeclineContestant records that a contestant declined its invitation.
func (e *Engine) DeclineContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionDecline, id)
}

// RegisterContestant makes an accepted contestant official.
func (e *Engine) RegisterContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionRegister, id)
}

// DropContestant withdraws an official contestant.
func (e *Engine) DropContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionDrop, id)
}

// FinishContestant marks an official contestant as done competing.
func (e *Engine) FinishContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionFinish, id)
}

// FinalizeContestant finalizes a finished contestant.
func (e *Engine) FinalizeContestant(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityContestant, domain.TransitionFinalize, id)
}

// StartSession opens a round.
func (e *Engine) StartSession(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntitySession, domain.TransitionStart, id)
}

// FinishSession closes a round and places its performances.
func (e *Engine) FinishSession(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntitySession, domain.TransitionFinish, id)
}

// FinalizeSession finalizes a finished round.
func (e *Engine) FinalizeSession(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntitySession, domain.TransitionFinalize, id)
}

// StartPerformance opens a performance and creates its songs and scores.
func (e *Engine) StartPerformance(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityPerformance, domain.TransitionStart, id)
}

// FinishPerformance closes a performance and reviews its scores.
func (e *Engine) FinishPerformance(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityPerformance, domain.TransitionFinish, id)
}

// ConfirmPerformance confirms a reviewed performance and its scores.
func (e *Engine) ConfirmPerformance(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityPerformance, domain.TransitionConfirm, id)
}

// FinalizePerformance finalizes a performance with its songs and scores.
func (e *Engine) FinalizePerformance(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityPerformance, domain.TransitionFinalize, id)
}

// ConfirmSong confirms a song whose scores are all entered.
func (e *Engine) ConfirmSong(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntitySong, domain.TransitionConfirm, id)
}

// FinalizeSong finalizes a confirmed song.
func (e *Engine) FinalizeSong(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntitySong, domain.TransitionFinalize, id)
}

// FlagScore flags an entered score for review.
func (e *Engine) FlagScore(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityScore, domain.TransitionFlag, id)
}

// ValidateScore accepts an entered score, clearing any flag.
func (e *Engine) ValidateScore(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityScore, domain.TransitionValidate, id)
}

// ConfirmScore confirms a validated score.
func (e *Engine) ConfirmScore(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityScore, domain.TransitionConfirm, id)
}

// FinalizeScore finalizes a confirmed score.
func (e *Engine) FinalizeScore(ctx context.Context, id string) (domain.TransitionResult, error) {
	return e.Fire(ctx, domain.EntityScore, domain.TransitionFinalize, id)
}
