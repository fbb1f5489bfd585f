package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// Scenario is a declarative description of a whole contest: its panel, its
// contestants and the points every judge awarded. Running a scenario drives
// the contest through its complete lifecycle and reports the results.
// Use Scenario files to replay a contest offline or to reproduce a ranking.
type Scenario struct {
	// Version specifies the scenario schema version using semantic
	// versioning.
	Version string `yaml:"version" validate:"required,semver"`
	// Convention hosts the contest.
	Convention ConventionRequest `yaml:"convention" validate:"required"`
	// Contest describes the competition. Its convention is implied.
	Contest ScenarioContest `yaml:"contest" validate:"required"`
	// Judges seats the panel. When empty, one official judge is seated per
	// scoring category and slot, plus an administrator.
	Judges []ScenarioJudge `yaml:"judges" validate:"dive"`
	// Awards lists the titles computed from the contest.
	Awards []ScenarioAward `yaml:"awards" validate:"required,min=1,dive"`
	// Contestants lists the groups entering the contest.
	Contestants []ScenarioContestant `yaml:"contestants" validate:"required,min=1,dive"`
	// Rounds lists, per round, the performances in the order they are
	// scored. Groups appearing in round one are drawn; later rounds are
	// sung in the listed order.
	Rounds []ScenarioRound `yaml:"rounds" validate:"required,min=1,dive"`
	// Review validates every flagged score before performances are
	// confirmed, as an administrator would after checking the scoresheet.
	Review bool `yaml:"review"`
}

// ScenarioContest describes the contest of a scenario.
type ScenarioContest struct {
	Kind   string `yaml:"kind" validate:"required,oneof=quartet chorus senior collegiate"`
	Size   int    `yaml:"size" validate:"required,min=1,max=5"`
	Rounds int    `yaml:"rounds" validate:"required,min=1,max=3"`
}

// ScenarioJudge seats one judge.
type ScenarioJudge struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category" validate:"required,oneof=admin music presentation singing"`
	Kind     string `yaml:"kind" validate:"omitempty,oneof=official practice composite"`
	Slot     int    `yaml:"slot" validate:"required,min=1,max=5"`
}

// ScenarioAward describes one award.
type ScenarioAward struct {
	Kind      string   `yaml:"kind" validate:"required"`
	Level     string   `yaml:"level" validate:"required"`
	Goal      string   `yaml:"goal" validate:"required"`
	QualScore *float64 `yaml:"qual_score"`
	Rounds    int      `yaml:"rounds" validate:"required,min=1,max=3"`
}

// ScenarioContestant describes one group entering the contest.
type ScenarioContestant struct {
	Group  string   `yaml:"group" validate:"required,max=255"`
	Kind   string   `yaml:"kind" validate:"omitempty,oneof=quartet chorus"`
	Prelim *float64 `yaml:"prelim" validate:"omitempty,gte=0,lte=100"`
	// Declined contestants are invited but never compete.
	Declined bool `yaml:"declined"`
}

// ScenarioRound lists the performances of one round.
type ScenarioRound struct {
	Performances []ScenarioPerformance `yaml:"performances" validate:"required,min=1,dive"`
}

// ScenarioPerformance holds the points of one performance, in scoresheet
// order: song one then song two, each ordered by category and slot.
type ScenarioPerformance struct {
	Group  string `yaml:"group" validate:"required"`
	Points []int  `yaml:"points" validate:"required,dive,min=0,max=100"`
}

// ScenarioReport is the outcome of running a scenario.
type ScenarioReport struct {
	// Hash fingerprints the normalized scenario. With a seeded draw the
	// same hash always yields the same report.
	Hash     string          `json:"hash"`
	Contest  domain.Contest  `json:"contest"`
	Sessions []SessionReport `json:"sessions"`
	Awards   []AwardReport   `json:"awards"`
	// Flagged counts the scores the outlier review flagged.
	Flagged int `json:"flagged"`
}

// SessionReport holds the results of one round.
type SessionReport struct {
	Session domain.Session `json:"session"`
	Results []Result       `json:"results"`
}

// AwardReport holds the final standings of one award.
type AwardReport struct {
	Award     domain.Award `json:"award"`
	Standings []Standing   `json:"standings"`
}

// LoadScenarioFile reads and validates a scenario file.
// It returns an error if reading, parsing or validation fails.
func LoadScenarioFile(path string) (*Scenario, error) {
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseScenario(data)
}

// LoadScenario reads and validates a scenario from r.
func LoadScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario strictly and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := decodeStrict(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &sc, nil
}

// Validate performs struct validation followed by the rules that span
// fields: unique group names, known groups in every round and a points list
// of the right length for the panel.
func (sc *Scenario) Validate() error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(sc); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := sc.validateSemantics(); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

func (sc *Scenario) validateSemantics() error {
	if len(sc.Rounds) > sc.Contest.Rounds {
		return fmt.Errorf("%d rounds listed for a %d-round contest", len(sc.Rounds), sc.Contest.Rounds)
	}
	for _, a := range sc.Awards {
		if a.Rounds > len(sc.Rounds) {
			return fmt.Errorf("award %s %s counts %d rounds but %d are scored",
				a.Level, a.Kind, a.Rounds, len(sc.Rounds))
		}
	}

	groups := make(map[string]bool, len(sc.Contestants))
	for _, c := range sc.Contestants {
		if _, dup := groups[c.Group]; dup {
			return fmt.Errorf("duplicate group %q", c.Group)
		}
		groups[c.Group] = !c.Declined
	}

	want := sc.pointsPerPerformance()
	for i, r := range sc.Rounds {
		seen := make(map[string]struct{}, len(r.Performances))
		for _, p := range r.Performances {
			competing, ok := groups[p.Group]
			if !ok {
				return fmt.Errorf("round %d: unknown group %q", i+1, p.Group)
			}
			if !competing {
				return fmt.Errorf("round %d: group %q declined", i+1, p.Group)
			}
			if _, dup := seen[p.Group]; dup {
				return fmt.Errorf("round %d: group %q performs twice", i+1, p.Group)
			}
			seen[p.Group] = struct{}{}
			if len(p.Points) != want {
				return fmt.Errorf("round %d: group %q has %d points, want %d", i+1, p.Group, len(p.Points), want)
			}
		}
	}
	if len(sc.Rounds[0].Performances) != countCompeting(sc.Contestants) {
		return fmt.Errorf("round 1 must score every competing group")
	}
	return nil
}

func countCompeting(cs []ScenarioContestant) int {
	n := 0
	for _, c := range cs {
		if !c.Declined {
			n++
		}
	}
	return n
}

// pointsPerPerformance is the number of scores a performance collects.
func (sc *Scenario) pointsPerPerformance() int {
	scoring := 0
	for _, j := range sc.panel() {
		if j.Category != "admin" {
			scoring++
		}
	}
	return scoring * domain.SongsPerPerformance
}

// panel returns the judges to seat, filling in the default panel.
func (sc *Scenario) panel() []ScenarioJudge {
	if len(sc.Judges) > 0 {
		return sc.Judges
	}
	judges := []ScenarioJudge{{Name: "Administrator", Category: "admin", Kind: "official", Slot: 1}}
	for _, cat := range domain.ScoringCategories {
		for slot := 1; slot <= sc.Contest.Size; slot++ {
			judges = append(judges, ScenarioJudge{Category: cat.String(), Kind: "official", Slot: slot})
		}
	}
	return judges
}

// Hash computes the SHA256 hash of the normalized scenario, so that
// semantically identical files hash the same regardless of whitespace or
// key ordering.
func (sc *Scenario) Hash() (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2) // Use consistent 2-space indentation.
	if err := encoder.Encode(sc); err != nil {
		return "", fmt.Errorf("failed to encode scenario for hashing: %w", err)
	}
	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

// scenarioRun carries the IDs created while a scenario runs.
type scenarioRun struct {
	e           *Engine
	sc          *Scenario
	contest     domain.Contest
	awards      []domain.Award
	contestants map[string]domain.Contestant // by group name
	flagged     int
}

// RunScenario drives a contest described by sc from creation to final
// standings. Every step goes through the same operations a live contest
// uses, so the run fails on the first rejected transition.
func (e *Engine) RunScenario(ctx context.Context, sc *Scenario) (*ScenarioReport, error) {
	hash, err := sc.Hash()
	if err != nil {
		return nil, err
	}
	run := &scenarioRun{e: e, sc: sc, contestants: make(map[string]domain.Contestant)}
	e.logger.InfoContext(ctx, "running scenario", "hash", hash, "contestants", len(sc.Contestants))

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"setup", run.setup},
		{"invite", run.invite},
		{"build", run.build},
		{"start", run.start},
		{"rounds", run.rounds},
		{"close", run.close},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", step.name, err)
		}
	}
	return run.report(ctx, hash)
}

func (r *scenarioRun) setup(ctx context.Context) error {
	e, sc := r.e, r.sc
	conv, err := e.AddConvention(ctx, sc.Convention)
	if err != nil {
		return err
	}
	r.contest, err = e.AddContest(ctx, ContestRequest{
		ConventionID: conv.ID,
		Kind:         sc.Contest.Kind,
		Size:         sc.Contest.Size,
		Rounds:       sc.Contest.Rounds,
	})
	if err != nil {
		return err
	}
	for _, j := range sc.panel() {
		req := JudgeRequest{ContestID: r.contest.ID, Category: j.Category, Kind: j.Kind, Slot: j.Slot}
		if req.Kind == "" {
			req.Kind = "official"
		}
		if j.Name != "" {
			p, err := e.AddPerson(ctx, PersonRequest{Name: j.Name})
			if err != nil {
				return err
			}
			req.PersonID = p.ID
		}
		if _, err := e.AddJudge(ctx, req); err != nil {
			return err
		}
	}
	for _, a := range sc.Awards {
		award, err := e.AddAward(ctx, AwardRequest{
			ContestID: r.contest.ID,
			Kind:      a.Kind,
			Level:     a.Level,
			Goal:      a.Goal,
			QualScore: a.QualScore,
			Rounds:    a.Rounds,
		})
		if err != nil {
			return err
		}
		r.awards = append(r.awards, award)
	}
	return nil
}

func (r *scenarioRun) invite(ctx context.Context) error {
	e := r.e
	for _, c := range r.sc.Contestants {
		kind := c.Kind
		if kind == "" {
			kind = domain.GroupQuartet.String()
			if r.sc.Contest.Kind == domain.ContestChorus.String() {
				kind = domain.GroupChorus.String()
			}
		}
		g, err := e.AddGroup(ctx, GroupRequest{Name: c.Group, Kind: kind})
		if err != nil {
			return err
		}
		ct, err := e.AddContestant(ctx, ContestantRequest{ContestID: r.contest.ID, GroupID: g.ID, Prelim: c.Prelim})
		if err != nil {
			return err
		}
		if _, err := e.QualifyContestant(ctx, ct.ID); err != nil {
			return err
		}
		accept := e.AcceptContestant
		if c.Declined {
			accept = e.DeclineContestant
		}
		if _, err := accept(ctx, ct.ID); err != nil {
			return err
		}
		r.contestants[c.Group] = ct
	}
	return nil
}

func (r *scenarioRun) build(ctx context.Context) error {
	if _, err := r.e.BuildContest(ctx, r.contest.ID); err != nil {
		return err
	}
	if _, err := r.e.SeedContestants(ctx, r.contest.ID); err != nil {
		return err
	}
	for _, a := range r.awards {
		if _, err := r.e.BuildAward(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *scenarioRun) start(ctx context.Context) error {
	if _, err := r.e.StartContest(ctx, r.contest.ID); err != nil {
		return err
	}
	for _, a := range r.awards {
		if _, err := r.e.StartAward(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *scenarioRun) rounds(ctx context.Context) error {
	for i, round := range r.sc.Rounds {
		if err := r.round(ctx, i+1, round); err != nil {
			return fmt.Errorf("round %d: %w", i+1, err)
		}
	}
	return nil
}

// round scores one session. Round one was drawn when the contest started;
// later rounds are programmed here in listed order.
func (r *scenarioRun) round(ctx context.Context, num int, round ScenarioRound) error {
	e := r.e
	var session domain.Session
	if err := e.View(ctx, func(s *domain.Snapshot) error {
		var ok bool
		session, ok = s.SessionByNum(r.contest.ID, num)
		if !ok {
			return fmt.Errorf("session %d: %w", num, domain.ErrNotFound)
		}
		return nil
	}); err != nil {
		return err
	}
	if num > 1 {
		for _, p := range round.Performances {
			if _, err := e.AddPerformance(ctx, PerformanceRequest{
				SessionID:    session.ID,
				ContestantID: r.contestants[p.Group].ID,
			}); err != nil {
				return err
			}
		}
	}
	if _, err := e.StartSession(ctx, session.ID); err != nil {
		return err
	}

	points := make(map[string][]int, len(round.Performances))
	for _, p := range round.Performances {
		points[r.contestants[p.Group].ID] = p.Points
	}

	var program []domain.Performance
	if err := e.View(ctx, func(s *domain.Snapshot) error {
		program = s.PerformancesOf(session.ID)
		return nil
	}); err != nil {
		return err
	}
	for _, p := range program {
		if err := r.perform(ctx, p, points[p.ContestantID]); err != nil {
			return err
		}
	}
	_, err := e.FinishSession(ctx, session.ID)
	return err
}

// perform runs one performance from start to confirmation.
func (r *scenarioRun) perform(ctx context.Context, p domain.Performance, points []int) error {
	e := r.e
	if _, err := e.StartPerformance(ctx, p.ID); err != nil {
		return err
	}
	var scores []domain.Score
	if err := e.View(ctx, func(s *domain.Snapshot) error {
		scores = s.ScoresOfPerformance(p.ID)
		return nil
	}); err != nil {
		return err
	}
	if len(scores) != len(points) {
		return fmt.Errorf("performance %s: %d scores, %d points", p.ID, len(scores), len(points))
	}
	for i, sc := range scores {
		if _, err := e.EnterScore(ctx, sc.ID, points[i]); err != nil {
			return err
		}
	}
	res, err := e.FinishPerformance(ctx, p.ID)
	if err != nil {
		return err
	}

	var flagged []string
	res.Walk(func(t domain.TransitionResult) {
		if t.Entity == domain.EntityScore && t.Transition == domain.TransitionFlag {
			flagged = append(flagged, t.ID)
		}
	})
	r.flagged += len(flagged)
	if len(flagged) > 0 && !r.sc.Review {
		return nil
	}
	for _, id := range flagged {
		if _, err := e.ValidateScore(ctx, id); err != nil {
			return err
		}
	}
	_, err = e.ConfirmPerformance(ctx, p.ID)
	return err
}

// close finishes the awards and finalizes everything that can be.
func (r *scenarioRun) close(ctx context.Context) error {
	e := r.e
	for _, a := range r.awards {
		if _, err := e.FinishAward(ctx, a.ID); err != nil {
			return err
		}
		if _, err := e.FinalizeAward(ctx, a.ID); err != nil {
			return err
		}
	}
	if _, err := e.FinalizeContest(ctx, r.contest.ID); err != nil {
		return err
	}
	for _, c := range r.sc.Contestants {
		if c.Declined {
			continue
		}
		id := r.contestants[c.Group].ID
		if _, err := e.FinishContestant(ctx, id); err != nil {
			return err
		}
		if _, err := e.FinalizeContestant(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *scenarioRun) report(ctx context.Context, hash string) (*ScenarioReport, error) {
	e := r.e
	rep := &ScenarioReport{Hash: hash, Flagged: r.flagged}
	var sessions []domain.Session
	if err := e.View(ctx, func(s *domain.Snapshot) error {
		var err error
		rep.Contest, err = s.Contest(r.contest.ID)
		if err != nil {
			return err
		}
		sessions = s.SessionsOf(r.contest.ID)
		for _, a := range r.awards {
			award, err := s.Award(a.ID)
			if err != nil {
				return err
			}
			rep.Awards = append(rep.Awards, AwardReport{Award: award})
		}
		return nil
	}); err != nil {
		return nil, err
	}
	for _, ss := range sessions {
		results, err := e.SessionResults(ctx, ss.ID)
		if err != nil {
			return nil, err
		}
		rep.Sessions = append(rep.Sessions, SessionReport{Session: ss, Results: results})
	}
	for i := range rep.Awards {
		standings, err := e.Standings(ctx, rep.Awards[i].Award.ID)
		if err != nil {
			return nil, err
		}
		rep.Awards[i].Standings = standings
	}
	return rep, nil
}
