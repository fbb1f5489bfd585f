package application

import (
	"context"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// Standing is one row of an award leaderboard.
type Standing struct {
	Place        *int   `json:"place,omitempty"`
	CompetitorID string `json:"competitor_id"`
	ContestantID string `json:"contestant_id"`
	Group        string `json:"group"`
	domain.Tally
}

// Result is one row of a session's results, in order of finish.
type Result struct {
	Place         *int   `json:"place,omitempty"`
	PerformanceID string `json:"performance_id"`
	Draw          string `json:"draw"`
	Group         string `json:"group"`
	Status        string `json:"status"`
	domain.Tally
}

// ScoreLine is one judge's entry on a scoresheet.
type ScoreLine struct {
	ScoreID  string `json:"score_id"`
	Judge    string `json:"judge"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Points   *int   `json:"points,omitempty"`
	Status   string `json:"status"`
}

// SongSheet is the scores of one song.
type SongSheet struct {
	Order  int         `json:"order"`
	Title  string      `json:"title,omitempty"`
	Scores []ScoreLine `json:"scores"`
	domain.Tally
}

// Scoresheet is the full breakdown of one performance.
type Scoresheet struct {
	PerformanceID string      `json:"performance_id"`
	Name          string      `json:"name"`
	Status        string      `json:"status"`
	Songs         []SongSheet `json:"songs"`
	domain.Tally
}

// Standings ranks the competitors of an award by their stored totals.
// Concurrent calls for the same award share one read of the store. The
// shared read ignores the cancellation of whichever caller started it; each
// caller still stops waiting when its own ctx is done.
func (e *Engine) Standings(ctx context.Context, awardID string) ([]Standing, error) {
	shared := context.WithoutCancel(ctx)
	ch := e.queries.DoChan("standings/"+awardID, func() (any, error) {
		var out []Standing
		err := e.store.View(shared, func(s *domain.Snapshot) error {
			if _, err := s.Award(awardID); err != nil {
				return err
			}
			placements := domain.Rank(s.CompetitorsOf(awardID),
				func(c domain.Competitor) *int { return c.TotalPoints },
				func(c domain.Competitor) string { return c.ID })
			out = make([]Standing, 0, len(placements))
			for _, pl := range placements {
				out = append(out, Standing{
					Place:        pl.Place,
					CompetitorID: pl.Item.ID,
					ContestantID: pl.Item.ContestantID,
					Group:        groupName(s, pl.Item.ContestantID),
					Tally:        pl.Item.Tally,
				})
			}
			return nil
		})
		return out, err
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	// Results are shared between callers of DoChan.
	return slices.Clone(res.Val.([]Standing)), nil
}

// SessionResults ranks the performances of a session by their current
// totals. Unlike the places written when the session finishes, these
// reflect scores as they are entered.
func (e *Engine) SessionResults(ctx context.Context, sessionID string) ([]Result, error) {
	var out []Result
	err := e.store.View(ctx, func(s *domain.Snapshot) error {
		if _, err := s.Session(sessionID); err != nil {
			return err
		}
		placements := domain.Rank(s.PerformancesOf(sessionID),
			func(p domain.Performance) *int { return p.TotalPoints },
			func(p domain.Performance) string { return p.ID })
		for _, pl := range placements {
			p := pl.Item
			out = append(out, Result{
				Place:         pl.Place,
				PerformanceID: p.ID,
				Draw:          p.Draw(),
				Group:         groupName(s, p.ContestantID),
				Status:        p.Status.String(),
				Tally:         p.Tally,
			})
		}
		return nil
	})
	return out, err
}

// Scoresheet returns every score of a performance grouped by song.
func (e *Engine) Scoresheet(ctx context.Context, performanceID string) (Scoresheet, error) {
	var sheet Scoresheet
	err := e.store.View(ctx, func(s *domain.Snapshot) error {
		p, err := s.Performance(performanceID)
		if err != nil {
			return err
		}
		sheet = Scoresheet{
			PerformanceID: p.ID,
			Name:          p.Name,
			Status:        p.Status.String(),
			Tally:         p.Tally,
		}
		for _, song := range s.SongsOf(p.ID) {
			ss := SongSheet{Order: song.Order, Title: song.Title, Tally: song.Tally}
			for _, sc := range s.ScoresOf(song.ID) {
				ss.Scores = append(ss.Scores, ScoreLine{
					ScoreID:  sc.ID,
					Judge:    s.Judges[sc.JudgeID].Designation(),
					Category: sc.Category.String(),
					Kind:     sc.Kind.String(),
					Points:   sc.Points,
					Status:   sc.Status.String(),
				})
			}
			sheet.Songs = append(sheet.Songs, ss)
		}
		return nil
	})
	return sheet, err
}

func groupName(s *domain.Snapshot, contestantID string) string {
	return s.Groups[s.Contestants[contestantID].GroupID].Name
}
