package domain

import "math"

// Tally is the denormalized block of points and percentile scores carried by
// songs, performances, contestants and competitors. Every field is derived
// from child entities and nil means "not yet determinable".
//
// Pointer fields are never written through; a recalculation always installs
// fresh values, which keeps shallow copies of a Tally safe to share.
type Tally struct {
	MusPoints   *int `json:"mus_points,omitempty"`
	PrsPoints   *int `json:"prs_points,omitempty"`
	SngPoints   *int `json:"sng_points,omitempty"`
	TotalPoints *int `json:"total_points,omitempty"`

	MusScore   *float64 `json:"mus_score,omitempty"`
	PrsScore   *float64 `json:"prs_score,omitempty"`
	SngScore   *float64 `json:"sng_score,omitempty"`
	TotalScore *float64 `json:"total_score,omitempty"`
}

// Points returns the points recorded for a scoring category.
func (t Tally) Points(c Category) *int {
	switch c {
	case CategoryMusic:
		return t.MusPoints
	case CategoryPresentation:
		return t.PrsPoints
	case CategorySinging:
		return t.SngPoints
	default:
		return nil
	}
}

// IsZero reports whether no field of the tally has been determined.
func (t Tally) IsZero() bool { return t == Tally{} }

// SongTally sums the non-practice scores of a song by category. The percentile
// denominator is the panel size, since each category is scored by size judges.
func SongTally(scores []Score, size int) Tally {
	if len(scores) == 0 {
		return Tally{}
	}
	byCategory := make(map[Category][]*int, len(ScoringCategories))
	for _, s := range scores {
		if s.Kind == PanelPractice {
			continue
		}
		byCategory[s.Category] = append(byCategory[s.Category], s.Points)
	}
	return newTally(
		sumPoints(byCategory[CategoryMusic]),
		sumPoints(byCategory[CategoryPresentation]),
		sumPoints(byCategory[CategorySinging]),
		size,
	)
}

// PerformanceTally sums the tallies of a performance's songs.
func PerformanceTally(songs []Song, size int) Tally {
	if len(songs) == 0 {
		return Tally{}
	}
	tallies := make([]Tally, len(songs))
	for i, s := range songs {
		tallies[i] = s.Tally
	}
	return rollUp(tallies, size*SongsPerPerformance)
}

// ContestantTally sums every performance of a contestant.
func ContestantTally(performances []Performance, size int) Tally {
	if len(performances) == 0 {
		return Tally{}
	}
	return rollUp(performanceTallies(performances), size*SongsPerPerformance*len(performances))
}

// CompetitorTally sums the performances of a contestant that count toward an
// award: those in sessions of the award's contest whose round is within the
// award's rounds. sessions must contain every session referenced by
// performances.
func CompetitorTally(performances []Performance, sessions map[string]Session, award Award, size int) Tally {
	counted := make([]Performance, 0, len(performances))
	for _, p := range performances {
		sess, ok := sessions[p.SessionID]
		if !ok || sess.ContestID != award.ContestID || sess.Num > award.Rounds {
			continue
		}
		counted = append(counted, p)
	}
	return ContestantTally(counted, size)
}

func performanceTallies(performances []Performance) []Tally {
	out := make([]Tally, len(performances))
	for i, p := range performances {
		out[i] = p.Tally
	}
	return out
}

func rollUp(children []Tally, possible int) Tally {
	mus := make([]*int, len(children))
	prs := make([]*int, len(children))
	sng := make([]*int, len(children))
	for i, c := range children {
		mus[i], prs[i], sng[i] = c.MusPoints, c.PrsPoints, c.SngPoints
	}
	return newTally(sumPoints(mus), sumPoints(prs), sumPoints(sng), possible)
}

func newTally(mus, prs, sng *int, possible int) Tally {
	t := Tally{MusPoints: mus, PrsPoints: prs, SngPoints: sng}
	if mus != nil && prs != nil && sng != nil {
		total := *mus + *prs + *sng
		t.TotalPoints = &total
	}
	t.MusScore = percentile(mus, possible)
	t.PrsScore = percentile(prs, possible)
	t.SngScore = percentile(sng, possible)
	t.TotalScore = percentile(t.TotalPoints, possible*len(ScoringCategories))
	return t
}

// sumPoints adds values the way SQL SUM does: nil entries are skipped and the
// result is nil when no entry has a value.
func sumPoints(values []*int) *int {
	var (
		sum  int
		seen bool
	)
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		seen = true
	}
	if !seen {
		return nil
	}
	return &sum
}

// percentile returns points/possible rounded half away from zero to one
// decimal place, or nil when either side is undefined.
func percentile(points *int, possible int) *float64 {
	if points == nil || possible <= 0 {
		return nil
	}
	v := math.Round(float64(*points)/float64(possible)*10) / 10
	return &v
}
