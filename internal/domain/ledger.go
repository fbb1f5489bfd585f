package domain

// Point range accepted for a single score.
const (
	MinPoints = 0
	MaxPoints = 100
)

// CheckPoints rejects points outside [MinPoints, MaxPoints] with a
// field-level *ValidationError.
func CheckPoints(points int) error {
	if points >= MinPoints && points <= MaxPoints {
		return nil
	}
	verr := NewValidationError(EntityScore)
	verr.AddFieldError("points", "must be between 0 - 100")
	return verr
}

// ScoreEntered reports whether the score exists and has points recorded.
func ScoreEntered(s *Snapshot, scoreID string) bool {
	sc, ok := s.Scores[scoreID]
	return ok && sc.Entered()
}

// SongEntered reports whether a song carries one score per scoring judge of
// its contest and every one of them has been entered.
func SongEntered(s *Snapshot, songID string) bool {
	song, ok := s.Songs[songID]
	if !ok {
		return false
	}
	contest, err := s.ContestOfPerformance(song.PerformanceID)
	if err != nil {
		return false
	}
	scores := s.ScoresOf(songID)
	if len(scores) != len(s.ScoringJudges(contest.ID)) {
		return false
	}
	return allEntered(scores)
}

// ScoresEntered reports whether every score under a performance has points.
// A performance without scores is not considered entered.
func ScoresEntered(s *Snapshot, performanceID string) bool {
	var scores []Score
	for _, song := range s.SongsOf(performanceID) {
		scores = append(scores, s.ScoresOf(song.ID)...)
	}
	return len(scores) > 0 && allEntered(scores)
}

// SongsEntered reports whether a performance has both of its songs and each
// of them is fully entered.
func SongsEntered(s *Snapshot, performanceID string) bool {
	songs := s.SongsOf(performanceID)
	if len(songs) != SongsPerPerformance {
		return false
	}
	for _, song := range songs {
		if !SongEntered(s, song.ID) {
			return false
		}
	}
	return true
}

// ScoresValidated reports whether every score in scope has passed outlier
// review. The scope is a performance or a session, selected by which map
// holds id.
func ScoresValidated(s *Snapshot, id string) bool {
	var perfs []Performance
	if p, ok := s.Performances[id]; ok {
		perfs = []Performance{p}
	} else {
		perfs = s.PerformancesOf(id)
	}
	for _, p := range perfs {
		for _, song := range s.SongsOf(p.ID) {
			for _, sc := range s.ScoresOf(song.ID) {
				if sc.Status < ScoreValidated {
					return false
				}
			}
		}
	}
	return true
}

func allEntered(scores []Score) bool {
	for _, sc := range scores {
		if !sc.Entered() {
			return false
		}
	}
	return true
}
