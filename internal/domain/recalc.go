package domain

// The Recalculate functions install freshly derived tallies. Each one reads
// only its children, so calling it twice on an unchanged snapshot writes the
// same values twice.

// RecalculateSong derives a song's tally from its scores.
func RecalculateSong(s *Snapshot, songID string) error {
	song, err := s.Song(songID)
	if err != nil {
		return err
	}
	contest, err := s.ContestOfPerformance(song.PerformanceID)
	if err != nil {
		return err
	}
	song.Tally = SongTally(s.ScoresOf(songID), contest.Size)
	s.PutSong(song)
	return nil
}

// RecalculatePerformance derives the tallies of a performance's songs and
// then of the performance itself.
func RecalculatePerformance(s *Snapshot, performanceID string) error {
	perf, err := s.Performance(performanceID)
	if err != nil {
		return err
	}
	contest, err := s.ContestOfPerformance(performanceID)
	if err != nil {
		return err
	}
	for _, song := range s.SongsOf(performanceID) {
		if err := RecalculateSong(s, song.ID); err != nil {
			return err
		}
	}
	perf.Tally = PerformanceTally(s.SongsOf(performanceID), contest.Size)
	s.PutPerformance(perf)
	return nil
}

// RecalculateContestant derives a contestant's tally from all of its
// performances. Performance tallies are taken as stored.
func RecalculateContestant(s *Snapshot, contestantID string) error {
	c, err := s.Contestant(contestantID)
	if err != nil {
		return err
	}
	contest, err := s.Contest(c.ContestID)
	if err != nil {
		return err
	}
	c.Tally = ContestantTally(s.PerformancesOfContestant(contestantID), contest.Size)
	s.PutContestant(c)
	return nil
}

// competitorTally derives a competitor's tally without writing it, so that
// callers may compute many in parallel over a shared snapshot.
func competitorTally(s *Snapshot, comp Competitor, award Award, size int) Tally {
	return CompetitorTally(s.PerformancesOfContestant(comp.ContestantID), s.Sessions, award, size)
}

// RecalculateContest recalculates every song, performance and contestant of
// a contest, bottom up.
func RecalculateContest(s *Snapshot, contestID string) error {
	for _, sess := range s.SessionsOf(contestID) {
		for _, perf := range s.PerformancesOf(sess.ID) {
			if err := RecalculatePerformance(s, perf.ID); err != nil {
				return err
			}
		}
	}
	for _, c := range s.ContestantsOf(contestID) {
		if err := RecalculateContestant(s, c.ID); err != nil {
			return err
		}
	}
	return nil
}
