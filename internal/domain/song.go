package domain

var songMachine = NewMachine(EntitySong,
	Transition[SongStatus]{
		Name:    TransitionConfirm,
		Sources: []SongStatus{SongNew},
		Target:  SongConfirmed,
		Conditions: []Condition{{
			Name:   "song_entered",
			Reason: "not every expected score has been entered",
			Check:  SongEntered,
		}},
	},
	Transition[SongStatus]{
		Name:    TransitionFinalize,
		Sources: []SongStatus{SongConfirmed},
		Target:  SongFinal,
	},
)

// SongMachine returns the transition table for songs.
func SongMachine() *Machine[SongStatus] { return songMachine }

func fireSong(s *Snapshot, id, name string) (TransitionResult, error) {
	song, err := s.Song(id)
	if err != nil {
		return TransitionResult{}, err
	}
	target, res, err := fire(songMachine, s, id, name, song.Status)
	if err != nil {
		return TransitionResult{}, err
	}
	song.Status = target
	s.PutSong(song)
	return res, nil
}

// ConfirmSong confirms a fully entered song.
func ConfirmSong(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireSong(s, id, TransitionConfirm)
}

// FinalizeSong finalizes a confirmed song.
func FinalizeSong(s *Snapshot, _ Env, id string) (TransitionResult, error) {
	return fireSong(s, id, TransitionFinalize)
}
