package models

// BlindLevel is one step of a game's blind structure. Levels are 1-based
// and ordered by LevelNo.
type BlindLevel struct {
	ID         int64 `json:"id"`
	GameID     int64 `json:"game_id"`
	LevelNo    int   `json:"level_no"`
	SmallBlind int64 `json:"small_blind"`
	BigBlind   int64 `json:"big_blind"`
	Ante       int64 `json:"ante"`
	DurationMs int64 `json:"duration_ms"`
	IsBreak    bool  `json:"is_break"`
}

// BlindStructure is an ordered list of levels.
type BlindStructure []*BlindLevel

// Level returns the level with the given number, or nil if the structure
// has no such level.
func (bs BlindStructure) Level(no int) *BlindLevel {
	for _, l := range bs {
		if l.LevelNo == no {
			return l
		}
	}
	return nil
}

// Last returns the highest-numbered level, or nil for an empty structure.
func (bs BlindStructure) Last() *BlindLevel {
	var last *BlindLevel
	for _, l := range bs {
		if last == nil || l.LevelNo > last.LevelNo {
			last = l
		}
	}
	return last
}
