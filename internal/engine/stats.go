package engine

import "time"

// Stats summarizes the current or last finished session.
type Stats struct {
	Score        int
	Cuts         int           // AI kites cut by the player
	AICollisions int           // AI kites cut by other AI kites
	BestCombo    int
	PlayTime     time.Duration // Simulated time spent in the playing phase
	Difficulty   float64
	NewRecord    bool // Set at game over when the score beat the previous best
}

// keyvals returns the stats as structured log fields.
func (s Stats) keyvals() []any {
	return []any{
		"score", s.Score,
		"cuts", s.Cuts,
		"ai_collisions", s.AICollisions,
		"best_combo", s.BestCombo,
		"play_time", s.PlayTime.Round(time.Millisecond),
		"difficulty", s.Difficulty,
		"new_record", s.NewRecord,
	}
}
