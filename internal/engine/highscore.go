package engine

// HighScoreStore persists the best score across sessions.
type HighScoreStore interface {
	// HighScore returns the stored best score, 0 when nothing is stored.
	HighScore() (int, error)
	// SaveHighScore stores score as the new best.
	SaveHighScore(score int) error
}

// SessionRecorder is optionally implemented by a HighScoreStore that keeps a
// record of every finished session, not only the best one.
type SessionRecorder interface {
	RecordSession(stats Stats) error
}

// memoryStore keeps the high score for the lifetime of the process.
type memoryStore struct {
	best int
}

func (m *memoryStore) HighScore() (int, error) {
	return m.best, nil
}

func (m *memoryStore) SaveHighScore(score int) error {
	m.best = score
	return nil
}
