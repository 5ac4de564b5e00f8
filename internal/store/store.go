// Package store keeps finished sessions in a CSV score table and serves
// per-player high scores from it.
package store

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/tomz197/kitebattle/internal/engine"
)

// Entry is one row of the score table.
type Entry struct {
	Player     string    `csv:"player"`
	Score      int       `csv:"score"`
	Cuts       int       `csv:"cuts"`
	BestCombo  int       `csv:"best_combo"`
	RecordedAt Timestamp `csv:"recorded_at"`
}

// Timestamp is a time stored as RFC 3339 text in the score table.
type Timestamp struct {
	time.Time
}

// MarshalCSV converts the timestamp to its CSV form.
func (t *Timestamp) MarshalCSV() (string, error) {
	return t.Time.Format(time.RFC3339), nil
}

// UnmarshalCSV parses the CSV form.
func (t *Timestamp) UnmarshalCSV(csv string) (err error) {
	t.Time, err = time.Parse(time.RFC3339, csv)
	return err
}

// Board is an append-only score table backed by a CSV file. It is safe for
// concurrent use; SSH sessions share one Board.
type Board struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open returns a Board for the CSV file at path, creating its directory.
// The file itself is created by the first Record.
func Open(path string) (*Board, error) {
	if path == "" {
		return nil, errors.New("score table path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating score directory: %w", err)
	}
	return &Board{path: path, now: time.Now}, nil
}

// Path returns the CSV file path.
func (b *Board) Path() string {
	return b.path
}

// Record appends an entry. The header is written only when the file is new or empty.
func (b *Board) Record(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.RecordedAt.IsZero() {
		e.RecordedAt = Timestamp{b.now()}
	}
	e.RecordedAt = Timestamp{e.RecordedAt.UTC().Truncate(time.Second)}

	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening score table: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading score table: %w", err)
	}

	records := []Entry{e}
	if info.Size() == 0 {
		// First write includes headers
		err = gocsv.Marshal(records, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, f)
	}
	if err != nil {
		return fmt.Errorf("writing score: %w", err)
	}
	return nil
}

// Entries returns every recorded row in file order. A missing file is an empty table.
func (b *Board) Entries() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries()
}

func (b *Board) entries() ([]Entry, error) {
	f, err := os.Open(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening score table: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing score table: %w", err)
	}
	return entries, nil
}

// HighScore returns the best score recorded for player, 0 if there is none.
func (b *Board) HighScore(player string) (int, error) {
	entries, err := b.Entries()
	if err != nil {
		return 0, err
	}
	best := 0
	for _, e := range entries {
		if e.Player == player && e.Score > best {
			best = e.Score
		}
	}
	return best, nil
}

// Top returns the best entry of each player, highest score first, at most n
// entries. Ties go to the earlier record.
func (b *Board) Top(n int) ([]Entry, error) {
	entries, err := b.Entries()
	if err != nil {
		return nil, err
	}

	best := make(map[string]Entry)
	for _, e := range entries {
		if cur, ok := best[e.Player]; !ok || e.Score > cur.Score {
			best[e.Player] = e
		}
	}

	top := make([]Entry, 0, len(best))
	for _, e := range best {
		top = append(top, e)
	}
	slices.SortFunc(top, func(x, y Entry) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		if c := x.RecordedAt.Compare(y.RecordedAt.Time); c != 0 {
			return c
		}
		return cmp.Compare(x.Player, y.Player)
	})

	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top, nil
}

// ForPlayer returns the engine-facing high score store of one player.
func (b *Board) ForPlayer(name string) *PlayerScores {
	return &PlayerScores{board: b, player: name}
}

// PlayerScores is one player's view of a Board. It records every finished
// session and reports the player's best score.
type PlayerScores struct {
	board  *Board
	player string
}

var (
	_ engine.HighScoreStore  = (*PlayerScores)(nil)
	_ engine.SessionRecorder = (*PlayerScores)(nil)
)

// Player returns the player name.
func (p *PlayerScores) Player() string {
	return p.player
}

// HighScore returns the player's best recorded score.
func (p *PlayerScores) HighScore() (int, error) {
	return p.board.HighScore(p.player)
}

// RecordSession appends a row for a finished session.
func (p *PlayerScores) RecordSession(s engine.Stats) error {
	return p.board.Record(Entry{
		Player:    p.player,
		Score:     s.Score,
		Cuts:      s.Cuts,
		BestCombo: s.BestCombo,
	})
}

// SaveHighScore makes sure the table holds score as the player's best. It
// writes nothing when a row at least as good already exists, which is the case
// after RecordSession of the same session.
func (p *PlayerScores) SaveHighScore(score int) error {
	best, err := p.HighScore()
	if err != nil {
		return err
	}
	if score <= best {
		return nil
	}
	return p.board.Record(Entry{Player: p.player, Score: score})
}
