package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/kitebattle/internal/engine"
)

func openTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "scores", "scores.csv"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	b.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return b
}

func TestMissingFileIsEmpty(t *testing.T) {
	b := openTestBoard(t)

	high, err := b.HighScore("alice")
	if err != nil || high != 0 {
		t.Errorf("HighScore = %d, %v; want 0, nil", high, err)
	}
	top, err := b.Top(5)
	if err != nil || len(top) != 0 {
		t.Errorf("Top = %v, %v; want empty", top, err)
	}
}

func TestEmptyFileIsEmpty(t *testing.T) {
	b := openTestBoard(t)
	if err := os.WriteFile(b.Path(), nil, 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := b.Entries()
	if err != nil || len(entries) != 0 {
		t.Errorf("Entries = %v, %v; want empty", entries, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open accepted an empty path")
	}
}

func TestRecordWritesHeaderOnce(t *testing.T) {
	b := openTestBoard(t)

	for _, e := range []Entry{
		{Player: "alice", Score: 300, Cuts: 3, BestCombo: 2},
		{Player: "bob", Score: 150, Cuts: 1, BestCombo: 1},
		{Player: "alice", Score: 900, Cuts: 7, BestCombo: 4},
	} {
		if err := b.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	data, err := os.ReadFile(b.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("file has %d lines, want header + 3:\n%s", len(lines), data)
	}
	if lines[0] != "player,score,cuts,best_combo,recorded_at" {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "player,score") != 1 {
		t.Errorf("header written more than once:\n%s", data)
	}

	entries, err := b.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[2].Player != "alice" || entries[2].Score != 900 || entries[2].BestCombo != 4 {
		t.Errorf("entries = %+v", entries)
	}
	if want := time.Date(2024, 3, 1, 12, 3, 0, 0, time.UTC); !entries[2].RecordedAt.Equal(want) {
		t.Errorf("recorded_at = %v, want %v", entries[2].RecordedAt, want)
	}
}

func TestHighScoreAndTop(t *testing.T) {
	b := openTestBoard(t)
	for _, e := range []Entry{
		{Player: "alice", Score: 300},
		{Player: "bob", Score: 450},
		{Player: "alice", Score: 900},
		{Player: "carol", Score: 450},
		{Player: "bob", Score: 100},
	} {
		if err := b.Record(e); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		player string
		want   int
	}{
		{"alice", 900},
		{"bob", 450},
		{"carol", 450},
		{"dave", 0},
	}
	for _, tt := range tests {
		t.Run(tt.player, func(t *testing.T) {
			got, err := b.HighScore(tt.player)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("HighScore(%q) = %d, want %d", tt.player, got, tt.want)
			}
		})
	}

	top, err := b.Top(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Player != "alice" || top[1].Player != "bob" {
		t.Errorf("Top(2) = %+v, want alice then bob (earlier tie)", top)
	}

	all, err := b.Top(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("Top(10) returned %d players, want 3", len(all))
	}
}

func TestPlayerScoresAsEngineStore(t *testing.T) {
	b := openTestBoard(t)
	var store engine.HighScoreStore = b.ForPlayer("alice")

	if err := b.ForPlayer("alice").RecordSession(engine.Stats{Score: 400, Cuts: 4, BestCombo: 2}); err != nil {
		t.Fatal(err)
	}
	// Same session reported as a record: the row already exists.
	if err := store.SaveHighScore(400); err != nil {
		t.Fatal(err)
	}
	entries, _ := b.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 row per session", len(entries))
	}

	if err := store.SaveHighScore(700); err != nil {
		t.Fatal(err)
	}
	high, err := store.HighScore()
	if err != nil || high != 700 {
		t.Errorf("HighScore = %d, %v; want 700", high, err)
	}

	bob, _ := b.ForPlayer("bob").HighScore()
	if bob != 0 {
		t.Errorf("bob's high score = %d, want 0", bob)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	b := openTestBoard(t)
	if err := os.WriteFile(b.Path(), []byte("player,score\nalice,not-a-number\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := b.HighScore("alice"); err == nil {
		t.Error("corrupt score table read without error")
	}
}

func TestConcurrentRecords(t *testing.T) {
	b := openTestBoard(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := b.Record(Entry{Player: "p", Score: i*10 + j}); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()

	entries, err := b.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 80 {
		t.Errorf("entries = %d, want 80", len(entries))
	}
}

func TestBoardBacksEngineSessions(t *testing.T) {
	b := openTestBoard(t)
	e, err := engine.New(nil, engine.WithHighScoreStore(b.ForPlayer("alice")))
	if err != nil {
		t.Fatal(err)
	}
	if e.HighScore() != 0 {
		t.Errorf("fresh board high score = %d", e.HighScore())
	}

	if err := b.Record(Entry{Player: "alice", Score: 250}); err != nil {
		t.Fatal(err)
	}
	e, err = engine.New(nil, engine.WithHighScoreStore(b.ForPlayer("alice")))
	if err != nil {
		t.Fatal(err)
	}
	if e.HighScore() != 250 {
		t.Errorf("high score = %d, want 250 from the board", e.HighScore())
	}
}
