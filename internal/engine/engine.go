// Package engine runs a kite battle session: the phase machine, the wind,
// difficulty and spawn schedulers, collision resolution, scoring with combos,
// and change notifications for the presentation layer.
//
// The engine is single threaded. Exactly one goroutine (the frame driver) may
// call its commands, Tick/Advance and accessors. No command or tick fails;
// commands that make no sense in the current phase are ignored.
package engine

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/draw"
	"github.com/tomz197/kitebattle/internal/object"
	"github.com/tomz197/kitebattle/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Engine owns all simulation state of one session.
type Engine struct {
	cfg        *config.Config
	playerSpec *object.KiteSpec
	aiSpec     *object.KiteSpec

	log   *log.Logger
	rng   *rand.Rand
	now   func() time.Time
	store HighScoreStore

	phase     Phase
	score     int
	highScore int
	lives     int
	combo     int
	// Remaining combo window; only meaningful while combo > 0
	comboTimer time.Duration

	wind            r2.Vec
	difficulty      float64
	windTimer       time.Duration
	difficultyTimer time.Duration
	spawnTimer      time.Duration

	arena     object.Arena
	player    *object.Kite
	ai        []*object.Kite // Insertion order matters for the AI collision tie-break
	particles *object.ParticleSystem
	grid      *physics.SpatialGrid

	intent      r2.Vec    // Player movement intent, length <= 1
	lastAdvance time.Time // Baseline for Advance
	stats       Stats

	subs      []subscription
	nextSubID int
	tornDown  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver subscribes obs from construction on.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		e.Subscribe(obs)
	}
}

// WithHighScoreStore sets the high score persistence. Without it the high
// score lives only as long as the engine.
func WithHighScoreStore(store HighScoreStore) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithRand sets the random source used for spawns, wind, wander and particles.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// WithClock sets the time source used to anchor Advance.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine in the menu phase and reads the stored high score.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	playerSpec, err := object.NewKiteSpec(cfg.Player, cfg.Physics)
	if err != nil {
		return nil, fmt.Errorf("player palette: %w", err)
	}
	aiSpec, err := object.NewKiteSpec(cfg.AI, cfg.Physics)
	if err != nil {
		return nil, fmt.Errorf("ai palette: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		playerSpec: playerSpec,
		aiSpec:     aiSpec,
		log:        log.New(io.Discard),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		store:      &memoryStore{},
		phase:      PhaseMenu,
		lives:      cfg.Game.InitialLives,
		difficulty: 1,
		arena:      object.Arena{Width: cfg.Arena.Width, Height: cfg.Arena.Height},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.particles = object.NewParticleSystem(cfg.Particles, e.rng)
	// AI kites share one size, so a cell of one diameter holds every colliding pair
	// within a 3x3 neighborhood.
	e.grid = physics.NewSpatialGrid(e.arena.Width, e.arena.Height, aiSpec.Size)

	high, err := e.store.HighScore()
	if err != nil {
		e.log.Warn("reading high score failed", "err", err)
		high = 0
	}
	e.highScore = max(high, 0)

	return e, nil
}

// StartGame begins a fresh session from the menu or after a game over. A
// running or paused session is left alone.
func (e *Engine) StartGame() {
	if e.tornDown || (e.phase != PhaseMenu && e.phase != PhaseGameOver) {
		return
	}

	e.score = 0
	e.lives = e.cfg.Game.InitialLives
	e.combo = 0
	e.comboTimer = 0
	e.difficulty = 1
	e.windTimer = 0
	e.difficultyTimer = 0
	e.spawnTimer = 0
	e.intent = r2.Vec{}
	e.stats = Stats{Difficulty: 1}

	cx, cy := e.arena.Center()
	e.player = object.NewKite(cx, cy, object.RolePlayer, e.playerSpec, e.rng)

	e.ai = e.ai[:0]
	for i := 0; i < e.cfg.Game.InitialAIKites; i++ {
		e.spawnAIKite()
	}

	e.particles.Clear()
	e.lastAdvance = e.now()

	e.phase = PhasePlaying
	e.log.Info("game started", "arena_width", e.arena.Width, "arena_height", e.arena.Height, "high_score", e.highScore)

	e.notifyPhase()
	e.notifyScore()
	e.notifyLives()
	e.notifyCombo()
}

// Pause freezes a running session.
func (e *Engine) Pause() {
	if e.tornDown || e.phase != PhasePlaying {
		return
	}
	e.phase = PhasePaused
	e.log.Debug("game paused", "score", e.score)
	e.notifyPhase()
}

// Resume continues a paused session. The Advance baseline is re-anchored so the
// time spent paused is not simulated.
func (e *Engine) Resume() {
	if e.tornDown || e.phase != PhasePaused {
		return
	}
	e.lastAdvance = e.now()
	e.phase = PhasePlaying
	e.log.Debug("game resumed", "score", e.score)
	e.notifyPhase()
}

// QuitToMenu abandons the session and returns to the menu.
func (e *Engine) QuitToMenu() {
	if e.tornDown || e.phase == PhaseMenu {
		return
	}
	e.player = nil
	e.ai = e.ai[:0]
	e.particles.Clear()
	e.intent = r2.Vec{}

	e.phase = PhaseMenu
	e.log.Debug("quit to menu")
	e.notifyPhase()
}

// SetDirectionalInput sets the player's movement intent from held directions.
// Diagonals are normalized to unit length; opposite directions cancel.
func (e *Engine) SetDirectionalInput(up, down, left, right bool) {
	var dir r2.Vec
	if up {
		dir.Y--
	}
	if down {
		dir.Y++
	}
	if left {
		dir.X--
	}
	if right {
		dir.X++
	}
	e.intent = physics.Normalize(dir)
}

// SetMoveIntent sets a continuous movement intent. Vectors longer than 1 are shortened.
func (e *Engine) SetMoveIntent(dx, dy float64) {
	e.intent = physics.LimitLength(r2.Vec{X: dx, Y: dy}, 1)
}

// Resize changes the arena bounds. Non-positive sizes are ignored.
func (e *Engine) Resize(width, height float64) {
	if e.tornDown || width <= 0 || height <= 0 {
		return
	}
	e.arena = object.Arena{Width: width, Height: height}
	e.grid.Resize(width, height)
}

// Teardown stops the engine for good: subscriptions are dropped and every later
// command or tick is ignored.
func (e *Engine) Teardown() {
	if e.tornDown {
		return
	}
	e.tornDown = true
	e.subs = nil
	e.particles.Clear()
	e.log.Debug("engine torn down")
}

// spawnAIKite adds one AI kite near a random edge unless the population cap is
// reached. Cut kites that are still fading count toward the cap.
func (e *Engine) spawnAIKite() bool {
	if len(e.ai) >= e.cfg.Game.MaxAIKites {
		return false
	}
	k := object.NewKiteAtEdge(e.arena, e.cfg.Game.SpawnInset, e.cfg.Game.SpawnEdgeOffset, e.aiSpec, e.rng)
	e.ai = append(e.ai, k)
	return true
}

// gameOver ends the session. It runs once per session: the caller stops the
// tick as soon as the phase leaves playing.
func (e *Engine) gameOver() {
	e.phase = PhaseGameOver
	e.stats.Score = e.score
	e.stats.Difficulty = e.difficulty

	e.stats.NewRecord = e.score > e.highScore

	if rec, ok := e.store.(SessionRecorder); ok {
		if err := rec.RecordSession(e.stats); err != nil {
			e.log.Warn("recording session failed", "err", err)
		}
	}

	if e.stats.NewRecord {
		e.highScore = e.score
		if err := e.store.SaveHighScore(e.score); err != nil {
			e.log.Warn("saving high score failed", "score", e.score, "err", err)
		}
		e.notifyScore()
	}

	e.log.Info("game over", e.stats.keyvals()...)
	e.notifyPhase()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Score returns the session score.
func (e *Engine) Score() int { return e.score }

// HighScore returns the best score known to the engine.
func (e *Engine) HighScore() int { return e.highScore }

// Lives returns the remaining lives.
func (e *Engine) Lives() int { return e.lives }

// Combo returns the current combo count.
func (e *Engine) Combo() int { return e.combo }

// ComboRemaining returns how long the current combo stays open, 0 without a combo.
func (e *Engine) ComboRemaining() time.Duration {
	if e.combo == 0 {
		return 0
	}
	return e.comboTimer
}

// Difficulty returns the difficulty multiplier, starting at 1.
func (e *Engine) Difficulty() float64 { return e.difficulty }

// Wind returns the current wind vector.
func (e *Engine) Wind() r2.Vec { return e.wind }

// Arena returns the current arena bounds.
func (e *Engine) Arena() object.Arena { return e.arena }

// Player returns the player kite, nil in the menu.
func (e *Engine) Player() *object.Kite { return e.player }

// AIKites returns the AI kites including the fading ones. The slice is owned by
// the engine and must not be modified.
func (e *Engine) AIKites() []*object.Kite { return e.ai }

// ActiveAICount returns the number of AI kites that are not cut.
func (e *Engine) ActiveAICount() int {
	n := 0
	for _, k := range e.ai {
		if k.IsAlive() {
			n++
		}
	}
	return n
}

// Particles returns the particle system.
func (e *Engine) Particles() *object.ParticleSystem { return e.particles }

// Stats returns the statistics of the current or last session.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Score = e.score
	s.Difficulty = e.difficulty
	return s
}

// Draw renders particles, then AI kites, then the player onto canvas.
// The canvas' logical size is expected to match the arena.
func (e *Engine) Draw(canvas *draw.Canvas) {
	ctx := object.DrawContext{Canvas: canvas, Arena: e.arena, Elapsed: e.stats.PlayTime}

	e.particles.Draw(ctx)
	for _, k := range e.ai {
		k.Draw(ctx)
	}
	if e.player != nil {
		e.player.Draw(ctx)
	}
}
