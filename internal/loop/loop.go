// Package loop drives one kite battle session in a terminal: it reads keys,
// maps them to engine commands, advances the engine once per frame and draws
// the arena and the screens around it.
package loop

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/draw"
	"github.com/tomz197/kitebattle/internal/engine"
	"github.com/tomz197/kitebattle/internal/input"
	"github.com/tomz197/kitebattle/internal/store"
)

// topScoreCount is how many players the menu and game over screens list.
const topScoreCount = 5

// Options configures a session.
type Options struct {
	Config   *config.Config
	Logger   *log.Logger
	Scores   *store.Board      // Optional score table; nil keeps scores in memory
	Player   string            // Name the scores are recorded under
	TermSize draw.TermSizeFunc // Defaults to the size of os.Stdout

	// IdleWarn and IdleTimeout end sessions without input. Zero disables them.
	IdleWarn    time.Duration
	IdleTimeout time.Duration
}

// session is the per-connection state of the frame driver.
type session struct {
	opts   Options
	log    *log.Logger
	engine *engine.Engine
	hud    *hud
	canvas *draw.Canvas
	out    *draw.ChunkWriter
	stream *input.Stream

	arenaHeight float64
	started     time.Time
	lastInput   time.Time
	idle        bool
	running     bool
}

// Run plays until the player quits from the menu, the input stream closes,
// the session idles out or ctx is cancelled.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	s, err := newSession(r, w, opts)
	if err != nil {
		return err
	}
	defer s.engine.Teardown()

	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	draw.ClearScreen(w)

	frameTime := s.opts.Config.FrameTime()
	s.started = time.Now()
	s.lastInput = s.started

	for s.running {
		frameStart := time.Now()

		// ===== INPUT PHASE =====
		s.processInput(frameStart)

		// ===== UPDATE PHASE =====
		s.updateScreen()
		s.engine.Advance(frameStart)

		// ===== DRAW PHASE =====
		if err := s.drawFrame(); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		wait := frameTime - time.Since(frameStart)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			s.log.Info("session cancelled", "reason", context.Cause(ctx))
			s.running = false
		case <-time.After(wait):
		}
	}

	draw.ClearScreen(w)
	stats := s.engine.Stats()
	s.log.Info("session ended", "score", stats.Score, "high_score", s.engine.HighScore())
	return nil
}

func newSession(r *bufio.Reader, w io.Writer, opts Options) (*session, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.TermSize == nil {
		opts.TermSize = draw.DefaultTermSizeFunc
	}
	if opts.Player == "" {
		opts.Player = "player"
	}
	logger := opts.Logger.With("player", opts.Player)

	h := newHUD(opts.Scores, logger)
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithObserver(h),
	}
	if opts.Scores != nil {
		engineOpts = append(engineOpts, engine.WithHighScoreStore(opts.Scores.ForPlayer(opts.Player)))
	}
	eng, err := engine.New(opts.Config, engineOpts...)
	if err != nil {
		return nil, err
	}
	h.sync(eng)

	s := &session{
		opts:        opts,
		log:         logger,
		engine:      eng,
		hud:         h,
		out:         draw.NewChunkWriter(w),
		stream:      input.StartStream(r),
		arenaHeight: opts.Config.Arena.Height,
		running:     true,
	}

	termWidth, termHeight := s.termSize()
	width := s.arenaWidth(termWidth, termHeight)
	s.canvas = draw.NewScaledCanvas(termWidth, termHeight, width, s.arenaHeight)
	eng.Resize(width, s.arenaHeight)

	return s, nil
}

// processInput reads this frame's keys and turns them into engine commands.
func (s *session) processInput(now time.Time) {
	in := input.ReadInput(s.stream)
	if in.Closed {
		s.log.Debug("input closed")
		s.running = false
		return
	}

	if len(in.Pressed) > 0 {
		s.lastInput = now
		if s.idle {
			// The key only wakes the session up.
			s.idle = false
			return
		}
	} else if s.opts.IdleTimeout > 0 && now.Sub(s.lastInput) > s.opts.IdleTimeout {
		s.log.Info("disconnecting idle session", "idle", now.Sub(s.lastInput).Round(time.Second))
		s.running = false
		return
	} else if s.opts.IdleWarn > 0 && now.Sub(s.lastInput) > s.opts.IdleWarn {
		if !s.idle {
			s.engine.Pause()
		}
		s.idle = true
	}

	s.applyInput(in)
}

// applyInput maps keys to commands for the current phase.
func (s *session) applyInput(in input.Input) {
	eng := s.engine

	switch eng.Phase() {
	case engine.PhaseMenu:
		switch {
		case in.Quit:
			s.running = false
		case in.Start:
			s.stream.Reset()
			eng.StartGame()
		}

	case engine.PhasePlaying:
		switch {
		case in.Quit:
			eng.QuitToMenu()
		case in.Pause:
			eng.Pause()
		default:
			eng.SetDirectionalInput(in.Up, in.Down, in.Left, in.Right)
		}

	case engine.PhasePaused:
		switch {
		case in.Quit:
			eng.QuitToMenu()
		case in.Start, in.Pause:
			s.stream.Reset()
			eng.SetDirectionalInput(false, false, false, false)
			eng.Resume()
		}

	case engine.PhaseGameOver:
		switch {
		case in.Quit:
			eng.QuitToMenu()
		case in.Start:
			s.stream.Reset()
			eng.StartGame()
		}
	}
}

// updateScreen follows terminal resizes. The arena keeps its configured height
// and takes the width that matches the terminal's aspect ratio.
func (s *session) updateScreen() {
	termWidth, termHeight := s.termSize()
	if termWidth == s.canvas.TerminalWidth() && termHeight == s.canvas.TerminalHeight() {
		return
	}

	s.canvas.Resize(termWidth, termHeight)
	width := s.arenaWidth(termWidth, termHeight)
	s.canvas.SetLogicalSize(width, s.arenaHeight)
	s.engine.Resize(width, s.arenaHeight)
	s.log.Debug("terminal resized", "cols", termWidth, "rows", termHeight, "arena_width", width)
}

func (s *session) termSize() (int, int) {
	w, h, err := s.opts.TermSize()
	if err != nil || w < 1 || h < 1 {
		return 80, 24
	}
	return w, h
}

// arenaWidth returns the logical width that keeps half-block pixels square.
func (s *session) arenaWidth(termWidth, termHeight int) float64 {
	return s.arenaHeight * float64(termWidth) / float64(termHeight*2)
}

// drawFrame renders the arena and the overlay for the current phase.
func (s *session) drawFrame() error {
	s.out.WriteString("\033[H\033[2J")
	s.canvas.Clear()

	drawStars(s.canvas, time.Since(s.started))
	if s.engine.Phase() != engine.PhaseMenu {
		s.engine.Draw(s.canvas)
	}
	s.canvas.Render(s.out)

	s.drawUI()

	return s.out.Flush()
}
