package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/draw"
	"github.com/tomz197/kitebattle/internal/loop"
	"github.com/tomz197/kitebattle/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultScoresPath  = "/app/data/scores.csv"
	defaultMaxSessions = 64
)

// server holds what every SSH session shares.
type server struct {
	cfg         *config.Config
	scores      *store.Board
	logger      *log.Logger
	idleWarn    time.Duration
	idleTimeout time.Duration
	slots       chan struct{}
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "kitebattle-ssh",
	})
	if level, err := log.ParseLevel(config.GetEnv("KITES_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	if err := run(logger); err != nil {
		logger.Fatal("server failed", "err", err)
	}
}

func run(logger *log.Logger) error {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)

	cfg, err := config.Load(config.GetEnv("KITES_CONFIG", ""))
	if err != nil {
		return err
	}
	scores, err := store.Open(config.GetEnv("KITES_SCORES", defaultScoresPath))
	if err != nil {
		return err
	}

	srv := &server{
		cfg:         cfg,
		scores:      scores,
		logger:      logger,
		idleWarn:    config.GetEnvDuration("SSH_IDLE_WARN", 90*time.Second),
		idleTimeout: config.GetEnvDuration("SSH_IDLE_TIMEOUT", 120*time.Second),
		slots:       make(chan struct{}, max(config.GetEnvInt("SSH_MAX_SESSIONS", defaultMaxSessions), 1)),
	}
	logger.Info("ssh config", "host", host, "port", port, "host_key", hostKeyPath,
		"scores", scores.Path(), "max_sessions", cap(srv.slots))

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			srv.gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-done:
	}
	logger.Info("shutting down server")

	// Session contexts are cancelled on shutdown, so running games end on their own.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// gameMiddleware runs one kite battle per SSH session.
func (srv *server) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		select {
		case srv.slots <- struct{}{}:
			defer func() { <-srv.slots }()
		default:
			fmt.Fprintln(sess, "The server is full, try again later.")
			return
		}

		logger := srv.logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
		logger.Info("new game session", "terminal", pty.Term, "cols", pty.Window.Width, "rows", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		err := loop.Run(sess.Context(), bufio.NewReader(sess), sess, loop.Options{
			Config:      srv.cfg,
			Logger:      logger,
			Scores:      srv.scores,
			Player:      sess.User(),
			TermSize:    sizeTracker.getSize,
			IdleWarn:    srv.idleWarn,
			IdleTimeout: srv.idleTimeout,
		})
		if err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
