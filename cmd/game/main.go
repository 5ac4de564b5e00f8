package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/loop"
	"github.com/tomz197/kitebattle/internal/store"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kitebattle: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := defaultDataDir()

	// The terminal belongs to the game, so logs go to a file.
	logPath := config.GetEnv("KITES_LOG", filepath.Join(dataDir, "kitebattle.log"))
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		Prefix:          "kitebattle",
	})
	if level, err := log.ParseLevel(config.GetEnv("KITES_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	configPath := config.GetEnv("KITES_CONFIG", "")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	scores, err := store.Open(config.GetEnv("KITES_SCORES", filepath.Join(dataDir, "scores.csv")))
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "config", configPath, "scores", scores.Path())
	reader := bufio.NewReader(os.Stdin)
	return loop.Run(ctx, reader, os.Stdout, loop.Options{
		Config: cfg,
		Logger: logger,
		Scores: scores,
		Player: config.GetEnv("USER", "player"),
	})
}

// defaultDataDir is where the score table and log live unless overridden.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "kitebattle")
}
