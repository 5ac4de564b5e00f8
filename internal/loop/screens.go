package loop

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/kitebattle/internal/draw"
	"github.com/tomz197/kitebattle/internal/engine"
)

var (
	titleColor  = colorful.Color{R: 0, G: 1, B: 1}
	accentColor = colorful.Color{R: 1, G: 0, B: 0.5}
	goldColor   = colorful.Color{R: 1, G: 0xd7 / 255.0, B: 0}
	dimColor    = colorful.Color{R: 0.6, G: 0.6, B: 0.7}
)

var titleArt = []string{
	` _  _____ _____ ___   ___   _ _____ _____ _    ___ `,
	`| |/ /_ _|_   _| __| | _ ) /_\_   _|_   _| |  | __|`,
	`| ' < | |  | | | _|  | _ \/ _ \| |   | | | |__| _| `,
	`|_|\_\___| |_| |___| |___/_/ \_\_|   |_| |____|___|`,
}

// drawUI draws the overlay for the current phase.
func (s *session) drawUI() {
	termWidth := s.canvas.TerminalWidth()
	termHeight := s.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if s.idle {
		s.drawIdleScreen(centerX, centerY)
		return
	}

	switch s.hud.phase {
	case engine.PhaseMenu:
		s.drawMenu(centerX, centerY)
	case engine.PhasePlaying:
		s.drawPlayingHUD(termWidth)
	case engine.PhasePaused:
		s.drawPlayingHUD(termWidth)
		s.drawPauseScreen(centerX, centerY)
	case engine.PhaseGameOver:
		s.drawGameOverScreen(centerX, centerY)
	}
}

// writeCentered writes plain text centered on centerX.
func (s *session) writeCentered(centerX, row int, text string) {
	s.out.WriteCentered(centerX, row, len(text), text)
}

// writeCenteredColor writes colored text centered on centerX.
func (s *session) writeCenteredColor(centerX, row int, col colorful.Color, text string) {
	s.out.WriteCentered(centerX, row, len(text), draw.Styled(col, text))
}

// drawMenu draws the title screen with the leaderboard.
func (s *session) drawMenu(centerX, centerY int) {
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	titleY := centerY - 9
	for i, line := range titleArt {
		s.out.WriteAt(centerX-titleWidth/2, titleY+i, draw.Styled(titleColor, line))
	}

	row := titleY + len(titleArt) + 1
	s.writeCenteredColor(centerX, row, dimColor, "~ cut the other kites, keep them apart ~")

	row += 2
	s.writeCenteredColor(centerX, row, goldColor, fmt.Sprintf("High score: %d", s.hud.highScore))

	if len(s.hud.top) > 0 {
		row += 2
		s.writeCentered(centerX, row, "Top kites")
		for i, e := range s.hud.top {
			row++
			s.writeCentered(centerX, row, fmt.Sprintf("%d. %-16s %6d", i+1, truncate(e.Player, 16), e.Score))
		}
	}

	row += 2
	for _, line := range []string{
		"W A S D / Arrows . . . Fly",
		"P / ESC  . . . . . . Pause",
		"Q  . . . . . . . . .  Quit",
	} {
		s.writeCentered(centerX, row, line)
		row++
	}

	row++
	s.writeCenteredColor(centerX, row, accentColor, "Press SPACE to Start")
}

// drawPlayingHUD draws score, lives, combo, difficulty and wind on the top row.
func (s *session) drawPlayingHUD(termWidth int) {
	scoreText := fmt.Sprintf("Score: %d  Best: %d", s.hud.score, s.hud.highScore)
	s.out.WriteAt(2, 1, scoreText)

	livesText := "Lives: " + strings.Repeat("♦", max(s.hud.lives, 0))
	s.out.WriteAt(termWidth-len([]rune(livesText))-1, 1, draw.Styled(accentColor, livesText))

	wind := s.engine.Wind()
	status := fmt.Sprintf("Difficulty x%.2f  Kites %d  Wind %s",
		s.engine.Difficulty(), s.engine.ActiveAICount(), windArrow(wind.X, wind.Y))
	s.out.WriteAt(2, 2, draw.Styled(dimColor, status))

	if s.hud.combo > 1 {
		remaining := s.engine.ComboRemaining().Round(100 * time.Millisecond)
		comboText := fmt.Sprintf("COMBO x%d  %.1fs", s.hud.combo, remaining.Seconds())
		s.writeCenteredColor(termWidth/2, 1, goldColor, comboText)
	}
}

// drawPauseScreen draws the pause overlay.
func (s *session) drawPauseScreen(centerX, centerY int) {
	s.writeCenteredColor(centerX, centerY-1, titleColor, "P A U S E D")
	s.writeCentered(centerX, centerY+1, "SPACE or P to resume, Q for menu")
}

// drawGameOverScreen draws the final score.
func (s *session) drawGameOverScreen(centerX, centerY int) {
	s.writeCenteredColor(centerX, centerY-4, accentColor, "G A M E   O V E R")

	stats := s.engine.Stats()
	s.writeCentered(centerX, centerY-2, fmt.Sprintf("Score: %d", s.hud.score))
	if stats.NewRecord {
		s.writeCenteredColor(centerX, centerY-1, goldColor, "NEW HIGH SCORE!")
	} else {
		s.writeCentered(centerX, centerY-1, fmt.Sprintf("High score: %d", s.hud.highScore))
	}
	s.writeCenteredColor(centerX, centerY, dimColor,
		fmt.Sprintf("Kites cut: %d   Best combo: %d   Time: %s", stats.Cuts, stats.BestCombo, stats.PlayTime.Round(time.Second)))

	row := centerY + 2
	for i, e := range s.hud.top {
		s.writeCentered(centerX, row+i, fmt.Sprintf("%d. %-16s %6d", i+1, truncate(e.Player, 16), e.Score))
	}

	s.writeCentered(centerX, row+len(s.hud.top)+1, "SPACE to play again, Q for menu")
}

// drawIdleScreen draws the inactivity warning.
func (s *session) drawIdleScreen(centerX, centerY int) {
	s.writeCenteredColor(centerX, centerY-2, accentColor, "INACTIVITY WARNING")

	left := s.opts.IdleTimeout - time.Since(s.lastInput)
	msg := fmt.Sprintf("You will be disconnected in %d seconds.", int(max(left, 0).Seconds()))
	s.writeCentered(centerX, centerY, msg)
	s.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// windArrow renders the wind direction as an arrow and its strength.
func windArrow(x, y float64) string {
	strength := math.Hypot(x, y)
	if strength < 0.01 {
		return "calm"
	}
	arrows := []string{"→", "↘", "↓", "↙", "←", "↖", "↑", "↗"}
	sector := int(math.Round(math.Atan2(y, x)/(math.Pi/4))+8) % 8
	return fmt.Sprintf("%s %.2f", arrows[sector], strength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
