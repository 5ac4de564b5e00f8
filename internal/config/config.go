package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game tuning parameters.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Game       GameConfig       `yaml:"game"`
	Player     KiteConfig       `yaml:"player"`
	AI         KiteConfig       `yaml:"ai"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Wind       WindConfig       `yaml:"wind"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Score      ScoreConfig      `yaml:"score"`
	Particles  ParticleConfig   `yaml:"particles"`
}

// ArenaConfig holds the initial arena size. The presentation layer may resize it.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// GameConfig holds session and population parameters.
type GameConfig struct {
	TargetFPS       int           `yaml:"target_fps"`
	MaxFrameDelta   time.Duration `yaml:"max_frame_delta"` // Longer frames are clamped to this
	InitialLives    int           `yaml:"initial_lives"`
	InitialAIKites  int           `yaml:"initial_ai_kites"`
	MaxAIKites      int           `yaml:"max_ai_kites"`
	SpawnInterval   time.Duration `yaml:"spawn_interval"`    // Divided by the difficulty multiplier
	SpawnInset      float64       `yaml:"spawn_inset"`       // Margin for the random spawn point
	SpawnEdgeOffset float64       `yaml:"spawn_edge_offset"` // Distance from the chosen edge
}

// KiteConfig holds per-role kite parameters.
type KiteConfig struct {
	Size                    float64       `yaml:"size"`  // Diameter; radius is Size/2
	Speed                   float64       `yaml:"speed"` // Base speed
	MaxSpeed                float64       `yaml:"max_speed"`
	TrailLength             int           `yaml:"trail_length"`
	WanderRadius            float64       `yaml:"wander_radius"`
	WanderInset             float64       `yaml:"wander_inset"` // Wander targets stay this far from edges
	DirectionChangeInterval time.Duration `yaml:"direction_change_interval"`
	Colors                  []string      `yaml:"colors"` // Hex colors, one is picked per kite
}

// PhysicsConfig holds per-tick integration constants.
type PhysicsConfig struct {
	Friction         float64       `yaml:"friction"`
	BounceDamping    float64       `yaml:"bounce_damping"`
	PlayerThrust     float64       `yaml:"player_thrust"`
	SteerFactor      float64       `yaml:"steer_factor"`
	ArrivalThreshold float64       `yaml:"arrival_threshold"`
	FadeDuration     time.Duration `yaml:"fade_duration"`
}

// WindConfig holds ambient wind parameters.
type WindConfig struct {
	MaxStrength    float64       `yaml:"max_strength"`
	ChangeInterval time.Duration `yaml:"change_interval"`
}

// DifficultyConfig holds difficulty ramp parameters.
type DifficultyConfig struct {
	Step     float64       `yaml:"step"`
	Interval time.Duration `yaml:"interval"`
}

// ScoreConfig holds scoring and combo parameters.
type ScoreConfig struct {
	CutBase         int           `yaml:"cut_base"`
	ComboMultiplier int           `yaml:"combo_multiplier"`
	ComboTimeout    time.Duration `yaml:"combo_timeout"`
	PlayerCutBurst  int           `yaml:"player_cut_burst"`
	AICutBurst      int           `yaml:"ai_cut_burst"`
}

// ParticleConfig holds cut effect parameters.
type ParticleConfig struct {
	Count    int           `yaml:"count"`
	Lifetime time.Duration `yaml:"lifetime"`
	SpeedMin float64       `yaml:"speed_min"`
	SpeedMax float64       `yaml:"speed_max"`
	SizeMin  float64       `yaml:"size_min"`
	SizeMax  float64       `yaml:"size_max"`
	Gravity  float64       `yaml:"gravity"`
	Friction float64       `yaml:"friction"`
	Spin     float64       `yaml:"spin"` // Rotation speed range is [-Spin, Spin]
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults. Panics if they do not parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positiveDur := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}

	positive("arena.width", c.Arena.Width)
	positive("arena.height", c.Arena.Height)
	positive("game.target_fps", float64(c.Game.TargetFPS))
	positive("game.initial_lives", float64(c.Game.InitialLives))
	positive("game.max_ai_kites", float64(c.Game.MaxAIKites))
	positiveDur("game.max_frame_delta", c.Game.MaxFrameDelta)
	positiveDur("game.spawn_interval", c.Game.SpawnInterval)
	positive("player.size", c.Player.Size)
	positive("player.max_speed", c.Player.MaxSpeed)
	positive("ai.size", c.AI.Size)
	positive("ai.max_speed", c.AI.MaxSpeed)
	positiveDur("ai.direction_change_interval", c.AI.DirectionChangeInterval)
	positiveDur("physics.fade_duration", c.Physics.FadeDuration)
	positiveDur("wind.change_interval", c.Wind.ChangeInterval)
	positiveDur("difficulty.interval", c.Difficulty.Interval)
	positiveDur("score.combo_timeout", c.Score.ComboTimeout)
	positiveDur("particles.lifetime", c.Particles.Lifetime)

	if c.Game.InitialAIKites < 0 {
		errs = append(errs, fmt.Errorf("game.initial_ai_kites must not be negative, got %d", c.Game.InitialAIKites))
	}
	if c.Player.TrailLength < 0 {
		errs = append(errs, fmt.Errorf("player.trail_length must not be negative, got %d", c.Player.TrailLength))
	}
	if c.AI.TrailLength < 0 {
		errs = append(errs, fmt.Errorf("ai.trail_length must not be negative, got %d", c.AI.TrailLength))
	}
	if c.Difficulty.Step < 0 {
		errs = append(errs, fmt.Errorf("difficulty.step must not be negative, got %v", c.Difficulty.Step))
	}
	if len(c.Player.Colors) == 0 || len(c.AI.Colors) == 0 {
		errs = append(errs, errors.New("player.colors and ai.colors need at least one color"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// FrameTime returns the target duration of one frame.
func (c *Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.Game.TargetFPS)
}
