package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game    GameConfig    `toml:"game"`
	Slash   SlashConfig   `toml:"slash"`
	Combo   ComboConfig   `toml:"combo"`
	Score   ScoreConfig   `toml:"score"`
	Effects EffectsConfig `toml:"effects"`
	Input   InputConfig   `toml:"input"`
	Flavor  FlavorConfig  `toml:"flavor"`
	Audio   AudioConfig   `toml:"audio"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

// GameConfig holds the session and spawn tuning. Velocities are in
// play-area units per frame; the simulation is frame-coupled.
type GameConfig struct {
	Duration         int           `toml:"duration"` // seconds per round
	FrameRate        int           `toml:"frame_rate"`
	Gravity          float64       `toml:"gravity"`          // added to vy once per frame
	OffscreenMargin  float64       `toml:"offscreen_margin"` // prune below height+margin
	SpawnDepth       float64       `toml:"spawn_depth"`      // start below height by this much
	ObjectRadius     float64       `toml:"object_radius"`
	BombChance       float64       `toml:"bomb_chance"`
	InitialBatch     int           `toml:"initial_batch"`
	MaxBatch         int           `toml:"max_batch"`
	SpawnIntervalMin time.Duration `toml:"spawn_interval_min"`
	SpawnIntervalMax time.Duration `toml:"spawn_interval_max"`
	HorizontalSpeed  float64       `toml:"horizontal_speed"` // vx uniform in [-h, h)
	SpinSpeed        float64       `toml:"spin_speed"`       // spin uniform in [-s, s)
	ApexMin          float64       `toml:"apex_min"`         // fraction of height
	ApexSpread       float64       `toml:"apex_spread"`
	SpawnMargin      float64       `toml:"spawn_margin"` // fraction of width excluded on each side
}

type SlashConfig struct {
	TrailLifetime     time.Duration `toml:"trail_lifetime"`
	JumpThreshold     float64       `toml:"jump_threshold"`
	InterpolationStep float64       `toml:"interpolation_step"`
	MaxInterpolated   int           `toml:"max_interpolated"`
}

type ComboConfig struct {
	Window    time.Duration `toml:"window"`
	Threshold int           `toml:"threshold"`
	PopupRise float64       `toml:"popup_rise"`
}

type ScoreConfig struct {
	FruitPoints int `toml:"fruit_points"`
	BombPenalty int `toml:"bomb_penalty"`
}

type EffectsConfig struct {
	BurstSize          int     `toml:"burst_size"`
	ParticleSpeed      float64 `toml:"particle_speed"`
	ParticleGravity    float64 `toml:"particle_gravity"`
	ParticleDecay      float64 `toml:"particle_decay"`
	ParticleSizeMin    float64 `toml:"particle_size_min"`
	ParticleSizeSpread float64 `toml:"particle_size_spread"`
	PopupDrift         float64 `toml:"popup_drift"`
	PopupDecay         float64 `toml:"popup_decay"`
	HalfPush           float64 `toml:"half_push"`
	HalfLift           float64 `toml:"half_lift"`
	HalfSpin           float64 `toml:"half_spin"`
}

type InputConfig struct {
	Source      string `toml:"source"` // "mouse", "tcp" or "websocket"
	BindAddress string `toml:"bind_address"`
	Path        string `toml:"path"`   // websocket endpoint
	Mirror      bool   `toml:"mirror"` // front-facing camera
	QueueSize   int    `toml:"queue_size"`
	// HideOnRelease reports no hand when the mouse button is released, so
	// the mouse only slashes while dragging.
	HideOnRelease bool `toml:"hide_on_release"`
}

type FlavorConfig struct {
	Endpoint    string        `toml:"endpoint"` // empty selects the Lua generator
	APIKeyEnv   string        `toml:"api_key_env"`
	Model       string        `toml:"model"`
	Timeout     time.Duration `toml:"timeout"`
	Temperature float64       `toml:"temperature"`
	Fallback    string        `toml:"fallback"`
	EmptyReply  string        `toml:"empty_reply"`
	ScriptsDir  string        `toml:"scripts_dir"`
	IdleMessage string        `toml:"idle_message"`
}

type AudioConfig struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
}

type DataConfig struct {
	FruitList string `toml:"fruit_list"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	Output string `toml:"output"` // zap output path; stderr belongs to the terminal UI
}

const (
	SourceMouse     = "mouse"
	SourceTCP       = "tcp"
	SourceWebSocket = "websocket"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	switch {
	case c.Game.Duration <= 0:
		return fmt.Errorf("game.duration must be positive, got %d", c.Game.Duration)
	case c.Game.FrameRate <= 0:
		return fmt.Errorf("game.frame_rate must be positive, got %d", c.Game.FrameRate)
	case c.Game.Gravity <= 0:
		return fmt.Errorf("game.gravity must be positive, got %g", c.Game.Gravity)
	case c.Game.ObjectRadius <= 0:
		return fmt.Errorf("game.object_radius must be positive, got %g", c.Game.ObjectRadius)
	case c.Game.BombChance < 0 || c.Game.BombChance > 1:
		return fmt.Errorf("game.bomb_chance must be within [0,1], got %g", c.Game.BombChance)
	case c.Game.MaxBatch < 1:
		return fmt.Errorf("game.max_batch must be at least 1, got %d", c.Game.MaxBatch)
	case c.Game.SpawnIntervalMin > c.Game.SpawnIntervalMax:
		return fmt.Errorf("game.spawn_interval_min %s exceeds spawn_interval_max %s",
			c.Game.SpawnIntervalMin, c.Game.SpawnIntervalMax)
	case c.Slash.TrailLifetime <= 0:
		return fmt.Errorf("slash.trail_lifetime must be positive, got %s", c.Slash.TrailLifetime)
	case c.Slash.InterpolationStep <= 0:
		return fmt.Errorf("slash.interpolation_step must be positive, got %g", c.Slash.InterpolationStep)
	case c.Combo.Window <= 0:
		return fmt.Errorf("combo.window must be positive, got %s", c.Combo.Window)
	}
	switch c.Input.Source {
	case SourceMouse, SourceTCP, SourceWebSocket:
	default:
		return fmt.Errorf("input.source %q is not one of mouse, tcp, websocket", c.Input.Source)
	}
	return nil
}

// Defaults returns the stock tuning of the game.
func Defaults() *Config {
	return &Config{
		Game: GameConfig{
			Duration:         30,
			FrameRate:        60,
			Gravity:          0.8,
			OffscreenMargin:  400,
			SpawnDepth:       150,
			ObjectRadius:     90,
			BombChance:       0.08,
			InitialBatch:     2,
			MaxBatch:         3,
			SpawnIntervalMin: time.Second,
			SpawnIntervalMax: 2 * time.Second,
			HorizontalSpeed:  8,
			SpinSpeed:        0.25,
			ApexMin:          0.65,
			ApexSpread:       0.3,
			SpawnMargin:      0.1,
		},
		Slash: SlashConfig{
			TrailLifetime:     150 * time.Millisecond,
			JumpThreshold:     15,
			InterpolationStep: 8,
			MaxInterpolated:   6,
		},
		Combo: ComboConfig{
			Window:    350 * time.Millisecond,
			Threshold: 3,
			PopupRise: 100,
		},
		Score: ScoreConfig{
			FruitPoints: 1,
			BombPenalty: 5,
		},
		Effects: EffectsConfig{
			BurstSize:          20,
			ParticleSpeed:      35,
			ParticleGravity:    0.6,
			ParticleDecay:      0.06,
			ParticleSizeMin:    3,
			ParticleSizeSpread: 10,
			PopupDrift:         3,
			PopupDecay:         0.03,
			HalfPush:           10,
			HalfLift:           7,
			HalfSpin:           0.7,
		},
		Input: InputConfig{
			Source:        SourceMouse,
			BindAddress:   "127.0.0.1:7077",
			Path:          "/track",
			Mirror:        true,
			QueueSize:     256,
			HideOnRelease: true,
		},
		Flavor: FlavorConfig{
			APIKeyEnv:   "AIRSLASH_FLAVOR_KEY",
			Model:       "gemini-3-flash-preview",
			Timeout:     8 * time.Second,
			Temperature: 0.8,
			Fallback:    "手起刀落，气势如虹！",
			EmptyReply:  "切得好！继续努力！",
			ScriptsDir:  "scripts",
			IdleMessage: "准备好了吗，忍者？",
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
		Data: DataConfig{
			FruitList: "data/yaml/fruit_list.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "airslash.log",
		},
	}
}
