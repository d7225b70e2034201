package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the defaults shared by the subcommands. Every field
// can be overridden from the environment, and most again by flags.
type Config struct {
	SceneDir  string `env:"GEOVORTEX_SCENE_DIR" envDefault:"input/scenes"`
	OutputDir string `env:"GEOVORTEX_OUTPUT_DIR" envDefault:"output"`

	Target    string `env:"GEOVORTEX_TARGET" envDefault:"terrain"`
	Driver    string `env:"GEOVORTEX_DRIVER" envDefault:"Vortex"`
	Indicator string `env:"GEOVORTEX_INDICATOR" envDefault:"cross"`

	Scale       float64 `env:"GEOVORTEX_SCALE" envDefault:"8"`
	ExtraFrames int     `env:"GEOVORTEX_EXTRA_FRAMES" envDefault:"0"`

	PositiveColor string `env:"GEOVORTEX_POSITIVE_COLOR" envDefault:"blue"`
	NegativeColor string `env:"GEOVORTEX_NEGATIVE_COLOR" envDefault:"red"`

	ShowStats bool `env:"GEOVORTEX_STATS"`
}

// FromEnv loads the configuration defaults from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
