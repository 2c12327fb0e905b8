// Package config holds the player settings that are not part of a song: where
// the instrument bank lives and how the mix is delivered. Settings are read
// from a YAML file; anything missing from the file keeps its default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vsariola/organya"
	"github.com/vsariola/organya/player"
)

// DefaultBank is the well-known location of the instrument bank, relative to
// the working directory.
const DefaultBank = "orgsamp.dat"

type Config struct {
	Bank   string  `yaml:"bank"`
	Lazy   bool    `yaml:"lazy,omitempty"`   // read waveforms from the bank on first use
	Volume float32 `yaml:"volume"`           // master volume
	LeadIn float64 `yaml:"leadin"`           // seconds of silence before playback
	Loops  int     `yaml:"loops"`            // passes rendered when exporting audio
	Output string  `yaml:"output,omitempty"` // directory for exported files
}

// Default returns the settings of the reference player: 0.7 volume and one
// second of silence before the song.
func Default() Config {
	return Config{
		Bank:   DefaultBank,
		Volume: player.DefaultOptions().Volume,
		LeadIn: 1,
		Loops:  1,
	}
}

// Path returns the default config file location,
// <user config dir>/organya/config.yml.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "organya", "config.yml"), nil
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %v: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %v: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %v: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Volume < 0 {
		return fmt.Errorf("volume must not be negative, was %v", c.Volume)
	}
	if c.LeadIn < 0 {
		return fmt.Errorf("leadin must not be negative, was %v", c.LeadIn)
	}
	if c.Loops < 1 {
		return fmt.Errorf("loops must be at least 1, was %v", c.Loops)
	}
	return nil
}

// PlayerOptions converts the config to the options of a player.Stream.
func (c Config) PlayerOptions() player.Options {
	return player.Options{
		Volume: c.Volume,
		LeadIn: int(c.LeadIn * organya.SampleRate),
	}
}
