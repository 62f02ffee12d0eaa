// Package config loads physics settings from YAML on top of embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/onager2d/broadphase"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalidSettings = errors.New("config: invalid settings")

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec2) Vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

type SpatialHashSettings struct {
	CellSize       float64 `yaml:"cell_size"`
	CellOffsetSize float64 `yaml:"cell_offset_size"`
}

type PhysicsSettings struct {
	Enabled            bool                `yaml:"enabled"`
	Gravity            Vec2                `yaml:"gravity"`
	SubSteps           int                 `yaml:"sub_steps"`
	TickRate           float64             `yaml:"tick_rate"`
	MaxAccumulatedTime float64             `yaml:"max_accumulated_time"`
	Broadphase         string              `yaml:"broadphase"`
	SpatialHash        SpatialHashSettings `yaml:"spatial_hash"`
	Workers            int                 `yaml:"workers"`
	Debug              bool                `yaml:"debug"`
}

// FixedTimeStep returns the duration of one tick in seconds.
func (p PhysicsSettings) FixedTimeStep() float64 {
	return 1 / p.TickRate
}

// BroadphaseOptions returns the strategy options carried by the settings.
func (p PhysicsSettings) BroadphaseOptions() broadphase.Options {
	return broadphase.Options{
		CellSize:       p.SpatialHash.CellSize,
		CellOffsetSize: p.SpatialHash.CellOffsetSize,
	}
}

// WithToggles returns p with Enabled and Debug taken from running, so a
// reloaded file does not undo a pause or a command-line debug override.
func (p PhysicsSettings) WithToggles(running PhysicsSettings) PhysicsSettings {
	p.Enabled = running.Enabled
	p.Debug = running.Debug
	return p
}

type Settings struct {
	Physics PhysicsSettings `yaml:"physics"`
}

// Default returns the embedded default settings.
func Default() Settings {
	var s Settings
	if err := yaml.Unmarshal(defaultYAML, &s); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return s
}

// Parse overlays data on the defaults and validates the result. Keys missing
// from data keep their default values.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads and parses a settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return s, nil
}

// Validate reports every invalid field, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	p := s.Physics
	var errs []error
	if !(p.TickRate > 0) {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %v", p.TickRate))
	}
	if p.SubSteps < 1 {
		errs = append(errs, fmt.Errorf("sub_steps must be at least 1, got %d", p.SubSteps))
	}
	if !(p.MaxAccumulatedTime > 0) {
		errs = append(errs, fmt.Errorf("max_accumulated_time must be positive, got %v", p.MaxAccumulatedTime))
	}
	if !broadphase.Valid(p.Broadphase) {
		errs = append(errs, fmt.Errorf("unknown broadphase %q", p.Broadphase))
	}
	if !(p.SpatialHash.CellSize > 0) {
		errs = append(errs, fmt.Errorf("spatial_hash.cell_size must be positive, got %v", p.SpatialHash.CellSize))
	}
	if !(p.SpatialHash.CellOffsetSize > 0) {
		errs = append(errs, fmt.Errorf("spatial_hash.cell_offset_size must be positive, got %v", p.SpatialHash.CellOffsetSize))
	} else if p.SpatialHash.CellOffsetSize > p.SpatialHash.CellSize {
		errs = append(errs, fmt.Errorf("spatial_hash.cell_offset_size %v exceeds cell_size %v", p.SpatialHash.CellOffsetSize, p.SpatialHash.CellSize))
	}
	if p.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", p.Workers))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}
