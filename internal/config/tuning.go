package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/playmatatu/plinko/internal/game"
)

// Tuning overrides device profile coefficients. Zero fields keep the
// built-in value.
//
//	mobile:
//	  gravity: 0.12
//	desktop:
//	  bounce: 1.2
type Tuning struct {
	Mobile  ProfileTuning `yaml:"mobile"`
	Desktop ProfileTuning `yaml:"desktop"`
}

type ProfileTuning struct {
	PegRadius  float64 `yaml:"peg_radius"`
	BallRadius float64 `yaml:"ball_radius"`
	PegSpacing float64 `yaml:"peg_spacing"`
	Gravity    float64 `yaml:"gravity"`
	Bounce     float64 `yaml:"bounce"`
	Friction   float64 `yaml:"friction"`
}

// LoadTuning reads a YAML tuning file.
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return ParseTuning(data)
}

func ParseTuning(data []byte) (*Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	for name, p := range map[string]ProfileTuning{"mobile": t.Mobile, "desktop": t.Desktop} {
		if p.PegRadius < 0 || p.BallRadius < 0 || p.PegSpacing < 0 || p.Gravity < 0 || p.Bounce < 0 || p.Friction < 0 {
			return nil, fmt.Errorf("tuning %s: values must not be negative", name)
		}
		if p.Friction > 1 {
			return nil, fmt.Errorf("tuning %s: friction must be <= 1", name)
		}
	}
	return &t, nil
}

// Apply writes the non-zero overrides into rules.
func (t *Tuning) Apply(rules *game.Rules) {
	t.Mobile.apply(&rules.Mobile)
	t.Desktop.apply(&rules.Desktop)
}

func (p ProfileTuning) apply(dst *game.Profile) {
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&dst.PegRadius, p.PegRadius)
	set(&dst.BallRadius, p.BallRadius)
	set(&dst.PegSpacing, p.PegSpacing)
	set(&dst.Gravity, p.Gravity)
	set(&dst.Bounce, p.Bounce)
	set(&dst.Friction, p.Friction)
}
