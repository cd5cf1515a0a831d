package prefabs

import (
	"fmt"
	"os"

	"github.com/milk9111/ragdoll/ecs/component"
	"gopkg.in/yaml.v3"
)

// TuningFile is the name of the default tuning document.
const TuningFile = "tuning.yaml"

// defaultPerformanceKey applies to every kind before per-kind entries.
const defaultPerformanceKey = "default"

type ControllerSpec struct {
	ConstraintBreakThreshold float64 `yaml:"constraint_break_threshold"`
	GrabDelayThreshold       float64 `yaml:"grab_delay_threshold"`
	RecoveryEnabled          bool    `yaml:"recovery_enabled"`
	StuckTimeout             float64 `yaml:"stuck_timeout"`
	StuckDistance            float64 `yaml:"stuck_distance"`
}

type SettingsSpec struct {
	StationarySpeedThreshold *float64 `yaml:"stationary_speed_threshold"`
	StationaryWaitTime       *float64 `yaml:"stationary_wait_time"`
}

type FallingSpec struct {
	MinFallingImpactTime float64 `yaml:"min_falling_impact_time"`
	MinReactImpactTime   float64 `yaml:"min_react_impact_time"`
	MaxReactHeight       float64 `yaml:"max_react_height"`
	ImpactRayLength      float64 `yaml:"impact_ray_length"`
	ImpactMinSpeed       float64 `yaml:"impact_min_speed"`
	HeightRayLength      float64 `yaml:"height_ray_length"`
	FastSpeed            float64 `yaml:"fast_speed"`
	SlideAngle           float64 `yaml:"slide_angle"`
	FeetFirstDot         float64 `yaml:"feet_first_dot"`
	MomentumScale        float64 `yaml:"momentum_scale"`
	MomentumMin          float64 `yaml:"momentum_min"`
	MomentumMax          float64 `yaml:"momentum_max"`
}

type EPASpec struct {
	TakeoverScript string `yaml:"takeover_script"`
}

// TuningSpec is the YAML form of component.Tuning. Keys left out keep
// their defaults.
type TuningSpec struct {
	Controller   ControllerSpec          `yaml:"controller"`
	Performances map[string]SettingsSpec `yaml:"performances"`
	Falling      FallingSpec             `yaml:"falling"`
	EPA          EPASpec                 `yaml:"epa"`
}

func defaultTuningSpec() TuningSpec {
	t := component.DefaultTuning()
	return TuningSpec{
		Controller: ControllerSpec{
			ConstraintBreakThreshold: t.Controller.ConstraintBreakThreshold,
			GrabDelayThreshold:       t.Controller.GrabDelayThreshold,
			RecoveryEnabled:          t.Controller.RecoveryEnabled,
			StuckTimeout:             t.Controller.StuckTimeout,
			StuckDistance:            t.Controller.StuckDistance,
		},
		Falling: FallingSpec(t.Falling),
		EPA:     EPASpec(t.EPA),
	}
}

// ToTuning converts the document, layering per-kind settings over the
// default entry over the built-in defaults.
func (s TuningSpec) ToTuning() (component.Tuning, error) {
	t := component.DefaultTuning()
	t.Controller = component.ControllerTuning(s.Controller)
	t.Falling = component.FallingTuning(s.Falling)
	t.EPA = component.EPATuning(s.EPA)

	if def, ok := s.Performances[defaultPerformanceKey]; ok {
		for kind := component.PerformanceType(0); kind < component.PerformanceTypeCount; kind++ {
			t.Performances[kind] = def.apply(t.Performances[kind])
		}
	}
	for name, settings := range s.Performances {
		if name == defaultPerformanceKey {
			continue
		}
		kind, ok := component.ParsePerformanceType(name)
		if !ok {
			return component.Tuning{}, fmt.Errorf("prefabs: unknown performance %q", name)
		}
		t.Performances[kind] = settings.apply(t.Performances[kind])
	}
	return t, nil
}

func (s SettingsSpec) apply(base component.PerformanceSettings) component.PerformanceSettings {
	if s.StationarySpeedThreshold != nil {
		base.StationarySpeedThreshold = *s.StationarySpeedThreshold
	}
	if s.StationaryWaitTime != nil {
		base.StationaryWaitTime = *s.StationaryWaitTime
	}
	return base
}

// ParseTuning validates and decodes a tuning document.
func ParseTuning(name string, data []byte) (component.Tuning, error) {
	if err := ValidateTuning(name, data); err != nil {
		return component.Tuning{}, err
	}
	spec := defaultTuningSpec()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return component.Tuning{}, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	t, err := spec.ToTuning()
	if err != nil {
		return component.Tuning{}, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return t, nil
}

// LoadTuning loads a named tuning document from the prefab directory or
// the embedded defaults.
func LoadTuning(name string) (component.Tuning, error) {
	if name == "" {
		name = TuningFile
	}
	data, err := Load(name)
	if err != nil {
		return component.Tuning{}, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	return ParseTuning(name, data)
}

// LoadTuningFile loads a tuning document from an arbitrary path.
func LoadTuningFile(path string) (component.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return component.Tuning{}, fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	return ParseTuning(path, data)
}
