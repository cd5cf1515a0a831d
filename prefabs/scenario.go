package prefabs

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/ecs/component"
	"gopkg.in/yaml.v3"
)

// ScenarioSpec describes a sandbox scene and the stimuli played against it.
type ScenarioSpec struct {
	Name     string         `yaml:"name"`
	Duration float64        `yaml:"duration"`
	Ground   []SegmentSpec  `yaml:"ground"`
	Bodies   []BodySpec     `yaml:"bodies"`
	Edges    []EdgeSpec     `yaml:"edges"`
	Actors   []ActorSpec    `yaml:"actors"`
	Stimuli  []StimulusSpec `yaml:"stimuli"`
}

type SegmentSpec struct {
	From VecSpec `yaml:"from"`
	To   VecSpec `yaml:"to"`
}

// BodySpec is a movable box edges can hang from.
type BodySpec struct {
	Name      string  `yaml:"name"`
	Position  VecSpec `yaml:"position"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Mass      float64 `yaml:"mass"`
	Kinematic bool    `yaml:"kinematic"`
	Velocity  VecSpec `yaml:"velocity"`
}

type EdgeSpec struct {
	From VecSpec `yaml:"from"`
	To   VecSpec `yaml:"to"`
	// Owner names a body from Bodies. Empty edges are static.
	Owner string `yaml:"owner"`
}

type ActorSpec struct {
	Name     string  `yaml:"name"`
	Position VecSpec `yaml:"position"`
	Facing   float64 `yaml:"facing"`
	Angle    float64 `yaml:"angle"`
	Velocity VecSpec `yaml:"velocity"`
	Dead     bool    `yaml:"dead"`
	// Inert actors exist in the scene without a controller.
	Inert bool `yaml:"inert"`
	// NoAgent leaves the actor without an animation agent, so performances
	// can only replace one that is already running.
	NoAgent bool `yaml:"no_agent"`
}

// StimulusSpec is one timed input. Exactly one of Start, Stop, Feedback or
// Animation is set.
type StimulusSpec struct {
	At        float64    `yaml:"at"`
	Actor     string     `yaml:"actor"`
	Start     *StartSpec `yaml:"start"`
	Stop      bool       `yaml:"stop"`
	Feedback  string     `yaml:"feedback"`
	Animation string     `yaml:"animation"`
}

// StartSpec holds the union of performance parameters; Type selects which
// fields are read.
type StartSpec struct {
	Type            string             `yaml:"type"`
	Attacker        string             `yaml:"attacker"`
	SourcePos       VecSpec            `yaml:"source_pos"`
	Normal          VecSpec            `yaml:"normal"`
	SourceMass      float64            `yaml:"source_mass"`
	Velocity        float64            `yaml:"velocity"`
	ForceMagnitude  float64            `yaml:"force_magnitude"`
	ImpactBone      component.BodyPart `yaml:"impact_bone"`
	InitialPosition string             `yaml:"initial_position"`
}

func (v VecSpec) Vec3() mgl64.Vec3 {
	x, y, z := v.XYZ()
	return mgl64.Vec3{x, y, z}
}

// ParseScenario decodes a scenario and checks its references.
func ParseScenario(name string, data []byte) (*ScenarioSpec, error) {
	var spec ScenarioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	sort.SliceStable(spec.Stimuli, func(i, j int) bool { return spec.Stimuli[i].At < spec.Stimuli[j].At })
	return &spec, nil
}

// LoadScenario loads a scenario by path, falling back to the embedded
// scenarios directory.
func LoadScenario(name string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = Load("scenarios/" + name)
		if err != nil {
			return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
		}
	}
	return ParseScenario(name, data)
}

func (s *ScenarioSpec) validate() error {
	actors := make(map[string]bool, len(s.Actors))
	for _, a := range s.Actors {
		if a.Name == "" {
			return fmt.Errorf("actor without name")
		}
		if actors[a.Name] {
			return fmt.Errorf("duplicate actor %q", a.Name)
		}
		actors[a.Name] = true
	}
	bodies := make(map[string]bool, len(s.Bodies))
	for _, b := range s.Bodies {
		bodies[b.Name] = true
	}
	for _, e := range s.Edges {
		if e.Owner != "" && !bodies[e.Owner] {
			return fmt.Errorf("edge owner %q is not a body", e.Owner)
		}
	}
	for i, st := range s.Stimuli {
		if !actors[st.Actor] {
			return fmt.Errorf("stimulus %d: unknown actor %q", i, st.Actor)
		}
		set := 0
		if st.Start != nil {
			set++
			if st.Start.Attacker != "" && !actors[st.Start.Attacker] {
				return fmt.Errorf("stimulus %d: unknown attacker %q", i, st.Start.Attacker)
			}
			if _, ok := component.ParsePerformanceType(st.Start.Type); !ok {
				return fmt.Errorf("stimulus %d: unknown performance %q", i, st.Start.Type)
			}
		}
		if st.Stop {
			set++
		}
		if st.Feedback != "" {
			set++
			t, ok := component.ParseEventType(st.Feedback)
			if !ok {
				return fmt.Errorf("stimulus %d: unknown feedback %q", i, st.Feedback)
			}
			if _, ok := component.FeedbackFor(t); !ok {
				return fmt.Errorf("stimulus %d: %q is not behavior feedback", i, st.Feedback)
			}
		}
		if st.Animation != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("stimulus %d: expected exactly one action, got %d", i, set)
		}
	}
	return nil
}

// Params builds the performance parameters, resolving the attacker through
// ids.
func (s *StartSpec) Params(ids map[string]component.ActorID) (component.PerformanceParams, error) {
	attacker := component.Attacker{Attacker: component.NoActor}
	if s.Attacker != "" {
		id, ok := ids[s.Attacker]
		if !ok {
			return nil, fmt.Errorf("prefabs: unknown attacker %q", s.Attacker)
		}
		attacker.Attacker = id
	}

	kind, ok := component.ParsePerformanceType(s.Type)
	if !ok {
		return nil, fmt.Errorf("prefabs: unknown performance %q", s.Type)
	}
	switch kind {
	case component.PerformanceEPA:
		return component.EPAParams{Attacker: attacker}, nil
	case component.PerformanceExplosion:
		return component.ExplosionParams{
			Attacker:   attacker,
			SourcePos:  s.SourcePos.Vec3(),
			Normal:     s.Normal.Vec3(),
			SourceMass: s.SourceMass,
			Velocity:   s.Velocity,
		}, nil
	case component.PerformancePunch:
		return component.PunchParams{
			Attacker:       attacker,
			ForceNormal:    s.Normal.Vec3(),
			ForceMagnitude: s.ForceMagnitude,
			ImpactBone:     s.ImpactBone,
		}, nil
	case component.PerformanceShove:
		return component.ShoveParams{
			Attacker:       attacker,
			ForceNormal:    s.Normal.Vec3(),
			ForceMagnitude: s.ForceMagnitude,
			ImpactBone:     s.ImpactBone,
		}, nil
	case component.PerformanceThrow:
		return component.ThrowParams{Attacker: attacker}, nil
	case component.PerformanceHitReact:
		return component.HitReactParams{Attacker: attacker}, nil
	case component.PerformanceFalling:
		return component.FallingParams{Attacker: attacker}, nil
	case component.PerformanceGunshot:
		return component.GunshotParams{Attacker: attacker}, nil
	case component.PerformanceBalance:
		return component.BalanceParams{Attacker: attacker}, nil
	case component.PerformanceBlend:
		pos := component.GetupNone
		if s.InitialPosition != "" {
			if pos, ok = component.ParseGetupPosition(s.InitialPosition); !ok {
				return nil, fmt.Errorf("prefabs: unknown getup position %q", s.InitialPosition)
			}
		}
		return component.BlendParams{Attacker: attacker, InitialPosition: pos}, nil
	}
	return nil, fmt.Errorf("prefabs: no params for %s", kind)
}
