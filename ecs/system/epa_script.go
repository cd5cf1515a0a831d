package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptTakeover evaluates a tengo script every RUNNING tick. The script sees
// speed, velocity_y, falling_takeover, ready_to_grab and time_in_state and
// assigns takeover to "", "falling" or "grab".
type ScriptTakeover struct {
	name     string
	compiled *tengo.Compiled
}

// NewScriptTakeover compiles src once. Use Clone to hand a copy to each
// controller.
func NewScriptTakeover(name string, src []byte) (*ScriptTakeover, error) {
	script := tengo.NewScript(src)
	_ = script.Add("speed", 0.0)
	_ = script.Add("velocity_y", 0.0)
	_ = script.Add("falling_takeover", false)
	_ = script.Add("ready_to_grab", false)
	_ = script.Add("time_in_state", 0.0)
	_ = script.Add("takeover", "")
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("takeover script %s: %w", name, err)
	}
	return &ScriptTakeover{name: name, compiled: compiled}, nil
}

// Clone returns an independent copy safe to run alongside the original.
func (s *ScriptTakeover) Clone() *ScriptTakeover {
	return &ScriptTakeover{name: s.name, compiled: s.compiled.Clone()}
}

func (s *ScriptTakeover) Name() string {
	return s.name
}

func (s *ScriptTakeover) Decide(in TakeoverInput) (TakeoverDecision, error) {
	c := s.compiled
	for name, value := range map[string]any{
		"speed":            in.Speed,
		"velocity_y":       in.VelocityY,
		"falling_takeover": in.FallingTakeover,
		"ready_to_grab":    in.ReadyToGrab,
		"time_in_state":    in.TimeInState,
		"takeover":         "",
	} {
		if err := c.Set(name, value); err != nil {
			return TakeoverNone, fmt.Errorf("takeover script %s: set %s: %w", s.name, name, err)
		}
	}
	if err := c.Run(); err != nil {
		return TakeoverNone, fmt.Errorf("takeover script %s: %w", s.name, err)
	}

	switch out := strings.TrimSpace(c.Get("takeover").String()); out {
	case "":
		return TakeoverNone, nil
	case "falling":
		return TakeoverFalling, nil
	case "grab":
		return TakeoverGrab, nil
	default:
		return TakeoverNone, fmt.Errorf("takeover script %s: unknown takeover %q", s.name, out)
	}
}
