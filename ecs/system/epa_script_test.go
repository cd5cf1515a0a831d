package system

import (
	"strings"
	"testing"

	"github.com/milk9111/ragdoll/prefabs"
)

func loadTakeover(t *testing.T) *ScriptTakeover {
	t.Helper()
	src, err := prefabs.LoadScript("epa_takeover.tengo")
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	s, err := NewScriptTakeover("epa_takeover.tengo", src)
	if err != nil {
		t.Fatalf("compile script: %v", err)
	}
	return s
}

func TestScriptTakeoverDecisions(t *testing.T) {
	s := loadTakeover(t)
	tests := []struct {
		name string
		in   TakeoverInput
		want TakeoverDecision
	}{
		{name: "pinned", in: TakeoverInput{TimeInState: 0.1}, want: TakeoverNone},
		{name: "dropping", in: TakeoverInput{Speed: 3, VelocityY: -3, FallingTakeover: true}, want: TakeoverFalling},
		{name: "settled near ledge", in: TakeoverInput{ReadyToGrab: true, TimeInState: 1, VelocityY: 0.2}, want: TakeoverGrab},
		{name: "too early to grab", in: TakeoverInput{ReadyToGrab: true, TimeInState: 0.2}, want: TakeoverNone},
		{name: "moving too fast to grab", in: TakeoverInput{ReadyToGrab: true, TimeInState: 1, VelocityY: -0.9}, want: TakeoverNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Decide(tt.in)
			if err != nil {
				t.Fatalf("decide: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestScriptTakeoverClonesAreIndependent(t *testing.T) {
	s := loadTakeover(t)
	clone := s.Clone()

	if got, _ := clone.Decide(TakeoverInput{FallingTakeover: true}); got != TakeoverFalling {
		t.Fatalf("expected clone to decide falling, got %q", got)
	}
	if got, _ := s.Decide(TakeoverInput{}); got != TakeoverNone {
		t.Fatalf("expected original unaffected, got %q", got)
	}
	if clone.Name() != s.Name() {
		t.Fatalf("expected clone to keep the name")
	}
}

func TestScriptTakeoverErrors(t *testing.T) {
	if _, err := NewScriptTakeover("broken", []byte("takeover = (")); err == nil {
		t.Fatalf("expected compile error")
	}

	s, err := NewScriptTakeover("odd", []byte(`takeover = "teleport"`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = s.Decide(TakeoverInput{})
	if err == nil || !strings.Contains(err.Error(), "teleport") {
		t.Fatalf("expected unknown takeover error, got %v", err)
	}
}
