package system

import (
	"testing"

	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	toyA stateID = iota
	toyB
	toyC
	toyDone
)

type toy struct {
	machine stateMachine[*toy]
	log     []string
	hijack  bool
}

var toyStates = newStateTable("Toy", toyA, toyDone, []stateDef[*toy]{
	toyA: {
		name:  "A",
		enter: func(p *toy) { p.log = append(p.log, "enter A") },
		exit:  func(p *toy) { p.log = append(p.log, "exit A") },
		update: func(p *toy) stateID {
			if p.hijack {
				p.machine.ManualTransition(toyC)
			}
			return toyB
		},
		onEvent: func(p *toy, ev component.Event) stateID {
			if ev.Type == component.EventTumble {
				return toyC
			}
			return noTransition
		},
	},
	toyB:    {name: "B", enter: func(p *toy) { p.log = append(p.log, "enter B") }},
	toyC:    {name: "C", enter: func(p *toy) { p.log = append(p.log, "enter C") }},
	toyDone: {name: "DONE"},
})

func newToy() *toy {
	p := &toy{}
	p.machine = newStateMachine(toyStates, p)
	return p
}

func TestStateMachineAdvance(t *testing.T) {
	p := newToy()
	p.machine.ManualTransition(toyA)
	p.log = nil
	p.machine.Advance(0.25)

	if p.machine.CurrentName() != "B" {
		t.Fatalf("expected B, got %s", p.machine.CurrentName())
	}
	if p.machine.TimeInState() != 0 {
		t.Fatalf("expected time reset on transition, got %v", p.machine.TimeInState())
	}
	want := []string{"exit A", "enter B"}
	if len(p.log) != len(want) {
		t.Fatalf("expected %v, got %v", want, p.log)
	}
	for i := range want {
		if p.log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, p.log)
		}
	}

	p.machine.Advance(0.25)
	p.machine.Advance(0.25)
	if p.machine.TimeInState() != 0.5 {
		t.Fatalf("expected 0.5s in B, got %v", p.machine.TimeInState())
	}
}

func TestStateMachineDiscardsStaleResult(t *testing.T) {
	p := newToy()
	p.machine.ManualTransition(toyA)
	p.hijack = true

	p.machine.Advance(0.1)
	if p.machine.CurrentName() != "C" {
		t.Fatalf("expected the manual transition to win, got %s", p.machine.CurrentName())
	}
}

func TestStateMachineEvents(t *testing.T) {
	p := newToy()
	p.machine.ManualTransition(toyA)

	p.machine.OnEvent(component.Event{Type: component.EventInvalid})
	p.machine.OnEvent(component.Event{Type: component.EventCollision})
	if p.machine.CurrentName() != "A" {
		t.Fatalf("expected unmapped events ignored, got %s", p.machine.CurrentName())
	}

	p.machine.OnEvent(component.Event{Type: component.EventTumble})
	if p.machine.CurrentName() != "C" {
		t.Fatalf("expected C, got %s", p.machine.CurrentName())
	}
}

func TestStateMachineHook(t *testing.T) {
	p := newToy()
	var seen []string
	p.machine.hook = func(machine, from, to string) {
		seen = append(seen, machine+":"+from+"->"+to)
	}

	p.machine.ManualTransition(toyB)
	if len(seen) != 1 || seen[0] != "Toy:A->B" {
		t.Fatalf("unexpected hook calls %v", seen)
	}
}

func TestStateTableValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{name: "empty", build: func() { newStateTable[*toy]("Bad", 0, 0, nil) }},
		{name: "initial out of range", build: func() {
			newStateTable("Bad", 3, 0, []stateDef[*toy]{{name: "A"}})
		}},
		{name: "unnamed", build: func() {
			newStateTable("Bad", 0, 1, []stateDef[*toy]{{name: "A"}, {}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tt.build()
		})
	}
}

func TestManualTransitionUnknownState(t *testing.T) {
	p := newToy()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	p.machine.ManualTransition(stateID(42))
}
