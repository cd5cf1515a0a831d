package main

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/milk9111/ragdoll/ecs/component"
	"github.com/milk9111/ragdoll/ecs/system"
	"github.com/milk9111/ragdoll/prefabs"
)

func quietOptions() simOptions {
	return simOptions{workers: 1, logger: log.New(io.Discard, "", 0)}
}

func testTuning() component.Tuning {
	tuning := component.DefaultTuning()
	tuning.Controller.StuckTimeout = 0
	return tuning
}

func hasEntry(history []string, prefix string) bool {
	for _, h := range history {
		if strings.HasPrefix(h, prefix) {
			return true
		}
	}
	return false
}

func TestEmbeddedScenariosRun(t *testing.T) {
	tests := []struct {
		scenario string
		want     string
	}{
		{scenario: "explosion.yaml", want: "victim Explosion/"},
		{scenario: "punch.yaml", want: "target Punch/"},
		{scenario: "ledge.yaml", want: "climber Falling/"},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			spec, err := prefabs.LoadScenario(tt.scenario)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			sim, err := newSimulation(spec, testTuning(), quietOptions())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer sim.Close()

			runToEnd(sim, 1.0/60)
			if !sim.Done() {
				t.Fatalf("expected the scenario to finish, elapsed %.2f", sim.elapsed)
			}
			if sim.next != len(spec.Stimuli) {
				t.Fatalf("expected every stimulus played, got %d of %d", sim.next, len(spec.Stimuli))
			}
			if !hasEntry(sim.history, tt.want) {
				t.Fatalf("expected %q in %v", tt.want, sim.history)
			}
		})
	}
}

func TestInertActorsHaveNoController(t *testing.T) {
	spec, err := prefabs.LoadScenario("explosion.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sim, err := newSimulation(spec, testTuning(), quietOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sim.Close()

	if sim.perf.Actors() != 1 {
		t.Fatalf("expected only the victim to get a controller, got %d", sim.perf.Actors())
	}
	if _, err := sim.perf.Controller(sim.world, sim.ids["bomber"]); err == nil {
		t.Fatalf("expected the bomber to stay inert")
	}
}

func TestScenarioWithoutDurationEndsWhenIdle(t *testing.T) {
	doc := `
name: brief
ground:
  - from: [-20, 0]
    to: [20, 0]
actors:
  - name: solo
    position: [0, 0.9]
    facing: 1
stimuli:
  - at: 0
    actor: solo
    start:
      type: Shove
  - at: 0.2
    actor: solo
    stop: true
`
	spec, err := prefabs.ParseScenario("brief", []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tuning := testTuning()
	tuning.Controller.RecoveryEnabled = false
	sim, err := newSimulation(spec, tuning, quietOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sim.Close()

	if sim.Done() {
		t.Fatalf("expected pending stimuli to keep the scenario running")
	}
	runToEnd(sim, 0.05)
	if !sim.Done() || sim.elapsed > 1 {
		t.Fatalf("expected the scenario to end soon after the stop, elapsed %.2f", sim.elapsed)
	}
	if !hasEntry(sim.history, "solo Shove/") || sim.history[len(sim.history)-1] != "solo idle" {
		t.Fatalf("unexpected history %v", sim.history)
	}
}

func TestStimulusMessages(t *testing.T) {
	spec, err := prefabs.LoadScenario("punch.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sim, err := newSimulation(spec, testTuning(), quietOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sim.Close()

	tests := []struct {
		name    string
		in      prefabs.StimulusSpec
		want    system.MessageKind
		wantErr bool
	}{
		{name: "start", in: prefabs.StimulusSpec{Actor: "target", Start: &prefabs.StartSpec{Type: "Shove"}}, want: system.MessageStart},
		{name: "stop", in: prefabs.StimulusSpec{Actor: "target", Stop: true}, want: system.MessageStop},
		{name: "feedback", in: prefabs.StimulusSpec{Actor: "target", Feedback: "StaggerTrip"}, want: system.MessageBehavior},
		{name: "animation", in: prefabs.StimulusSpec{Actor: "target", Animation: "END"}, want: system.MessageAnimation},
		{name: "unknown feedback", in: prefabs.StimulusSpec{Actor: "target", Feedback: "Sneeze"}, wantErr: true},
		{name: "empty", in: prefabs.StimulusSpec{Actor: "target"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := sim.message(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("message: %v", err)
			}
			if msg.Kind != tt.want || msg.Actor != sim.ids["target"] {
				t.Fatalf("unexpected message %+v", msg)
			}
		})
	}

	msg, _ := sim.message(prefabs.StimulusSpec{Actor: "target", Animation: "END"})
	if msg.NameHash != component.AnimationEndHash {
		t.Fatalf("expected the END hash, got %d", msg.NameHash)
	}
}

func TestTakeoverFromTuning(t *testing.T) {
	spec, err := prefabs.LoadScenario("ledge.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tuning := testTuning()
	tuning.EPA.TakeoverScript = "epa_takeover.tengo"
	sim, err := newSimulation(spec, tuning, quietOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sim.Close()

	tuning.EPA.TakeoverScript = "missing.tengo"
	if err := sim.applyTuning(tuning); err == nil {
		t.Fatalf("expected a missing script to fail")
	}
}

func TestWatchDirs(t *testing.T) {
	r := &runner{scenario: "explosion.yaml"}
	dirs := r.watchDirs()
	want := map[string]bool{"prefabs": true, "prefabs/scripts": true, "prefabs/scenarios": true}
	if len(dirs) != len(want) {
		t.Fatalf("expected %d dirs, got %v", len(want), dirs)
	}
	for _, d := range dirs {
		if !want[d] {
			t.Fatalf("unexpected watch dir %q", d)
		}
	}
}

func TestActorWithoutAgentIgnoresStarts(t *testing.T) {
	doc := `
name: busy
duration: 0.5
actors:
  - name: solo
    position: [0, 0.9]
    facing: 1
    no_agent: true
stimuli:
  - at: 0.1
    actor: solo
    start:
      type: Shove
`
	spec, err := prefabs.ParseScenario("busy", []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sim, err := newSimulation(spec, testTuning(), quietOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer sim.Close()

	runToEnd(sim, 0.05)
	if hasEntry(sim.history, "solo Shove/") {
		t.Fatalf("expected the start to be dropped without an agent, got %v", sim.history)
	}
}
