package prefabs

import (
	"strings"
	"testing"

	"github.com/milk9111/ragdoll/ecs/component"
)

func TestLoadDefaultTuning(t *testing.T) {
	got, err := LoadTuning("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := component.DefaultTuning()
	if got != want {
		t.Fatalf("embedded tuning should match the built-in defaults\n got %+v\nwant %+v", got, want)
	}
}

func TestParseTuning(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr string
		check   func(t *testing.T, tun component.Tuning)
	}{
		{
			name: "empty_keeps_defaults",
			doc:  "",
			check: func(t *testing.T, tun component.Tuning) {
				if tun.Controller.ConstraintBreakThreshold != 100 {
					t.Fatalf("expected default break threshold, got %v", tun.Controller.ConstraintBreakThreshold)
				}
			},
		},
		{
			name: "default_then_kind",
			doc: `
performances:
  default: {stationary_wait_time: 2}
  Punch: {stationary_speed_threshold: 0.9}
`,
			check: func(t *testing.T, tun component.Tuning) {
				punch := tun.Settings(component.PerformancePunch)
				if punch.StationaryWaitTime != 2 || punch.StationarySpeedThreshold != 0.9 {
					t.Fatalf("unexpected punch settings %+v", punch)
				}
				shove := tun.Settings(component.PerformanceShove)
				if shove.StationaryWaitTime != 2 || shove.StationarySpeedThreshold != 0.5 {
					t.Fatalf("unexpected shove settings %+v", shove)
				}
			},
		},
		{
			name: "partial_controller",
			doc:  "controller: {stuck_timeout: 0}\n",
			check: func(t *testing.T, tun component.Tuning) {
				if tun.Controller.StuckTimeout != 0 {
					t.Fatalf("stuck watchdog should be disabled")
				}
				if !tun.Controller.RecoveryEnabled {
					t.Fatalf("recovery should keep its default")
				}
			},
		},
		{name: "unknown_section", doc: "camera: {}\n", wantErr: "validate"},
		{name: "wrong_type", doc: "controller: {grab_delay_threshold: soon}\n", wantErr: "validate"},
		{name: "negative", doc: "falling: {max_react_height: -1}\n", wantErr: "validate"},
		{name: "unknown_performance", doc: "performances: {Kick: {stationary_wait_time: 1}}\n", wantErr: "validate"},
		{name: "bad_yaml", doc: "controller: [\n", wantErr: "unmarshal"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tun, err := ParseTuning(c.name+".yaml", []byte(c.doc))
			if c.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), c.wantErr) {
					t.Fatalf("expected %q error, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			c.check(t, tun)
		})
	}
}

func TestToTuningRejectsUnknownKind(t *testing.T) {
	spec := defaultTuningSpec()
	spec.Performances = map[string]SettingsSpec{"Kick": {}}
	if _, err := spec.ToTuning(); err == nil {
		t.Fatalf("expected error for unknown performance")
	}
}

func TestEmbeddedScript(t *testing.T) {
	for _, name := range []string{"epa_takeover.tengo", "scripts/epa_takeover.tengo", "prefabs/scripts/epa_takeover.tengo"} {
		t.Run(name, func(t *testing.T) {
			data, err := LoadScript(name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !strings.Contains(string(data), "takeover") {
				t.Fatalf("unexpected script body")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		kind ChangeKind
		ok   bool
	}{
		{"prefabs/tuning.yaml", ChangeTuning, true},
		{"prefabs/scenarios/ledge.yaml", ChangeScenario, true},
		{"prefabs/scripts/epa_takeover.tengo", ChangeScript, true},
		{"prefabs/tuning.schema.json", 0, false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			kind, ok := classify(c.path)
			if ok != c.ok || (ok && kind != c.kind) {
				t.Fatalf("classify(%q) = %v, %v", c.path, kind, ok)
			}
		})
	}
}
