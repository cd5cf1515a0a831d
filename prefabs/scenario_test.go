package prefabs

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/ecs/component"
)

func TestEmbeddedScenariosParse(t *testing.T) {
	for _, name := range []string{"explosion.yaml", "ledge.yaml", "punch.yaml"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadScenario(name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(spec.Actors) == 0 || len(spec.Stimuli) == 0 {
				t.Fatalf("scenario should have actors and stimuli")
			}
		})
	}
}

func TestParseScenarioErrors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown_actor",
			doc:     "actors: [{name: a}]\nstimuli: [{actor: b, stop: true}]\n",
			wantErr: "unknown actor",
		},
		{
			name:    "two_actions",
			doc:     "actors: [{name: a}]\nstimuli: [{actor: a, stop: true, animation: END}]\n",
			wantErr: "exactly one",
		},
		{
			name:    "not_feedback",
			doc:     "actors: [{name: a}]\nstimuli: [{actor: a, feedback: AnimationEnd}]\n",
			wantErr: "not behavior feedback",
		},
		{
			name:    "bad_type",
			doc:     "actors: [{name: a}]\nstimuli: [{actor: a, start: {type: Kick}}]\n",
			wantErr: "unknown performance",
		},
		{
			name:    "duplicate_actor",
			doc:     "actors: [{name: a}, {name: a}]\n",
			wantErr: "duplicate",
		},
		{
			name:    "edge_owner",
			doc:     "edges: [{from: [0, 0], to: [1, 0], owner: lift}]\n",
			wantErr: "edge owner",
		},
		{
			name:    "bad_bone",
			doc:     "actors: [{name: a}]\nstimuli: [{actor: a, start: {type: Punch, impact_bone: Tail}}]\n",
			wantErr: "unknown body part",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseScenario(c.name, []byte(c.doc))
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("expected %q error, got %v", c.wantErr, err)
			}
		})
	}
}

func TestStimuliSortedByTime(t *testing.T) {
	doc := `
actors: [{name: a}]
stimuli:
  - {at: 2, actor: a, stop: true}
  - {at: 1, actor: a, animation: END}
`
	spec, err := ParseScenario("sorted", []byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Stimuli[0].At != 1 || spec.Stimuli[1].At != 2 {
		t.Fatalf("stimuli not sorted: %+v", spec.Stimuli)
	}
}

func TestStartParams(t *testing.T) {
	bomber := component.NewActorID()
	ids := map[string]component.ActorID{"bomber": bomber}

	cases := []struct {
		name  string
		start StartSpec
		check func(t *testing.T, p component.PerformanceParams)
	}{
		{
			name:  "explosion",
			start: StartSpec{Type: "Explosion", Attacker: "bomber", Normal: VecSpec{0, 1}, SourceMass: 75, Velocity: 10},
			check: func(t *testing.T, p component.PerformanceParams) {
				ex, ok := p.(component.ExplosionParams)
				if !ok {
					t.Fatalf("expected ExplosionParams, got %T", p)
				}
				if ex.AttackerID() != bomber || ex.Normal != (mgl64.Vec3{0, 1, 0}) || ex.Velocity != 10 {
					t.Fatalf("unexpected params %+v", ex)
				}
			},
		},
		{
			name:  "no_attacker",
			start: StartSpec{Type: "Gunshot"},
			check: func(t *testing.T, p component.PerformanceParams) {
				if p.Type() != component.PerformanceGunshot || p.AttackerID() != component.NoActor {
					t.Fatalf("unexpected params %+v", p)
				}
			},
		},
		{
			name:  "blend_position",
			start: StartSpec{Type: "Blend", InitialPosition: "Back"},
			check: func(t *testing.T, p component.PerformanceParams) {
				b := p.(component.BlendParams)
				if b.InitialPosition != component.GetupBack {
					t.Fatalf("expected Back, got %s", b.InitialPosition)
				}
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := c.start.Params(ids)
			if err != nil {
				t.Fatalf("params: %v", err)
			}
			c.check(t, p)
		})
	}

	if _, err := (&StartSpec{Type: "Punch", Attacker: "ghost"}).Params(ids); err == nil {
		t.Fatalf("expected unknown attacker error")
	}
	if _, err := (&StartSpec{Type: "Blend", InitialPosition: "Sideways"}).Params(ids); err == nil {
		t.Fatalf("expected unknown getup position error")
	}
}
