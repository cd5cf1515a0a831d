package ecs

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

func newSandbox(t *testing.T) (*PhysicsWorld, *SandboxActor) {
	t.Helper()
	pw := NewPhysicsWorld(nil)
	pw.AddGround(mgl64.Vec3{-50, 0, 0}, mgl64.Vec3{50, 0, 0})
	a := pw.SpawnActor(component.NewActorID(), mgl64.Vec3{0, 0.9, 0}, 1)
	return pw, a
}

func TestSandboxSupport(t *testing.T) {
	_, a := newSandbox(t)

	normal, ok := a.Support()
	if !ok {
		t.Fatalf("standing actor should be supported")
	}
	if normal.Dot(common.WorldUp) < 0.99 {
		t.Fatalf("expected an upward support normal, got %v", normal)
	}
	if !a.IsSupportedBelow(component.PartSpine0, 1.2) {
		t.Fatalf("pelvis should have ground within 1.2")
	}
	if a.IsSupportedBelow(component.PartHead, 0.5) {
		t.Fatalf("head should not have ground within 0.5")
	}
}

func TestSandboxPartTransforms(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		want  component.GetupPosition
	}{
		{"upright", 0, component.GetupUpright},
		{"on_back", math.Pi / 2, component.GetupBack},
		{"on_front", -math.Pi / 2, component.GetupFront},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, a := newSandbox(t)
			a.SetAngle(c.angle)
			m, ok := a.BodyPartTransform(component.PartSpine0)
			if !ok {
				t.Fatalf("spine transform missing")
			}
			up := common.BasisY(m)
			fwd := common.BasisZ(m)
			switch c.want {
			case component.GetupUpright:
				if up.Dot(common.WorldUp) < common.Cos45 {
					t.Fatalf("expected spine up, got %v", up)
				}
			case component.GetupBack:
				if fwd.Dot(common.WorldUp) < 0.99 {
					t.Fatalf("expected chest up, got %v", fwd)
				}
			case component.GetupFront:
				if fwd.Dot(common.WorldDown) < 0.99 {
					t.Fatalf("expected chest down, got %v", fwd)
				}
			}
		})
	}
}

func TestSandboxLineOfSight(t *testing.T) {
	pw, a := newSandbox(t)
	pw.AddGround(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{2, 3, 0})

	if a.LineOfSight(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{3, 1, 0}) {
		t.Fatalf("wall at x=2 should block sight")
	}
	if !a.LineOfSight(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 1, 0}) {
		t.Fatalf("short ray should be clear")
	}
	if !a.LineOfSight(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 5}) {
		t.Fatalf("ray without planar extent should be clear")
	}

	hit, ok := a.RayCast(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{4, 1, 0})
	if !ok {
		t.Fatalf("expected ray hit")
	}
	if math.Abs(hit.Distance-2) > 0.05 {
		t.Fatalf("expected hit near 2, got %v", hit.Distance)
	}
}

func TestSandboxEdges(t *testing.T) {
	pw, a := newSandbox(t)
	near := pw.AddEdge(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{1, 2, 0}, 0)
	pw.AddEdge(mgl64.Vec3{5, 2, 0}, mgl64.Vec3{6, 2, 0}, 0)

	got := a.FindEdgesInRadius(mgl64.Vec3{0.5, 2.1, 0}, 0.3, 1)
	if len(got) != 1 || got[0] != near {
		t.Fatalf("expected edge %d, got %v", near, got)
	}
	closest, dist := a.DistanceToEdge(near, mgl64.Vec3{0.5, 2.1, 0})
	if math.Abs(dist-0.1) > 1e-9 || math.Abs(closest.Y()-2) > 1e-9 {
		t.Fatalf("unexpected closest point %v at %v", closest, dist)
	}
	if len(a.FindEdgesInRadius(mgl64.Vec3{3, 2, 0}, 0.3, 1)) != 0 {
		t.Fatalf("no edge should be within reach")
	}
}

func TestSandboxOwnedEdgeFollowsBody(t *testing.T) {
	pw, a := newSandbox(t)
	platform := pw.AddBody(mgl64.Vec3{0, 5, 0}, 2, 0.2, 10, true)
	edge := pw.AddEdge(mgl64.Vec3{-1, 5.1, 0}, mgl64.Vec3{1, 5.1, 0}, platform)
	if a.EdgeOwner(edge) != platform {
		t.Fatalf("edge owner should be the platform")
	}

	pw.SetBodyVelocity(platform, mgl64.Vec3{1, 0, 0})
	for i := 0; i < 60; i++ {
		pw.Step(1.0 / 60)
	}
	start, _ := a.EdgePosition(edge)
	if math.Abs(start.X()-0) > 0.05 {
		t.Fatalf("edge start should have moved to x=0, got %v", start)
	}
}

func TestSandboxBehaviors(t *testing.T) {
	pw, a := newSandbox(t)

	if a.IsBehaviorActiveAndDriving() {
		t.Fatalf("fresh actor should not be driven")
	}
	data := &component.OverrideData{}
	data.Vectors[0] = mgl64.Vec3{0, 150, 0}
	data.Parts[0] = component.PartSpine0
	if !a.StartBehavior(component.BehaviorForceExplosion, data) {
		t.Fatalf("behavior should start")
	}
	if v := a.BodyPartVelocity(component.PartSpine0); v.Y() < 1.9 {
		t.Fatalf("impulse should launch the pelvis, got %v", v)
	}
	a.StopAllBehaviors()

	frame := &component.OverrideData{}
	frame.Ints[1] = 2
	a.StartBehavior(component.BehaviorBlendToFrame, frame)
	pw.Step(1.0 / 60)
	pw.Step(1.0 / 60)
	fb := pw.DrainFeedback()
	var done bool
	for _, f := range fb {
		if f.Kind == component.FeedbackBlendFrameDone && f.Actor == a.ID() {
			done = true
		}
	}
	if !done {
		t.Fatalf("expected blend frame done feedback, got %+v", fb)
	}

	a.RefuseBehavior(component.BehaviorHang)
	if a.StartBehavior(component.BehaviorHang, nil) {
		t.Fatalf("refused behavior should not start")
	}
	a.EndBehaviorControl()
	if a.IsBehaviorActiveAndDriving() {
		t.Fatalf("end of control should stop every behavior")
	}
}

func TestSandboxConstraintBreaks(t *testing.T) {
	pw, a := newSandbox(t)
	hand := a.partPosition(component.PartLeftMiddle0)

	c := a.CreateBallSocket(component.PartLeftMiddle0, mgl64.Vec3{}, 0, hand, 0.01)
	a.SetVelocity(mgl64.Vec3{0, -20, 0})
	pw.Step(1.0 / 60)
	if !c.Broken() {
		t.Fatalf("weak joint should saturate")
	}
	c.Destroy()
	c.Destroy()
	if !c.Broken() {
		t.Fatalf("destroyed joint reports broken")
	}
}
