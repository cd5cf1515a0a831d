package system

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/ecs"
	"github.com/milk9111/ragdoll/ecs/component"
)

func newTestSystem() (*ecs.World, *PerformanceSystem) {
	tuning := component.DefaultTuning()
	tuning.Controller.StuckTimeout = 0
	s := NewPerformanceSystem(tuning, log.New(io.Discard, "", 0))
	w := ecs.NewWorld()
	w.AddSystem(s)
	return w, s
}

func TestCreateActor(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()

	e, err := s.CreateActor(w, r.id, "alpha", r.services())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	again, err := s.CreateActor(w, r.id, "alpha", r.services())
	if err != nil || again != e {
		t.Fatalf("expected the existing entity back, got %v, %v", again, err)
	}
	if s.Actors() != 1 {
		t.Fatalf("expected one actor, got %d", s.Actors())
	}
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Name != "alpha" || actor.ID != r.id {
		t.Fatalf("unexpected actor component %+v", actor)
	}
	if c, err := s.Controller(w, r.id); err != nil || c.Actor() != r.id {
		t.Fatalf("expected controller for %s, got %v", r.id, err)
	}
}

func TestCreateActorRefused(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	r.game.cannot = true

	if _, err := s.CreateActor(w, r.id, "beta", r.services()); !errors.Is(err, ErrActorCannotPerform) {
		t.Fatalf("expected ErrActorCannotPerform, got %v", err)
	}
	services := r.services()
	services.Game = nil
	if _, err := s.CreateActor(w, r.id, "beta", services); !errors.Is(err, ErrActorCannotPerform) {
		t.Fatalf("expected ErrActorCannotPerform without a game, got %v", err)
	}
	if s.Actors() != 0 {
		t.Fatalf("expected no actors, got %d", s.Actors())
	}
}

func TestUnknownActor(t *testing.T) {
	w, s := newTestSystem()
	id := component.NewActorID()

	if _, err := s.Controller(w, id); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
	if err := s.DestroyActor(w, id); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
	if err := s.HandleMessage(w, Message{Actor: id, Kind: MessageStop}); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}

func TestMessagesRouteThroughUpdate(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	if _, err := s.CreateActor(w, r.id, "gamma", r.services()); err != nil {
		t.Fatalf("create: %v", err)
	}
	c, _ := s.Controller(w, r.id)

	Send(w, Message{Actor: r.id, Kind: MessageStart, Params: component.ThrowParams{}})
	if c.Active() != nil {
		t.Fatalf("expected the message to wait for the update")
	}
	w.Update(0.25)
	mustActive(t, c, component.PerformanceThrow)

	Send(w, Message{Actor: r.id, Kind: MessageAnimation, NameHash: component.AnimationEndHash})
	w.Update(0.1)
	mustState(t, c.Performance(component.PerformanceThrow), "BREAK")

	Send(w, Message{Actor: r.id, Kind: MessageBehavior, Feedback: component.FeedbackCollision})
	w.Update(0.1)
	mustState(t, c.Performance(component.PerformanceThrow), "CRUNCH")

	Send(w, Message{Actor: r.id, Kind: MessageStop})
	w.Update(0.1)
	if c.Active() != nil {
		t.Fatalf("expected stop message to clear the slot")
	}
}

func TestHandleMessageRejectsMalformed(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	if _, err := s.CreateActor(w, r.id, "delta", r.services()); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.HandleMessage(w, Message{Actor: r.id, Kind: MessageStart}); err == nil {
		t.Fatalf("expected error for start without params")
	}
	if err := s.HandleMessage(w, Message{Actor: r.id, Kind: MessageKind(42)}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDestroyActor(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	e, err := s.CreateActor(w, r.id, "eps", r.services())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, _ := s.Controller(w, r.id)
	c.StartPerformance(component.ShoveParams{})

	if err := s.DestroyActor(w, r.id); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if ecs.IsAlive(w, e) {
		t.Fatalf("expected entity destroyed")
	}
	if r.anim.ended != 1 {
		t.Fatalf("expected active performance stopped, got %d", r.anim.ended)
	}
	if s.Actors() != 0 {
		t.Fatalf("expected no actors left")
	}
}

func TestThinkAllWorkers(t *testing.T) {
	for _, workers := range []int{1, 4} {
		w, s := newTestSystem()
		s.SetWorkers(workers)

		var rigs []*rig
		for i := 0; i < 8; i++ {
			r := newRig()
			if _, err := s.CreateActor(w, r.id, "crowd", r.services()); err != nil {
				t.Fatalf("create: %v", err)
			}
			Send(w, Message{Actor: r.id, Kind: MessageStart, Params: component.GunshotParams{}})
			rigs = append(rigs, r)
		}

		w.Update(0.1)
		w.Update(0.1)
		for _, r := range rigs {
			c, _ := s.Controller(w, r.id)
			mustActive(t, c, component.PerformanceFalling)
		}

		s.DestroyAll(w)
		if s.Actors() != 0 {
			t.Fatalf("workers=%d: expected every actor destroyed", workers)
		}
		if n := len(ecs.Entities(w)); n != 0 {
			t.Fatalf("workers=%d: expected no entities, got %d", workers, n)
		}
	}
}

func TestApplyTuning(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	if _, err := s.CreateActor(w, r.id, "zeta", r.services()); err != nil {
		t.Fatalf("create: %v", err)
	}

	tuning := component.DefaultTuning()
	tuning.Controller.ConstraintBreakThreshold = 250
	s.ApplyTuning(w, tuning)

	c, _ := s.Controller(w, r.id)
	c.ConstrainLimb(component.ArmLeft, 0, r.anim.transforms[component.PartSpine0].Col(3).Vec3())
	if got := r.cons.created[0].threshold; got != 250 {
		t.Fatalf("expected retuned break threshold, got %v", got)
	}

	late := newRig()
	if _, err := s.CreateActor(w, late.id, "eta", late.services()); err != nil {
		t.Fatalf("create: %v", err)
	}
	lc, _ := s.Controller(w, late.id)
	lc.ConstrainLimb(component.ArmLeft, 0, late.anim.transforms[component.PartSpine0].Col(3).Vec3())
	if got := late.cons.created[0].threshold; got != 250 {
		t.Fatalf("expected new actors to use the applied tuning, got %v", got)
	}
}

func TestSetTakeoverScript(t *testing.T) {
	w, s := newTestSystem()
	r := newRig()
	if _, err := s.CreateActor(w, r.id, "theta", r.services()); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.SetTakeoverScript(w, loadTakeover(t))

	c, _ := s.Controller(w, r.id)
	c.StartPerformance(component.EPAParams{})
	r.anim.velocities[component.PartSpine0] = mgl64.Vec3{0, -3, 0}
	w.Update(0.1)
	mustActive(t, c, component.PerformanceFalling)
}
