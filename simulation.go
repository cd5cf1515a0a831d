package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/ragdoll/ecs"
	"github.com/milk9111/ragdoll/ecs/component"
	"github.com/milk9111/ragdoll/ecs/system"
	"github.com/milk9111/ragdoll/prefabs"
)

type simOptions struct {
	workers int
	verbose bool
	logger  *log.Logger
}

// simulation plays one scenario against the sandbox.
type simulation struct {
	spec    *prefabs.ScenarioSpec
	world   *ecs.World
	physics *ecs.PhysicsWorld
	perf    *system.PerformanceSystem
	logger  *log.Logger
	verbose bool
	tuning  component.Tuning

	ids     map[string]component.ActorID
	names   map[component.ActorID]string
	actors  []component.ActorID
	next    int
	elapsed float64

	last    map[component.ActorID]string
	history []string
}

func newSimulation(spec *prefabs.ScenarioSpec, tuning component.Tuning, opts simOptions) (*simulation, error) {
	if opts.logger == nil {
		opts.logger = log.Default()
	}
	physicsLogger := opts.logger
	if !opts.verbose {
		physicsLogger = nil
	}

	s := &simulation{
		spec:    spec,
		world:   ecs.NewWorld(),
		physics: ecs.NewPhysicsWorld(physicsLogger),
		perf:    system.NewPerformanceSystem(tuning, opts.logger),
		logger:  opts.logger,
		verbose: opts.verbose,
		tuning:  tuning,
		ids:     make(map[string]component.ActorID, len(spec.Actors)),
		names:   make(map[component.ActorID]string, len(spec.Actors)),
		last:    make(map[component.ActorID]string, len(spec.Actors)),
	}
	s.perf.SetWorkers(opts.workers)
	s.perf.SetVerbose(opts.verbose)
	if err := s.reloadTakeover(); err != nil {
		return nil, err
	}

	for _, g := range spec.Ground {
		s.physics.AddGround(g.From.Vec3(), g.To.Vec3())
	}
	bodies := make(map[string]component.BodyRef, len(spec.Bodies))
	for _, b := range spec.Bodies {
		ref := s.physics.AddBody(b.Position.Vec3(), b.Width, b.Height, b.Mass, b.Kinematic)
		s.physics.SetBodyVelocity(ref, b.Velocity.Vec3())
		bodies[b.Name] = ref
	}
	for _, e := range spec.Edges {
		s.physics.AddEdge(e.From.Vec3(), e.To.Vec3(), bodies[e.Owner])
	}

	for _, a := range spec.Actors {
		id := component.NewActorID()
		s.ids[a.Name] = id
		s.names[id] = a.Name

		actor := s.physics.SpawnActor(id, a.Position.Vec3(), a.Facing)
		if a.Angle != 0 {
			actor.SetAngle(a.Angle)
		}
		actor.SetVelocity(a.Velocity.Vec3())
		actor.SetDead(a.Dead)
		actor.SetCanPerform(!a.Inert)
		actor.SetAgentAvailable(!a.NoAgent)
		if _, err := s.perf.CreateActor(s.world, id, a.Name, actor.Services()); err != nil {
			if errors.Is(err, system.ErrActorCannotPerform) {
				continue
			}
			return nil, fmt.Errorf("scenario %s: actor %s: %w", spec.Name, a.Name, err)
		}
		s.actors = append(s.actors, id)
	}

	s.world.SetPhysicsWorld(s.physics)
	s.world.AddSystem(s)
	s.world.AddSystem(system.NewPhysicsSystem())
	s.world.AddSystem(s.perf)
	return s, nil
}

// reloadTakeover compiles the EPA takeover named by the current tuning.
func (s *simulation) reloadTakeover() error {
	name := s.tuning.EPA.TakeoverScript
	if name == "" {
		s.perf.SetTakeoverScript(s.world, nil)
		return nil
	}
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return fmt.Errorf("load takeover %s: %w", name, err)
	}
	t, err := system.NewScriptTakeover(name, src)
	if err != nil {
		return err
	}
	s.perf.SetTakeoverScript(s.world, t)
	return nil
}

func (s *simulation) applyTuning(tuning component.Tuning) error {
	s.tuning = tuning
	s.perf.ApplyTuning(s.world, tuning)
	return s.reloadTakeover()
}

// Update plays the stimuli that are due. It runs first in the world's
// system order.
func (s *simulation) Update(w *ecs.World, dt float64) {
	s.elapsed += dt
	for s.next < len(s.spec.Stimuli) && s.spec.Stimuli[s.next].At <= s.elapsed+1e-9 {
		st := s.spec.Stimuli[s.next]
		s.next++
		msg, err := s.message(st)
		if err != nil {
			s.logger.Printf("t=%.2f stimulus for %s: %v", s.elapsed, st.Actor, err)
			continue
		}
		system.Send(w, msg)
	}
}

func (s *simulation) message(st prefabs.StimulusSpec) (system.Message, error) {
	msg := system.Message{Actor: s.ids[st.Actor]}
	switch {
	case st.Start != nil:
		params, err := st.Start.Params(s.ids)
		if err != nil {
			return msg, err
		}
		msg.Kind = system.MessageStart
		msg.Params = params
	case st.Stop:
		msg.Kind = system.MessageStop
	case st.Feedback != "":
		t, ok := component.ParseEventType(st.Feedback)
		if !ok {
			return msg, fmt.Errorf("unknown feedback %q", st.Feedback)
		}
		fb, ok := component.FeedbackFor(t)
		if !ok {
			return msg, fmt.Errorf("%q is not behavior feedback", st.Feedback)
		}
		msg.Kind = system.MessageBehavior
		msg.Feedback = fb
	case st.Animation != "":
		msg.Kind = system.MessageAnimation
		msg.NameHash = component.HashName(st.Animation)
	default:
		return msg, fmt.Errorf("empty stimulus")
	}
	return msg, nil
}

// Step advances the scene by dt and reports performance changes.
func (s *simulation) Step(dt float64) {
	s.world.Update(dt)
	s.report()
}

// Done reports whether the scenario has played out. Scenarios without a
// duration end once every stimulus has fired and every actor is idle.
func (s *simulation) Done() bool {
	if s.spec.Duration > 0 {
		return s.elapsed >= s.spec.Duration
	}
	if s.next < len(s.spec.Stimuli) {
		return false
	}
	for _, id := range s.actors {
		if c, err := s.perf.Controller(s.world, id); err == nil && c.Active() != nil {
			return false
		}
	}
	return true
}

func (s *simulation) report() {
	for _, id := range s.actors {
		c, err := s.perf.Controller(s.world, id)
		if err != nil {
			continue
		}
		state := "idle"
		if p := c.Active(); p != nil {
			state = p.Type().String() + "/" + p.State()
		}
		if s.last[id] == state {
			continue
		}
		s.last[id] = state
		entry := s.names[id] + " " + state
		s.history = append(s.history, entry)
		s.logger.Printf("t=%.2f %s", s.elapsed, entry)
		if actor, ok := s.physics.Actor(id); ok && s.verbose {
			s.logger.Printf("t=%.2f %s behaviors=%v block=%q", s.elapsed, s.names[id], actor.ActiveBehaviors(), actor.Block())
		}
	}
}

// Close stops every performance and removes the actors.
func (s *simulation) Close() {
	s.perf.DestroyAll(s.world)
}
