package system

import (
	"github.com/milk9111/ragdoll/ecs"
)

// PhysicsSystem steps the world's sandbox and queues the behavior feedback
// it produced as performance messages. Schedule it before the
// PerformanceSystem so feedback is handled in the same update.
type PhysicsSystem struct {
	steps int
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{}
}

// Steps reports how many times the sandbox has been advanced.
func (s *PhysicsSystem) Steps() int {
	return s.steps
}

func (s *PhysicsSystem) Update(w *ecs.World, dt float64) {
	pw := w.PhysicsWorld()
	if pw == nil || dt <= 0 {
		return
	}
	pw.Step(dt)
	s.steps++

	for _, fb := range pw.DrainFeedback() {
		Send(w, Message{
			Actor:     fb.Actor,
			Kind:      MessageBehavior,
			Feedback:  fb.Kind,
			Data:      fb.Data,
			Collision: fb.Collision,
		})
	}
}
