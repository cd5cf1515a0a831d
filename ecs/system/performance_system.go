package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/ragdoll/ecs"
	"github.com/milk9111/ragdoll/ecs/component"
	"golang.org/x/sync/errgroup"
)

var (
	ErrActorNotFound      = errors.New("performance: actor not found")
	ErrActorCannotPerform = errors.New("performance: actor cannot run performances")
)

// MessageEvent is the world event type carrying a Message for the
// performance system.
const MessageEvent = "performance.message"

type MessageKind int

const (
	MessageStart MessageKind = iota
	MessageStop
	MessageAnimation
	MessageBehavior
)

func (k MessageKind) String() string {
	switch k {
	case MessageStart:
		return "start"
	case MessageStop:
		return "stop"
	case MessageAnimation:
		return "animation"
	case MessageBehavior:
		return "behavior"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

// Message is a request routed to one actor's controller. Only the fields
// matching Kind are read.
type Message struct {
	Actor component.ActorID
	Kind  MessageKind

	Params    component.PerformanceParams
	NameHash  uint32
	Feedback  component.Feedback
	Data      *component.OverrideData
	Collision *component.CollisionData
}

// PerformanceSystem owns a controller per actor entity and thinks them once
// per world update.
type PerformanceSystem struct {
	tuning   component.Tuning
	logger   *log.Logger
	verbose  bool
	workers  int
	takeover *ScriptTakeover
	actors   map[component.ActorID]ecs.Entity
}

// NewPerformanceSystem builds an empty manager. A nil logger uses
// log.Default.
func NewPerformanceSystem(tuning component.Tuning, logger *log.Logger) *PerformanceSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &PerformanceSystem{
		tuning:  tuning,
		logger:  logger,
		workers: 1,
		actors:  make(map[component.ActorID]ecs.Entity),
	}
}

// SetWorkers bounds how many controllers think concurrently. Values above
// one require services that are safe for concurrent use.
func (s *PerformanceSystem) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

func (s *PerformanceSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// SetTakeoverScript gives every controller in w, and every one created
// afterwards, its own clone of t. nil leaves EPA inert.
func (s *PerformanceSystem) SetTakeoverScript(w *ecs.World, t *ScriptTakeover) {
	s.takeover = t
	if w == nil {
		return
	}
	ecs.ForEach(w, ControllerComponent.Kind(), func(_ ecs.Entity, c *Controller) {
		if t == nil {
			c.SetTakeover(nil)
			return
		}
		c.SetTakeover(t.Clone())
	})
}

// CreateActor attaches a controller to a new entity for id. The game must
// report that the actor can run performances.
func (s *PerformanceSystem) CreateActor(w *ecs.World, id component.ActorID, name string, services component.Services) (ecs.Entity, error) {
	if e, ok := s.actors[id]; ok && ecs.IsAlive(w, e) {
		return e, nil
	}
	if services.Game == nil || !services.Game.CanRunPerformances() {
		return 0, fmt.Errorf("create %s: %w", id, ErrActorCannotPerform)
	}

	c := NewController(id, services, s.tuning, s.logger)
	c.SetVerbose(s.verbose)
	if s.takeover != nil {
		c.SetTakeover(s.takeover.Clone())
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.ActorComponent.Kind(), &component.Actor{ID: id, Name: name}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("create %s: %w", id, err)
	}
	if err := ecs.Add(w, e, ControllerComponent.Kind(), c); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("create %s: %w", id, err)
	}
	s.actors[id] = e
	return e, nil
}

// Controller returns the controller of an actor.
func (s *PerformanceSystem) Controller(w *ecs.World, id component.ActorID) (*Controller, error) {
	e, ok := s.actors[id]
	if !ok || !ecs.IsAlive(w, e) {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrActorNotFound)
	}
	c, ok := ecs.Get(w, e, ControllerComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrActorNotFound)
	}
	return c, nil
}

// DestroyActor stops the actor's performance and removes its entity.
func (s *PerformanceSystem) DestroyActor(w *ecs.World, id component.ActorID) error {
	c, err := s.Controller(w, id)
	if err != nil {
		return err
	}
	c.Destroy()
	ecs.DestroyEntity(w, s.actors[id])
	delete(s.actors, id)
	return nil
}

func (s *PerformanceSystem) DestroyAll(w *ecs.World) {
	for id := range s.actors {
		if err := s.DestroyActor(w, id); err != nil {
			delete(s.actors, id)
		}
	}
}

// Actors returns the number of managed actors.
func (s *PerformanceSystem) Actors() int {
	return len(s.actors)
}

// HandleMessage routes msg to its actor's controller.
func (s *PerformanceSystem) HandleMessage(w *ecs.World, msg Message) error {
	c, err := s.Controller(w, msg.Actor)
	if err != nil {
		return err
	}
	switch msg.Kind {
	case MessageStart:
		if msg.Params == nil {
			return fmt.Errorf("performance: start message for %s without params", msg.Actor)
		}
		c.StartPerformance(msg.Params)
	case MessageStop:
		c.StopPerformance()
	case MessageAnimation:
		c.HandleAnimationEvent(msg.NameHash)
	case MessageBehavior:
		c.HandleBehaviorEvent(msg.Feedback, msg.Data, msg.Collision)
	default:
		return fmt.Errorf("performance: unknown message kind %s", msg.Kind)
	}
	return nil
}

// Send queues msg on the world for the next Update.
func Send(w *ecs.World, msg Message) {
	w.Events().Push(ecs.Event{Type: MessageEvent, Data: msg})
}

// Update drains queued messages, then thinks every controller.
func (s *PerformanceSystem) Update(w *ecs.World, dt float64) {
	for _, evt := range w.Events().DrainType(MessageEvent) {
		msg, ok := evt.Data.(Message)
		if !ok {
			s.logger.Printf("performance: dropping event with %T payload", evt.Data)
			continue
		}
		if err := s.HandleMessage(w, msg); err != nil {
			s.logger.Printf("performance: %s message: %v", msg.Kind, err)
		}
	}
	s.ThinkAll(w, dt)
}

// ThinkAll advances every controller by dt.
func (s *PerformanceSystem) ThinkAll(w *ecs.World, dt float64) {
	var controllers []*Controller
	ecs.ForEach(w, ControllerComponent.Kind(), func(_ ecs.Entity, c *Controller) {
		controllers = append(controllers, c)
	})

	if s.workers <= 1 || len(controllers) <= 1 {
		for _, c := range controllers {
			c.Think(dt)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, c := range controllers {
		c := c
		g.Go(func() error {
			c.Think(dt)
			return nil
		})
	}
	_ = g.Wait()
}

// ApplyTuning replaces the tuning on every controller and on actors
// created later.
func (s *PerformanceSystem) ApplyTuning(w *ecs.World, tuning component.Tuning) {
	s.tuning = tuning
	ecs.ForEach(w, ControllerComponent.Kind(), func(_ ecs.Entity, c *Controller) {
		c.ApplyTuning(tuning)
	})
}
