package system

import (
	"fmt"

	"github.com/milk9111/ragdoll/ecs/component"
)

// stateID indexes a performance's state table.
type stateID int

const noTransition stateID = -1

// stateDef is one row of a state table. Nil handlers are no-ops.
type stateDef[P any] struct {
	name    string
	enter   func(P)
	update  func(P) stateID
	exit    func(P)
	onEvent func(P, component.Event) stateID
}

// stateTable is built once at package init and never mutated afterwards,
// so every machine of a kind can share it.
type stateTable[P any] struct {
	name    string
	states  []stateDef[P]
	initial stateID
	cleanup stateID
}

func newStateTable[P any](name string, initial, cleanup stateID, states []stateDef[P]) *stateTable[P] {
	if len(states) == 0 {
		panic("fsm: " + name + ": no states")
	}
	if !validState(initial, len(states)) || !validState(cleanup, len(states)) {
		panic(fmt.Sprintf("fsm: %s: initial %d or cleanup %d out of range", name, initial, cleanup))
	}
	for i, s := range states {
		if s.name == "" {
			panic(fmt.Sprintf("fsm: %s: state %d has no name", name, i))
		}
	}
	return &stateTable[P]{
		name:    name,
		states:  append([]stateDef[P](nil), states...),
		initial: initial,
		cleanup: cleanup,
	}
}

func validState(id stateID, n int) bool {
	return id >= 0 && int(id) < n
}

func (t *stateTable[P]) stateName(id stateID) string {
	if !validState(id, len(t.states)) {
		return fmt.Sprintf("state(%d)", id)
	}
	return t.states[id].name
}

// transitionHook observes state changes; the controller uses it for tracing.
type transitionHook func(machine, from, to string)

// stateMachine runs one performance instance over a shared table.
type stateMachine[P any] struct {
	table       *stateTable[P]
	owner       P
	current     stateID
	timeInState float64
	// serial counts transitions so a handler that transitions the machine
	// itself (through Stop) cancels the result it returns.
	serial uint64
	hook   transitionHook
}

func newStateMachine[P any](table *stateTable[P], owner P) stateMachine[P] {
	return stateMachine[P]{table: table, owner: owner, current: table.initial}
}

func (m *stateMachine[P]) CurrentName() string {
	return m.table.stateName(m.current)
}

func (m *stateMachine[P]) TimeInState() float64 {
	return m.timeInState
}

// ManualTransition exits the current state and enters to regardless of any
// predicate.
func (m *stateMachine[P]) ManualTransition(to stateID) {
	if !validState(to, len(m.table.states)) {
		panic(fmt.Sprintf("fsm: %s: transition to unknown state %d", m.table.name, to))
	}
	from := m.current
	m.serial++
	if exit := m.table.states[from].exit; exit != nil {
		exit(m.owner)
	}
	m.current = to
	m.timeInState = 0
	if m.hook != nil {
		m.hook(m.table.name, m.table.stateName(from), m.table.stateName(to))
	}
	if enter := m.table.states[to].enter; enter != nil {
		enter(m.owner)
	}
}

// Advance accumulates time in the current state and runs its update.
func (m *stateMachine[P]) Advance(dt float64) {
	m.timeInState += dt
	update := m.table.states[m.current].update
	if update == nil {
		return
	}
	serial := m.serial
	next := update(m.owner)
	if next == noTransition || serial != m.serial {
		return
	}
	m.ManualTransition(next)
}

// OnEvent offers ev to the current state. Unmapped events are ignored.
func (m *stateMachine[P]) OnEvent(ev component.Event) {
	if ev.Type == component.EventInvalid {
		return
	}
	onEvent := m.table.states[m.current].onEvent
	if onEvent == nil {
		return
	}
	serial := m.serial
	next := onEvent(m.owner, ev)
	if next == noTransition || serial != m.serial {
		return
	}
	m.ManualTransition(next)
}

// performance holds what every performance kind shares: the non-owning
// controller reference and the stationary thresholds from tuning. The
// controller outlives every performance it creates.
type performance struct {
	owner    *Controller
	settings component.PerformanceSettings
}

func (p *performance) Initialize(settings component.PerformanceSettings) {
	p.settings = settings
}

// applyStationaryTimer pushes this kind's thresholds to the controller.
func (p *performance) applyStationaryTimer() {
	p.owner.SetStationaryTimer(p.settings.StationarySpeedThreshold, p.settings.StationaryWaitTime)
}

func (p *performance) anim() component.Animation {
	return p.owner.services.Animation
}

func (p *performance) phys() component.Physics {
	return p.owner.services.Physics
}

// mustStart starts b and panics when the animation layer refuses it.
func (p *performance) mustStart(b component.Behavior, data *component.OverrideData) {
	if !p.anim().StartBehavior(b, data) {
		panic("performance: behavior failed to start: " + string(b))
	}
}

// cleanupToIdle is the shared CLEANUP update.
func cleanupToIdle[P any](idle stateID) func(P) stateID {
	return func(P) stateID { return idle }
}
