package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	shoveIdle stateID = iota
	shoveStaggering
	shoveFalling
	shoveCleanup
)

var shoveStates = newStateTable("Shove", shoveIdle, shoveCleanup, []stateDef[*ShovePerformance]{
	shoveIdle: {name: "IDLE"},
	shoveStaggering: {
		name:    "STAGGERING",
		enter:   (*ShovePerformance).enterStaggering,
		exit:    (*ShovePerformance).exitStaggering,
		onEvent: (*ShovePerformance).onEventStaggering,
	},
	shoveFalling: {name: "FALLING", enter: (*ShovePerformance).enterFalling, exit: (*ShovePerformance).exitFalling},
	shoveCleanup: {name: "CLEANUP", enter: (*ShovePerformance).enterCleanup, update: cleanupToIdle[*ShovePerformance](shoveIdle)},
})

// ShovePerformance staggers the actor and catches the fall if it trips.
type ShovePerformance struct {
	performance
	machine stateMachine[*ShovePerformance]
	params  component.ShoveParams
}

func newShovePerformance(owner *Controller) *ShovePerformance {
	p := &ShovePerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(shoveStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *ShovePerformance) Type() component.PerformanceType { return component.PerformanceShove }
func (p *ShovePerformance) State() string                   { return p.machine.CurrentName() }

func (p *ShovePerformance) SetParams(params component.ShoveParams) {
	p.params = params
}

func (p *ShovePerformance) Start()                     { p.machine.ManualTransition(shoveStaggering) }
func (p *ShovePerformance) Stop()                      { p.machine.ManualTransition(shoveCleanup) }
func (p *ShovePerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *ShovePerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

// enterStaggering starts the stagger with no step bias.
func (p *ShovePerformance) enterStaggering() {
	p.applyStationaryTimer()
	data := &component.OverrideData{}
	p.anim().StartBehavior(component.BehaviorStaggerShoved, data)
}

func (p *ShovePerformance) exitStaggering() {
	p.anim().StopBehavior(component.BehaviorStaggerShoved)
}

func (p *ShovePerformance) onEventStaggering(ev component.Event) stateID {
	if ev.Type == component.EventStaggerTrip {
		return shoveFalling
	}
	return noTransition
}

func (p *ShovePerformance) enterFalling() {
	p.anim().StartBehavior(component.BehaviorCatchFallShoved, nil)
}

func (p *ShovePerformance) exitFalling() {
	p.anim().StopBehavior(component.BehaviorCatchFallShoved)
}

func (p *ShovePerformance) enterCleanup() {
	p.anim().StopAllBehaviors()
}
