package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	gunshotIdle stateID = iota
	gunshotFalling
	gunshotCleanup
)

var gunshotStates = newStateTable("Gunshot", gunshotIdle, gunshotCleanup, []stateDef[*GunshotPerformance]{
	gunshotIdle:    {name: "IDLE"},
	gunshotFalling: {name: "FALLING", update: (*GunshotPerformance).updateFalling},
	gunshotCleanup: {name: "CLEANUP", update: cleanupToIdle[*GunshotPerformance](gunshotIdle)},
})

// GunshotPerformance hands the actor straight to Falling on its first tick.
type GunshotPerformance struct {
	performance
	machine stateMachine[*GunshotPerformance]
	params  component.GunshotParams
}

func newGunshotPerformance(owner *Controller) *GunshotPerformance {
	p := &GunshotPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(gunshotStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *GunshotPerformance) Type() component.PerformanceType { return component.PerformanceGunshot }
func (p *GunshotPerformance) State() string                   { return p.machine.CurrentName() }

func (p *GunshotPerformance) SetParams(params component.GunshotParams) {
	p.params = params
}

func (p *GunshotPerformance) Start()                     { p.machine.ManualTransition(gunshotFalling) }
func (p *GunshotPerformance) Stop()                      { p.machine.ManualTransition(gunshotCleanup) }
func (p *GunshotPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *GunshotPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

// updateFalling re-dispatches the controller. The fall is not attributed to
// the shooter.
func (p *GunshotPerformance) updateFalling() stateID {
	p.owner.StartPerformance(component.FallingParams{Attacker: component.Attacker{Attacker: component.NoActor}})
	return noTransition
}
