package system

import (
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	punchIdle stateID = iota
	punchOnFeet
	punchFalling
	punchCleanup
)

const (
	punchSpread        = 0.1
	punchCounterScale  = 4.0
	punchCounterSpread = 0.3
	punchCounterTime   = 0.3
)

var punchStates = newStateTable("Punch", punchIdle, punchCleanup, []stateDef[*PunchPerformance]{
	punchIdle:    {name: "IDLE"},
	punchOnFeet:  {name: "ON_FEET", enter: (*PunchPerformance).enterOnFeet, onEvent: (*PunchPerformance).onEventOnFeet},
	punchFalling: {name: "FALLING", enter: (*PunchPerformance).enterFalling},
	punchCleanup: {name: "CLEANUP", update: cleanupToIdle[*PunchPerformance](punchIdle)},
})

// PunchPerformance staggers the actor from a blow to one body part, braced
// by a counter impulse on the root so the body does not fold.
type PunchPerformance struct {
	performance
	machine stateMachine[*PunchPerformance]
	params  component.PunchParams
}

func newPunchPerformance(owner *Controller) *PunchPerformance {
	p := &PunchPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(punchStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *PunchPerformance) Type() component.PerformanceType { return component.PerformancePunch }
func (p *PunchPerformance) State() string                   { return p.machine.CurrentName() }

func (p *PunchPerformance) SetParams(params component.PunchParams) {
	p.params = params
}

func (p *PunchPerformance) Start()                     { p.machine.ManualTransition(punchOnFeet) }
func (p *PunchPerformance) Stop()                      { p.machine.ManualTransition(punchCleanup) }
func (p *PunchPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *PunchPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *PunchPerformance) enterOnFeet() {
	p.applyStationaryTimer()
	anim := p.anim()

	data := &component.OverrideData{}
	data.Vectors[0] = p.params.ForceNormal.Mul(p.params.ForceMagnitude)
	data.Floats[0] = punchSpread
	data.Floats[1] = 0
	data.Bools[0] = false
	data.Parts[0] = p.params.ImpactBone
	data.Vectors[1] = common.WorldUp
	data.Floats[2] = 0
	anim.StartBehavior(component.BehaviorPunch, data)

	toImpact := p.owner.partPosition(p.params.ImpactBone).Sub(p.owner.partPosition(component.PartSpine3))
	data.Reset()
	data.Vectors[0] = common.SafeNormalize(toImpact).Mul(punchCounterScale)
	data.Floats[0] = punchCounterSpread
	data.Floats[1] = punchCounterTime
	data.Bools[0] = false
	data.Parts[0] = component.PartRoot
	data.Vectors[1] = common.WorldUp
	data.Floats[2] = 0
	anim.StartBehavior(component.BehaviorPunch, data)

	anim.StartBehavior(component.BehaviorStaggerPunch, nil)
}

func (p *PunchPerformance) onEventOnFeet(ev component.Event) stateID {
	switch ev.Type {
	case component.EventStaggerTrip, component.EventStaggerMaxSteps:
		return punchFalling
	}
	return noTransition
}

func (p *PunchPerformance) enterFalling() {
	p.anim().StartBehavior(component.BehaviorFallPunch, nil)
}
