package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	hitReactIdle stateID = iota
	hitReactReact
	hitReactCrunch
	hitReactImpact
	hitReactCleanup
)

const (
	hitReactMomentumTolerance = -1.0
	hitReactRecoverDelay      = 0.5
	hitReactCrunchDelay       = 0.3
)

var hitReactStates = newStateTable("HitReact", hitReactIdle, hitReactCleanup, []stateDef[*HitReactPerformance]{
	hitReactIdle: {name: "IDLE"},
	hitReactReact: {
		name:    "REACT",
		enter:   (*HitReactPerformance).enterReact,
		update:  (*HitReactPerformance).updateReact,
		exit:    (*HitReactPerformance).exitReact,
		onEvent: (*HitReactPerformance).onEventReact,
	},
	hitReactCrunch: {
		name:   "CRUNCH",
		enter:  (*HitReactPerformance).enterCrunch,
		update: (*HitReactPerformance).updateCrunch,
		exit:   (*HitReactPerformance).exitCrunch,
	},
	hitReactImpact:  {name: "IMPACT", enter: (*HitReactPerformance).enterImpact, exit: (*HitReactPerformance).exitImpact},
	hitReactCleanup: {name: "CLEANUP", enter: (*HitReactPerformance).enterCleanup, update: cleanupToIdle[*HitReactPerformance](hitReactIdle)},
})

// HitReactPerformance absorbs a melee hit. A hard enough blow crunches the
// body before it settles.
type HitReactPerformance struct {
	performance
	machine stateMachine[*HitReactPerformance]
	params  component.HitReactParams

	// recoverTransfer is set by a transfer-in event and cleared every tick.
	recoverTransfer  bool
	recoverStartTime float64
}

func newHitReactPerformance(owner *Controller) *HitReactPerformance {
	p := &HitReactPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(hitReactStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *HitReactPerformance) Type() component.PerformanceType { return component.PerformanceHitReact }
func (p *HitReactPerformance) State() string                   { return p.machine.CurrentName() }

func (p *HitReactPerformance) SetParams(params component.HitReactParams) {
	p.params = params
}

func (p *HitReactPerformance) Start()                     { p.machine.ManualTransition(hitReactReact) }
func (p *HitReactPerformance) Stop()                      { p.machine.ManualTransition(hitReactCleanup) }
func (p *HitReactPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *HitReactPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *HitReactPerformance) enterReact() {
	anim := p.anim()
	anim.StartBehavior(component.BehaviorReactHitReact, nil)
	anim.StartBehavior(component.BehaviorTransferHitReact, nil)
	p.owner.SetTruncateMovementEnable(false)
	p.owner.DisableRecovery()
	p.recoverTransfer = false
	p.recoverStartTime = 0
}

// updateReact cleans up once transfer-in feedback has arrived every tick for
// longer than the recover delay.
func (p *HitReactPerformance) updateReact() stateID {
	now := p.machine.TimeInState()
	if !p.recoverTransfer {
		p.recoverStartTime = now
	}
	if now-p.recoverStartTime > hitReactRecoverDelay {
		return hitReactCleanup
	}
	p.recoverTransfer = false
	return noTransition
}

func (p *HitReactPerformance) exitReact() {
	anim := p.anim()
	anim.StopBehavior(component.BehaviorReactHitReact)
	anim.StopBehavior(component.BehaviorTransferHitReact)
	p.owner.SetTruncateMovementEnable(true)
}

func (p *HitReactPerformance) onEventReact(ev component.Event) stateID {
	switch ev.Type {
	case component.EventMotionTransferIn:
		p.recoverTransfer = true
	case component.EventMotionTransferOut:
		if p.incomingMomentum() > hitReactMomentumTolerance {
			return hitReactCrunch
		}
	}
	return noTransition
}

func (p *HitReactPerformance) incomingMomentum() float64 {
	game := p.owner.services.Game
	return game.ActorSpeed(p.params.AttackerID()) * game.ActorMass(p.params.AttackerID())
}

func (p *HitReactPerformance) enterCrunch() {
	p.anim().StartBehavior(component.BehaviorCrunchHitReact, nil)
}

func (p *HitReactPerformance) updateCrunch() stateID {
	if p.machine.TimeInState() > hitReactCrunchDelay {
		return hitReactImpact
	}
	return noTransition
}

func (p *HitReactPerformance) exitCrunch() {
	p.anim().StopBehavior(component.BehaviorCrunchHitReact)
}

func (p *HitReactPerformance) enterImpact() {
	p.anim().StartBehavior(component.BehaviorImpactHitReact, nil)
	p.owner.EnableRecovery()
	p.applyStationaryTimer()
}

func (p *HitReactPerformance) exitImpact() {
	p.anim().StopBehavior(component.BehaviorImpactHitReact)
}

func (p *HitReactPerformance) enterCleanup() {
	anim := p.anim()
	anim.StopAllBehaviors()
	anim.EndBehaviorControl()
	p.owner.EnableRecovery()
}
