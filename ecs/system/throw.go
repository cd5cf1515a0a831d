package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	throwIdle stateID = iota
	throwFly
	throwBreak
	throwCrunch
	throwImpact
	throwCleanup
)

const (
	throwCollisionDelay = 0.2
	throwTransferDelay  = 0.1
	throwCrunchDelay    = 0.3
)

var throwStates = newStateTable("Throw", throwIdle, throwCleanup, []stateDef[*ThrowPerformance]{
	throwIdle: {name: "IDLE"},
	throwFly: {
		name:    "FLY",
		enter:   (*ThrowPerformance).enterFly,
		update:  (*ThrowPerformance).updateFly,
		exit:    (*ThrowPerformance).exitFly,
		onEvent: (*ThrowPerformance).onEventFly,
	},
	throwBreak: {
		name:    "BREAK",
		enter:   (*ThrowPerformance).enterBreak,
		update:  (*ThrowPerformance).updateBreak,
		exit:    (*ThrowPerformance).exitBreak,
		onEvent: (*ThrowPerformance).onEventBreak,
	},
	throwCrunch: {
		name:   "CRUNCH",
		enter:  (*ThrowPerformance).enterCrunch,
		update: (*ThrowPerformance).updateCrunch,
		exit:   (*ThrowPerformance).exitCrunch,
	},
	throwImpact:  {name: "IMPACT", enter: (*ThrowPerformance).enterImpact, exit: (*ThrowPerformance).exitImpact},
	throwCleanup: {name: "CLEANUP", enter: (*ThrowPerformance).enterCleanup, update: cleanupToIdle[*ThrowPerformance](throwIdle)},
})

// ThrowPerformance flies the actor through the air until it hits something,
// handing off to Falling when it drops steeply or catches an edge.
type ThrowPerformance struct {
	performance
	machine stateMachine[*ThrowPerformance]
	params  component.ThrowParams
}

func newThrowPerformance(owner *Controller) *ThrowPerformance {
	p := &ThrowPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(throwStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *ThrowPerformance) Type() component.PerformanceType { return component.PerformanceThrow }
func (p *ThrowPerformance) State() string                   { return p.machine.CurrentName() }

func (p *ThrowPerformance) SetParams(params component.ThrowParams) {
	p.params = params
}

func (p *ThrowPerformance) Start()                     { p.machine.ManualTransition(throwFly) }
func (p *ThrowPerformance) Stop()                      { p.machine.ManualTransition(throwCleanup) }
func (p *ThrowPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *ThrowPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *ThrowPerformance) fall() {
	p.owner.StartPerformance(component.FallingParams{Attacker: p.params.Attacker})
}

// checkTakeover hands off to Falling on a steep drop or a caught edge. It
// reports whether the performance was replaced.
func (p *ThrowPerformance) checkTakeover(grab bool) bool {
	if p.owner.shouldFallingTakeOver() {
		p.fall()
		return true
	}
	if grab && p.owner.IsReadyToGrab() && p.owner.tryToGrabNearbyEdges() {
		p.fall()
		return true
	}
	return false
}

func (p *ThrowPerformance) enterFly() {
	p.applyStationaryTimer()
	p.owner.DisableRecovery()
	anim := p.anim()
	anim.StartBehavior(component.BehaviorFlyThrow, nil)
	anim.StartBehavior(component.BehaviorTransferThrow, nil)
	p.owner.SetTruncateMovementEnable(false)
}

func (p *ThrowPerformance) updateFly() stateID {
	p.checkTakeover(true)
	return noTransition
}

func (p *ThrowPerformance) exitFly() {
	p.owner.EnableRecovery()
	anim := p.anim()
	anim.StopBehavior(component.BehaviorFlyThrow)
	anim.StopBehavior(component.BehaviorTransferThrow)
	p.owner.SetTruncateMovementEnable(true)
}

func (p *ThrowPerformance) onEventFly(ev component.Event) stateID {
	switch ev.Type {
	case component.EventAnimationEnd:
		return throwBreak
	case component.EventCollision:
		if p.machine.TimeInState() > throwCollisionDelay {
			return throwCrunch
		}
	case component.EventMotionTransferOut:
		if p.machine.TimeInState() > throwTransferDelay {
			return throwCrunch
		}
	}
	return noTransition
}

func (p *ThrowPerformance) enterBreak() {
	p.anim().StartBehavior(component.BehaviorBreakThrow, nil)
}

func (p *ThrowPerformance) updateBreak() stateID {
	p.checkTakeover(false)
	return noTransition
}

func (p *ThrowPerformance) exitBreak() {
	p.anim().StopBehavior(component.BehaviorBreakThrow)
}

func (p *ThrowPerformance) onEventBreak(ev component.Event) stateID {
	if ev.Type == component.EventCollision {
		return throwCrunch
	}
	return noTransition
}

func (p *ThrowPerformance) enterCrunch() {
	anim := p.anim()
	anim.StartBehavior(component.BehaviorCrunchThrow, nil)
	anim.StartBehavior(component.BehaviorTorqueThrow, nil)
}

func (p *ThrowPerformance) updateCrunch() stateID {
	if p.checkTakeover(true) {
		return noTransition
	}
	if p.machine.TimeInState() > throwCrunchDelay {
		return throwImpact
	}
	return noTransition
}

func (p *ThrowPerformance) exitCrunch() {
	p.anim().StopBehavior(component.BehaviorCrunchThrow)
}

func (p *ThrowPerformance) enterImpact() {
	p.anim().StartBehavior(component.BehaviorImpactThrow, nil)
}

func (p *ThrowPerformance) exitImpact() {
	p.anim().StopBehavior(component.BehaviorImpactThrow)
}

func (p *ThrowPerformance) enterCleanup() {
	p.anim().StopAllBehaviors()
}
