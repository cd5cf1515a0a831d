package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	fallingIdle stateID = iota
	fallingFalling
	fallingCatchHead
	fallingCatchFeet
	fallingReact
	fallingHanging
	fallingSliding
	fallingGrabbing
	fallingCleanup
)

var fallingStates = newStateTable("Falling", fallingIdle, fallingCleanup, []stateDef[*FallingPerformance]{
	fallingIdle: {name: "IDLE"},
	fallingFalling: {
		name:   "FALLING",
		enter:  (*FallingPerformance).enterFalling,
		update: (*FallingPerformance).updateFalling,
		exit:   (*FallingPerformance).stopAll,
	},
	fallingCatchHead: {
		name:   "CATCH_HEAD",
		enter:  (*FallingPerformance).enterCatchHead,
		update: (*FallingPerformance).updateCatchHead,
		exit:   (*FallingPerformance).stopAll,
	},
	fallingCatchFeet: {
		name:   "CATCH_FEET",
		enter:  (*FallingPerformance).enterCatchFeet,
		update: (*FallingPerformance).updateCatchFeet,
		exit:   (*FallingPerformance).stopAll,
	},
	fallingReact: {
		name:   "REACT",
		enter:  (*FallingPerformance).enterReact,
		update: (*FallingPerformance).updateReact,
		exit:   (*FallingPerformance).stopAll,
	},
	fallingHanging: {
		name:    "HANGING",
		enter:   (*FallingPerformance).enterHanging,
		update:  (*FallingPerformance).updateHanging,
		exit:    (*FallingPerformance).exitHanging,
		onEvent: (*FallingPerformance).onEventHanging,
	},
	fallingSliding: {
		name:   "SLIDING",
		enter:  (*FallingPerformance).enterSliding,
		update: (*FallingPerformance).updateSliding,
		exit:   (*FallingPerformance).stopAll,
	},
	fallingGrabbing: {
		name:    "GRABBING",
		enter:   (*FallingPerformance).enterGrabbing,
		update:  (*FallingPerformance).updateGrabbing,
		exit:    (*FallingPerformance).stopAll,
		onEvent: (*FallingPerformance).onEventGrabbing,
	},
	fallingCleanup: {name: "CLEANUP", update: cleanupToIdle[*FallingPerformance](fallingIdle)},
})

// FallingPerformance flails through the air, braces for the landing and
// catches edges within reach on the way down.
type FallingPerformance struct {
	performance
	machine stateMachine[*FallingPerformance]
	params  component.FallingParams
}

func newFallingPerformance(owner *Controller) *FallingPerformance {
	p := &FallingPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(fallingStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *FallingPerformance) Type() component.PerformanceType { return component.PerformanceFalling }
func (p *FallingPerformance) State() string                   { return p.machine.CurrentName() }

func (p *FallingPerformance) SetParams(params component.FallingParams) {
	p.params = params
}

// Start goes straight to HANGING when another performance already caught an
// edge.
func (p *FallingPerformance) Start() {
	if p.owner.anyHandConstrained() {
		p.machine.ManualTransition(fallingHanging)
		return
	}
	p.machine.ManualTransition(fallingFalling)
}

func (p *FallingPerformance) Stop()                      { p.machine.ManualTransition(fallingCleanup) }
func (p *FallingPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *FallingPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *FallingPerformance) tuning() *component.FallingTuning {
	return &p.owner.tuning.Falling
}

func (p *FallingPerformance) stopAll() {
	p.anim().StopAllBehaviors()
}

func (p *FallingPerformance) setHands(pose component.HandPose) {
	anim := p.anim()
	anim.SetHandOverlay(component.ArmLeft, pose)
	anim.SetHandOverlay(component.ArmRight, pose)
}

// edgeData loads the grabbed edge into the overrides read by the grab and
// hang behaviors.
func (p *FallingPerformance) edgeData() *component.OverrideData {
	edge := p.owner.GrabbedEdge()
	data := &component.OverrideData{}
	data.Entity = edge.OwnerBody
	data.Vectors[0] = edge.Start
	data.Vectors[1] = edge.End
	return data
}

func (p *FallingPerformance) isMovingFast() bool {
	speed, _ := p.owner.speedAndVelocity()
	return speed > p.tuning().FastSpeed
}

// isSliding reports a support surface steeper than the slide angle.
func (p *FallingPerformance) isSliding(normal mgl64.Vec3) bool {
	return normal.Y() < math.Cos(mgl64.DegToRad(p.tuning().SlideAngle))
}

func (p *FallingPerformance) isFallingFeetFirst() bool {
	spine, ok := p.owner.partTransform(component.PartSpine0)
	if !ok {
		return false
	}
	return common.BasisY(spine).Dot(common.WorldUp) > p.tuning().FeetFirstDot
}

func (p *FallingPerformance) isAbleToLandOnFeet(normal mgl64.Vec3, height float64) bool {
	return p.isFallingFeetFirst() && height < p.tuning().MaxReactHeight && normal.Y() > common.Cos45
}

// heightFromGround casts straight down from the pelvis. A miss reports
// math.MaxFloat64.
func (p *FallingPerformance) heightFromGround() (height float64, normal mgl64.Vec3, ok bool) {
	from := p.owner.partPosition(component.PartSpine0)
	to := from.Add(common.WorldDown.Mul(p.tuning().HeightRayLength))
	hit, ok := p.phys().RayCast(from, to)
	if !ok {
		return math.MaxFloat64, mgl64.Vec3{}, false
	}
	return hit.Distance, hit.Normal, true
}

// timeToImpact casts along the current velocity and converts the hit
// distance to seconds at the current speed.
func (p *FallingPerformance) timeToImpact() (seconds, distance float64, ok bool) {
	t := p.tuning()
	speed, vel := p.owner.speedAndVelocity()
	if speed > t.ImpactMinSpeed {
		from := p.owner.partPosition(component.PartSpine0)
		to := from.Add(vel.Mul(t.ImpactRayLength / speed))
		if hit, hitOK := p.phys().RayCast(from, to); hitOK {
			return hit.Distance / speed, hit.Distance, true
		}
	}
	return math.MaxFloat64, math.MaxFloat64, false
}

func (p *FallingPerformance) momentumMultiplier() float64 {
	t := p.tuning()
	speed, _ := p.owner.speedAndVelocity()
	return mgl64.Clamp(speed*t.MomentumScale, t.MomentumMin, t.MomentumMax)
}

func (p *FallingPerformance) enterFalling() {
	p.applyStationaryTimer()
	p.owner.GrabbedEdge().OwnerBody = 0
	p.setHands(component.HandOpen)
	p.anim().SetMomentumMultiplier(p.momentumMultiplier())
	p.mustStart(component.BehaviorFlail, nil)
}

func (p *FallingPerformance) updateFalling() stateID {
	t := p.tuning()
	normal, supported := p.phys().Support()
	if supported && p.isMovingFast() && p.isSliding(normal) {
		return fallingSliding
	}

	if p.owner.IsReadyToGrab() && p.owner.tryToGrabNearbyEdges() {
		return fallingHanging
	}

	// TODO: start Balance when isAbleToLandOnFeet holds here and in
	// CATCH_FEET once the Balance handoff has thresholds.
	seconds, _, timeOK := p.timeToImpact()
	height, _, heightOK := p.heightFromGround()
	if (timeOK && seconds < t.MinFallingImpactTime) || (heightOK && height < t.MaxReactHeight) {
		if p.isFallingFeetFirst() {
			return fallingCatchFeet
		}
		return fallingCatchHead
	}
	return noTransition
}

func (p *FallingPerformance) enterCatchHead() {
	p.mustStart(component.BehaviorHeadFirstFall, nil)
}

// impactImminent reports whether the landing is close enough to react, or
// far enough to keep falling.
func (p *FallingPerformance) impactImminent() (react, resume bool) {
	t := p.tuning()
	seconds, _, timeOK := p.timeToImpact()
	height, _, heightOK := p.heightFromGround()
	if (timeOK && seconds < t.MinReactImpactTime) || (heightOK && height < t.MaxReactHeight) {
		return true, false
	}
	return false, timeOK && seconds > t.MinFallingImpactTime
}

func (p *FallingPerformance) updateCatchHead() stateID {
	react, resume := p.impactImminent()
	switch {
	case react:
		return fallingReact
	case resume:
		return fallingFalling
	case p.isFallingFeetFirst():
		return fallingCatchFeet
	}
	return noTransition
}

// enterCatchFeet flails; BehaviorFeetFirstFall is not used.
func (p *FallingPerformance) enterCatchFeet() {
	p.mustStart(component.BehaviorFlail, nil)
}

func (p *FallingPerformance) updateCatchFeet() stateID {
	react, resume := p.impactImminent()
	switch {
	case react:
		return fallingReact
	case resume:
		return fallingFalling
	case !p.isFallingFeetFirst():
		return fallingCatchHead
	}
	return noTransition
}

// enterReact keeps the arms from reaching when the actor is already dead.
func (p *FallingPerformance) enterReact() {
	data := &component.OverrideData{}
	data.Bools[0] = p.owner.services.Game.IsDead()
	p.mustStart(component.BehaviorImpactReaction, data)
}

func (p *FallingPerformance) updateReact() stateID {
	t := p.tuning()
	seconds, _, _ := p.timeToImpact()
	height, _, _ := p.heightFromGround()
	if height > t.MaxReactHeight && seconds > t.MinReactImpactTime {
		return fallingFalling
	}

	normal, supported := p.phys().Support()
	if supported && p.isMovingFast() {
		// Touching the ground, so the height is zero.
		if p.isAbleToLandOnFeet(normal, 0) {
			return noTransition
		}
		if p.isSliding(normal) {
			return fallingSliding
		}
	}
	return noTransition
}

// enterHanging disables recovery until the grip is released.
func (p *FallingPerformance) enterHanging() {
	p.owner.DisableRecovery()
	p.setHands(component.HandHang)

	data := p.edgeData()
	data.Bools[0] = p.owner.IsHandConstrained(component.ArmLeft)
	data.Bools[1] = p.owner.IsHandConstrained(component.ArmRight)
	p.mustStart(component.BehaviorHang, data)
}

func (p *FallingPerformance) updateHanging() stateID {
	if !p.owner.anyHandConstrained() {
		return fallingFalling
	}
	return noTransition
}

func (p *FallingPerformance) exitHanging() {
	p.owner.EnableRecovery()
	p.anim().StopAllBehaviors()
}

func (p *FallingPerformance) onEventHanging(ev component.Event) stateID {
	p.owner.HandleConstraintMessages(ev.Type)
	return noTransition
}

func (p *FallingPerformance) enterSliding() {
	p.setHands(component.HandOpen)
	p.mustStart(component.BehaviorSlide, nil)
}

// updateSliding reaches for the closer of the edges found by each hand and
// falls once the slope drops away.
func (p *FallingPerformance) updateSliding() stateID {
	left, _, leftDist, leftOK := p.owner.locateEdge(p.owner.partPosition(component.PartLeftHand0))
	right, _, rightDist, rightOK := p.owner.locateEdge(p.owner.partPosition(component.PartRightHand0))
	switch {
	case rightOK && rightDist < leftDist:
		*p.owner.GrabbedEdge() = right
		return fallingGrabbing
	case leftOK:
		*p.owner.GrabbedEdge() = left
		return fallingGrabbing
	}

	if _, supported := p.phys().Support(); !supported {
		return fallingFalling
	}
	return noTransition
}

// enterGrabbing starts the grab. The constraint arrives through constrain
// feedback.
func (p *FallingPerformance) enterGrabbing() {
	p.anim().StartBehavior(component.BehaviorGrabLedge, p.edgeData())
}

func (p *FallingPerformance) updateGrabbing() stateID {
	if _, supported := p.phys().Support(); !supported {
		return fallingFalling
	}
	return noTransition
}

func (p *FallingPerformance) onEventGrabbing(ev component.Event) stateID {
	p.owner.HandleConstraintMessages(ev.Type)
	if p.owner.anyHandConstrained() {
		return fallingHanging
	}
	return noTransition
}
