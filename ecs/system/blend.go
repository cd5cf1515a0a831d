package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	blendIdle stateID = iota
	blendTransitioning
	blendInterrupt
	blendBonked
	blendStuck
	blendBlendTo
	blendCleanup
)

var blendStates = newStateTable("Blend", blendIdle, blendCleanup, []stateDef[*BlendPerformance]{
	blendIdle: {name: "IDLE"},
	blendTransitioning: {
		name:   "TRANSITIONING",
		enter:  (*BlendPerformance).enterTransitioning,
		update: (*BlendPerformance).updateTransitioning,
		exit:   (*BlendPerformance).stopAll,
	},
	blendInterrupt: {
		name:    "INTERRUPT",
		enter:   (*BlendPerformance).enterInterrupt,
		update:  (*BlendPerformance).rethinkUpdate,
		exit:    (*BlendPerformance).stopAll,
		onEvent: (*BlendPerformance).onEventInterrupt,
	},
	blendBonked: {
		name:   "BONKED",
		enter:  (*BlendPerformance).enterBonked,
		update: (*BlendPerformance).rethinkUpdate,
		exit:   (*BlendPerformance).stopAll,
	},
	blendStuck: {
		name:   "STUCK",
		enter:  (*BlendPerformance).enterStuck,
		update: (*BlendPerformance).rethinkUpdate,
		exit:   (*BlendPerformance).stopAll,
	},
	blendBlendTo: {
		name:    "BLENDTO",
		enter:   (*BlendPerformance).enterBlendTo,
		update:  (*BlendPerformance).updateBlendTo,
		exit:    (*BlendPerformance).stopAll,
		onEvent: (*BlendPerformance).onEventBlendTo,
	},
	blendCleanup: {
		name:   "CLEANUP",
		enter:  (*BlendPerformance).enterCleanup,
		update: cleanupToIdle[*BlendPerformance](blendIdle),
		exit:   (*BlendPerformance).exitCleanup,
	},
})

type blendPhase int

const (
	blendPhaseNone blendPhase = iota
	blendPhaseOne
	blendPhaseTwo
)

// phaseOneParams drives the super blend toward the getup pose.
type phaseOneParams struct {
	bodyStiffness        float64
	effectorRampDuration float64
	coreBlendDuration    float64
	group                string
	offset               mgl64.Vec3
}

// phaseTwoParams drives the trailing blend into the animation.
type phaseTwoParams struct {
	effectorRampDuration float64
	coreBlendDuration    float64
	bodyBlendStart       float64
	bodyBlendDuration    float64
	group                string
}

// blendToSettings configures the blend-to-frame behavior for one getup
// position along with the stationary thresholds that gate it.
type blendToSettings struct {
	rampDuration int
	frames       int
	errorLimit   int
	minSpeed     float64
	waitTime     float64
}

var (
	defaultBlendTo = blendToSettings{rampDuration: 4, frames: 10, minSpeed: 2.0, waitTime: 0.1}
	blendToByPos   = map[component.GetupPosition]blendToSettings{
		component.GetupBack:    {rampDuration: 3, frames: 4, errorLimit: 6, minSpeed: 5.0, waitTime: 0.12},
		component.GetupLeft:    {rampDuration: 3, frames: 4, errorLimit: 6, minSpeed: 0.45, waitTime: 0.12},
		component.GetupRight:   {rampDuration: 3, frames: 4, errorLimit: 6, minSpeed: 0.45, waitTime: 0.12},
		component.GetupUpright: {rampDuration: 2, frames: 2, errorLimit: 6, minSpeed: 5.0, waitTime: 0.1},
		component.GetupFront:   {rampDuration: 3, frames: 4, errorLimit: 6, minSpeed: 1.0, waitTime: 0.3},
	}
)

func blendToFor(pos component.GetupPosition) blendToSettings {
	if s, ok := blendToByPos[pos]; ok {
		return s
	}
	return defaultBlendTo
}

// BlendPerformance returns the ragdoll to animation: it blends toward a
// getup frame, plays the getup chore and backs off when the head is blocked.
// Its cleanup releases the controller's active slot.
type BlendPerformance struct {
	performance
	machine stateMachine[*BlendPerformance]
	params  component.BlendParams

	phase         blendPhase
	blendStarted  bool
	blendStart    float64
	blendDuration float64
	phaseTwoStart float64
	phaseOne      phaseOneParams
	phaseTwo      phaseTwoParams

	dt float64
}

func newBlendPerformance(owner *Controller) *BlendPerformance {
	p := &BlendPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(blendStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *BlendPerformance) Type() component.PerformanceType { return component.PerformanceBlend }
func (p *BlendPerformance) State() string                   { return p.machine.CurrentName() }

func (p *BlendPerformance) SetParams(params component.BlendParams) {
	p.params = params
}

// Position is the getup position the blend is currently working toward.
func (p *BlendPerformance) Position() component.GetupPosition {
	return p.params.InitialPosition
}

func (p *BlendPerformance) Start() {
	if p.params.InitialPosition == component.GetupNone {
		p.machine.ManualTransition(blendStuck)
		return
	}
	p.machine.ManualTransition(blendBlendTo)
}

func (p *BlendPerformance) Stop() { p.machine.ManualTransition(blendCleanup) }

func (p *BlendPerformance) Think(dt float64) {
	p.dt = dt
	p.machine.Advance(dt)
}

func (p *BlendPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *BlendPerformance) stopAll() {
	p.anim().StopAllBehaviors()
}

// canRecover samples body movement itself while the controller is
// transitioning, since the controller skips sampling then.
func (p *BlendPerformance) canRecover() bool {
	if p.owner.IsTransitioning() {
		p.owner.CheckBodyForMovement(p.dt)
	}
	return p.owner.IsBodyStationary()
}

// rethinkUpdate restarts the blend from a freshly classified position once
// the body has settled. An unresolvable position keeps the current state.
func (p *BlendPerformance) rethinkUpdate() stateID {
	if !p.anim().IsBehaviorActiveAndDriving() || !p.canRecover() {
		return noTransition
	}
	pos := p.owner.DetermineGetupPosition()
	if pos == component.GetupNone {
		return noTransition
	}
	p.anim().StopAllBehaviors()
	p.params.InitialPosition = pos
	return blendBlendTo
}

// initiateBlend configures both blend phases for pos out of a total getup
// time and starts phase one. It returns the phase two duration.
func (p *BlendPerformance) initiateBlend(getupTime float64, pos component.GetupPosition, turnCorrect float64, offset mgl64.Vec3) float64 {
	second := getupTime * 0.75
	first := getupTime - second
	one := phaseOneParams{bodyStiffness: 1, coreBlendDuration: 30 * first, group: component.GroupHandsFeetHead}
	two := phaseTwoParams{
		effectorRampDuration: second,
		coreBlendDuration:    5 * second,
		bodyBlendDuration:    5 * second,
		group:                component.GroupLowerBody,
	}

	switch pos {
	case component.GetupBack:
		second = getupTime * 0.70
		first = getupTime - second
		one.group = component.GroupHandsFeetHead
		two.group = component.GroupAll
	case component.GetupLeft, component.GetupRight:
		second = getupTime * 0.80
		first = getupTime - second
		one.group = component.GroupLowerBody
		two.group = component.GroupAll
	case component.GetupUpright:
		getupTime *= 0.25
		p.blendDuration = getupTime
		second = getupTime * 0.26
		first = getupTime - second
		one.group = component.GroupHandsFeetHeadPelvis
		one.coreBlendDuration = 20 * first
		two = phaseTwoParams{
			effectorRampDuration: 5,
			coreBlendDuration:    10,
			bodyBlendDuration:    20,
			group:                component.GroupAll,
		}
	case component.GetupFront:
		second = getupTime * 0.80 * turnCorrect
		first = getupTime - second
		one.group = component.GroupHandsFeetHeadPelvis
		two.group = component.GroupAll
	}
	if pos != component.GetupUpright {
		one.coreBlendDuration = 30 * first
		two.effectorRampDuration = second
		two.coreBlendDuration = 5 * second
		two.bodyBlendDuration = 5 * second
	}
	one.effectorRampDuration = 20 * first
	one.offset = offset
	p.phaseOne = one
	p.phaseTwo = two

	data := &component.OverrideData{}
	data.Floats[0] = one.bodyStiffness
	data.Floats[1] = offset.X()
	data.Floats[2] = offset.Y()
	data.Floats[3] = offset.Z()
	data.Ints[0] = int(one.effectorRampDuration)
	data.Ints[1] = int(one.coreBlendDuration)
	data.Group = one.group

	anim := p.anim()
	anim.StopAllBehaviors()
	anim.StartBehavior(component.BehaviorSuperBlend, data)
	return second
}

// updateBlendToAnimation advances the two blend phases. It reports false
// once phase two has run its course.
func (p *BlendPerformance) updateBlendToAnimation() bool {
	if p.phase == blendPhaseNone {
		return true
	}
	if !p.blendStarted {
		p.blendStart = p.machine.TimeInState()
		p.blendStarted = true
	}
	elapsed := p.machine.TimeInState() - p.blendStart

	switch p.phase {
	case blendPhaseOne:
		if elapsed >= p.phaseTwoStart {
			two := p.phaseTwo
			data := &component.OverrideData{}
			data.Ints[0] = int(two.effectorRampDuration)
			data.Ints[1] = int(two.coreBlendDuration)
			data.Ints[2] = int(two.bodyBlendStart)
			data.Ints[3] = int(two.bodyBlendDuration)
			data.Group = two.group

			anim := p.anim()
			anim.StopBehavior(component.BehaviorSuperBlend)
			anim.StartBehavior(component.BehaviorBlendToAnimation, data)
			p.phase = blendPhaseTwo
		}
	case blendPhaseTwo:
		if elapsed >= p.blendDuration {
			p.phase = blendPhaseNone
			return false
		}
	}
	return true
}

func (p *BlendPerformance) enterTransitioning() {
	p.owner.ResetStationaryTimer()
	corrected, offset := p.correctForWallLeaning(p.params.InitialPosition)
	p.params.InitialPosition = p.determineGetupChore(p.params.InitialPosition, corrected)

	p.phase = blendPhaseOne
	p.blendDuration = p.anim().PrimaryBlockRemainingTime()
	second := p.initiateBlend(p.blendDuration, p.params.InitialPosition, 1.0, offset)
	p.phaseTwoStart = p.blendDuration - second
	p.blendStarted = false
	p.blendStart = 0
}

func (p *BlendPerformance) updateTransitioning() stateID {
	if !p.anim().IsBehaviorActiveAndDriving() {
		return blendCleanup
	}
	if !p.updateBlendToAnimation() {
		return blendCleanup
	}
	if p.isHeadBlocked() {
		return blendInterrupt
	}
	return noTransition
}

func (p *BlendPerformance) enterInterrupt() {
	anim := p.anim()
	anim.StopAllBehaviors()

	push := p.exitDirection(exitScanRange).Mul(10)
	push[1] = -1
	data := &component.OverrideData{}
	data.Vectors[0] = push
	anim.StartBehavior(component.BehaviorHeadHit, data)

	p.owner.ResetStationaryTimer()
	p.applyStationaryTimer()
}

func (p *BlendPerformance) onEventInterrupt(ev component.Event) stateID {
	if ev.Type == component.EventStaggerTrip {
		return blendBonked
	}
	return noTransition
}

func (p *BlendPerformance) enterBonked() {
	anim := p.anim()
	anim.StopAllBehaviors()
	anim.StartBehavior(component.BehaviorCatchFallShoved, nil)
	p.owner.ResetStationaryTimer()
	p.applyStationaryTimer()
}

func (p *BlendPerformance) enterStuck() {
	anim := p.anim()
	anim.StopAllBehaviors()
	anim.StartBehavior(component.BehaviorUnstick, nil)
}

func (p *BlendPerformance) enterBlendTo() {
	pos := p.params.InitialPosition
	p.startGetupChore(pos)

	s := blendToFor(pos)
	data := &component.OverrideData{}
	data.Floats[0] = 1 // body stiffness
	data.Floats[1] = 0 // blend weight start
	data.Floats[2] = 1 // blend weight end
	data.Ints[0] = s.rampDuration
	data.Ints[1] = s.frames
	data.Ints[2] = 1 // root part
	data.Ints[3] = 1 // align to part
	data.Ints[4] = s.errorLimit
	data.Bools[0] = true
	p.anim().StartBehavior(component.BehaviorBlendToFrame, data)

	p.owner.ResetStationaryTimer()
	p.owner.SetStationaryTimer(s.minSpeed, s.waitTime)
}

// updateBlendTo restarts the state when the body rolls into another getup
// position.
func (p *BlendPerformance) updateBlendTo() stateID {
	if !p.anim().IsBehaviorActiveAndDriving() {
		return blendCleanup
	}
	pos := p.owner.DetermineGetupPosition()
	if pos == component.GetupNone {
		return blendStuck
	}
	if pos != p.params.InitialPosition {
		p.params.InitialPosition = pos
		return blendBlendTo
	}
	return noTransition
}

func (p *BlendPerformance) onEventBlendTo(ev component.Event) stateID {
	if ev.Type != component.EventBlendFrameDone {
		return noTransition
	}
	p.anim().StopAllBehaviors()
	p.params.InitialPosition = p.owner.DetermineGetupPosition()
	if p.params.InitialPosition == component.GetupNone {
		return blendStuck
	}
	return blendTransitioning
}

func (p *BlendPerformance) enterCleanup() {
	anim := p.anim()
	anim.StopAllBehaviors()
	anim.EndBehaviorControl()
}

// exitCleanup gives the slot back only if this blend still holds it; a
// restart enters through the controller with the slot already cleared.
func (p *BlendPerformance) exitCleanup() {
	if p.owner.current == component.Performance(p) {
		p.owner.DisconnectPerformance()
	}
}
