package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	epaIdle stateID = iota
	epaRunning
	epaCleanup
)

var epaStates = newStateTable("EPA", epaIdle, epaCleanup, []stateDef[*EPAPerformance]{
	epaIdle:    {name: "IDLE"},
	epaRunning: {name: "RUNNING", enter: (*EPAPerformance).enterRunning, update: (*EPAPerformance).updateRunning},
	epaCleanup: {name: "CLEANUP", enter: (*EPAPerformance).enterCleanup, update: cleanupToIdle[*EPAPerformance](epaIdle)},
})

// TakeoverDecision is what a running pin-away should hand off to.
type TakeoverDecision int

const (
	TakeoverNone TakeoverDecision = iota
	TakeoverFalling
	TakeoverGrab
)

func (d TakeoverDecision) String() string {
	switch d {
	case TakeoverFalling:
		return "falling"
	case TakeoverGrab:
		return "grab"
	}
	return ""
}

// TakeoverInput is sampled once per RUNNING tick.
type TakeoverInput struct {
	Speed           float64
	VelocityY       float64
	FallingTakeover bool
	ReadyToGrab     bool
	TimeInState     float64
}

// Takeover decides when a running pin-away hands the actor off.
type Takeover interface {
	Decide(in TakeoverInput) (TakeoverDecision, error)
}

// EPAPerformance drives the environment pin-away behavior. Without a
// takeover it runs until stopped.
type EPAPerformance struct {
	performance
	machine  stateMachine[*EPAPerformance]
	params   component.EPAParams
	takeover Takeover
}

func newEPAPerformance(owner *Controller) *EPAPerformance {
	p := &EPAPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(epaStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *EPAPerformance) Type() component.PerformanceType { return component.PerformanceEPA }
func (p *EPAPerformance) State() string                   { return p.machine.CurrentName() }

func (p *EPAPerformance) SetParams(params component.EPAParams) {
	p.params = params
}

// SetTakeover installs the hand-off policy. nil keeps the performance inert.
func (p *EPAPerformance) SetTakeover(t Takeover) {
	p.takeover = t
}

func (p *EPAPerformance) Start()                     { p.machine.ManualTransition(epaRunning) }
func (p *EPAPerformance) Stop()                      { p.machine.ManualTransition(epaCleanup) }
func (p *EPAPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *EPAPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

func (p *EPAPerformance) enterRunning() {
	p.applyStationaryTimer()
	p.anim().StartEPA()
}

func (p *EPAPerformance) updateRunning() stateID {
	if p.takeover == nil {
		return noTransition
	}
	speed, vel := p.owner.speedAndVelocity()
	decision, err := p.takeover.Decide(TakeoverInput{
		Speed:           speed,
		VelocityY:       vel.Y(),
		FallingTakeover: p.owner.shouldFallingTakeOver(),
		ReadyToGrab:     p.owner.IsReadyToGrab(),
		TimeInState:     p.machine.TimeInState(),
	})
	if err != nil {
		p.owner.logger.Printf("performance: actor=%s epa takeover: %v", p.owner.actor, err)
		return noTransition
	}

	switch decision {
	case TakeoverFalling:
		p.owner.StartPerformance(component.FallingParams{Attacker: p.params.Attacker})
	case TakeoverGrab:
		if p.owner.IsReadyToGrab() && p.owner.tryToGrabNearbyEdges() {
			p.owner.StartPerformance(component.FallingParams{Attacker: p.params.Attacker})
		}
	}
	return noTransition
}

func (p *EPAPerformance) enterCleanup() {
	p.anim().StopEPA()
}
