package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	explosionIdle stateID = iota
	explosionExploding
	explosionCleanup
)

const (
	npcMassKG             = 75.0
	explosionFudgeFactor  = 5.0
	explosionMaxMagnitude = 100.0
	explosionSpread       = 1.0
	explosionDuration     = 0.1
)

var explosionStates = newStateTable("Explosion", explosionIdle, explosionCleanup, []stateDef[*ExplosionPerformance]{
	explosionIdle:      {name: "IDLE"},
	explosionExploding: {name: "EXPLODING", enter: (*ExplosionPerformance).enterExploding, update: (*ExplosionPerformance).updateExploding},
	explosionCleanup:   {name: "CLEANUP", update: cleanupToIdle[*ExplosionPerformance](explosionIdle)},
})

// ExplosionPerformance throws the torso away from a blast and hands off to
// Falling once the body drops steeply.
type ExplosionPerformance struct {
	performance
	machine stateMachine[*ExplosionPerformance]
	params  component.ExplosionParams
}

func newExplosionPerformance(owner *Controller) *ExplosionPerformance {
	p := &ExplosionPerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(explosionStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *ExplosionPerformance) Type() component.PerformanceType { return component.PerformanceExplosion }
func (p *ExplosionPerformance) State() string                   { return p.machine.CurrentName() }

func (p *ExplosionPerformance) SetParams(params component.ExplosionParams) {
	p.params = params
}

func (p *ExplosionPerformance) Start()                     { p.machine.ManualTransition(explosionExploding) }
func (p *ExplosionPerformance) Stop()                      { p.machine.ManualTransition(explosionCleanup) }
func (p *ExplosionPerformance) Think(dt float64)           { p.machine.Advance(dt) }
func (p *ExplosionPerformance) OnEvent(ev component.Event) { p.machine.OnEvent(ev) }

// ExplosionImpulse scales the blast normal by the source mass relative to an
// average NPC and by the blast velocity, capped at explosionMaxMagnitude.
func ExplosionImpulse(params component.ExplosionParams) mgl64.Vec3 {
	mag := math.Sqrt(params.SourceMass/npcMassKG) * params.Velocity * explosionFudgeFactor
	return common.ClampLength(params.Normal.Mul(mag), explosionMaxMagnitude)
}

func (p *ExplosionPerformance) enterExploding() {
	p.applyStationaryTimer()

	data := &component.OverrideData{}
	data.Vectors[0] = ExplosionImpulse(p.params)
	data.Floats[0] = explosionSpread
	data.Floats[1] = explosionDuration
	data.Parts[0] = component.PartSpine2
	data.Bools[0] = false
	p.anim().StartBehavior(component.BehaviorForceExplosion, data)
}

func (p *ExplosionPerformance) updateExploding() stateID {
	if p.owner.shouldFallingTakeOver() {
		p.owner.StartPerformance(component.FallingParams{Attacker: p.params.Attacker})
	}
	return noTransition
}
