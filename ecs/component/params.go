package component

import "github.com/go-gl/mathgl/mgl64"

// PerformanceParams starts a performance. The concrete type is the tag, so a
// params value cannot change kind after construction.
type PerformanceParams interface {
	Type() PerformanceType
	AttackerID() ActorID
	isPerformanceParams()
}

// Attacker is embedded in every params type.
type Attacker struct {
	Attacker ActorID
}

func (a Attacker) AttackerID() ActorID { return a.Attacker }
func (Attacker) isPerformanceParams()  {}

type EPAParams struct {
	Attacker
}

type ExplosionParams struct {
	Attacker
	SourcePos  mgl64.Vec3
	Normal     mgl64.Vec3
	SourceMass float64
	Velocity   float64
}

type PunchParams struct {
	Attacker
	ForceNormal    mgl64.Vec3
	ForceMagnitude float64
	ImpactBone     BodyPart
}

type ShoveParams struct {
	Attacker
	ForceNormal    mgl64.Vec3
	ForceMagnitude float64
	ImpactBone     BodyPart
}

type ThrowParams struct {
	Attacker
}

type HitReactParams struct {
	Attacker
}

type FallingParams struct {
	Attacker
}

type GunshotParams struct {
	Attacker
}

type BalanceParams struct {
	Attacker
}

type BlendParams struct {
	Attacker
	InitialPosition GetupPosition
}

func (EPAParams) Type() PerformanceType       { return PerformanceEPA }
func (ExplosionParams) Type() PerformanceType { return PerformanceExplosion }
func (PunchParams) Type() PerformanceType     { return PerformancePunch }
func (ShoveParams) Type() PerformanceType     { return PerformanceShove }
func (ThrowParams) Type() PerformanceType     { return PerformanceThrow }
func (HitReactParams) Type() PerformanceType  { return PerformanceHitReact }
func (FallingParams) Type() PerformanceType   { return PerformanceFalling }
func (GunshotParams) Type() PerformanceType   { return PerformanceGunshot }
func (BalanceParams) Type() PerformanceType   { return PerformanceBalance }
func (BlendParams) Type() PerformanceType     { return PerformanceBlend }
