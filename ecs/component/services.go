package component

import "github.com/go-gl/mathgl/mgl64"

// Animation is the animation and behavior layer driving one actor's body.
type Animation interface {
	BodyPartTransform(part BodyPart) (mgl64.Mat4, bool)
	BodyPartVelocity(part BodyPart) mgl64.Vec3

	// StartBehavior reports whether the behavior could be started. data may
	// be nil.
	StartBehavior(b Behavior, data *OverrideData) bool
	StopBehavior(b Behavior)
	StopAllBehaviors()
	IsBehaviorActiveAndDriving() bool
	EndBehaviorControl()
	IsAgentAvailable() bool

	StartEPA() bool
	StopEPA()

	SetMomentumMultiplier(m float64)
	SetHandOverlay(arm Arm, pose HandPose)
	SetTruncateMovement(enabled bool)

	StartBlock(chore, block string, heading float64)
	PrimaryBlockRemainingTime() float64

	ActorMatrix() mgl64.Mat4
	SetActorMatrix(m mgl64.Mat4)
	ActorForward() mgl64.Vec3
}

// RayHit is the first contact along a ray.
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Physics answers support and visibility queries.
type Physics interface {
	// IsSupportedBelow reports solid ground within distance under part.
	IsSupportedBelow(part BodyPart, distance float64) bool
	// Support reports whether the actor rests on something and the contact
	// normal.
	Support() (normal mgl64.Vec3, ok bool)
	// SupportingVelocity is the velocity of whatever the actor stands on.
	SupportingVelocity() mgl64.Vec3
	LineOfSight(from, to mgl64.Vec3) bool
	RayCast(from, to mgl64.Vec3) (RayHit, bool)
	BodyTransform(body BodyRef) (mgl64.Mat4, bool)
}

// Environment locates graspable edges.
type Environment interface {
	FindEdgesInRadius(center mgl64.Vec3, radius float64, max int) []EdgeHandle
	EdgePosition(edge EdgeHandle) (start, end mgl64.Vec3)
	DistanceToEdge(edge EdgeHandle, p mgl64.Vec3) (closest mgl64.Vec3, dist float64)
	EdgeOwner(edge EdgeHandle) BodyRef
}

// Game exposes gameplay attributes of actors.
type Game interface {
	IsDead() bool
	CanRunPerformances() bool
	ActorPosition(id ActorID) (mgl64.Vec3, bool)
	ActorSpeed(id ActorID) float64
	ActorMass(id ActorID) float64
}

// Constraint is a breakable joint holding a hand in place.
type Constraint interface {
	Broken() bool
	Destroy()
}

// Constraints creates hand constraints. anchor is local to body when body
// is set, world space otherwise.
type Constraints interface {
	CreateBallSocket(part BodyPart, offset mgl64.Vec3, body BodyRef, anchor mgl64.Vec3, breakThreshold float64) Constraint
}

// Services bundles everything a controller needs from its host.
type Services struct {
	Animation   Animation
	Physics     Physics
	Environment Environment
	Game        Game
	Constraints Constraints
}
