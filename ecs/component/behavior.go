package component

import "github.com/go-gl/mathgl/mgl64"

// Behavior names a physical drive the animation layer can run on the body.
type Behavior string

const (
	BehaviorBlockWithArms  Behavior = "BlockWithArms_BalancingAct"
	BehaviorStaggerBalance Behavior = "StaggerBalance6_BalancingAct"
	BehaviorBalanceArms    Behavior = "BalanceArms_BalancingAct"
	BehaviorLandingFall    Behavior = "LandingFallWindmill_BalancingAct"
	BehaviorFallDown       Behavior = "FallDown_BalancingAct"

	BehaviorBlendToFrame     Behavior = "BlendToAnimationFrame_Shared"
	BehaviorSuperBlend       Behavior = "SuperBlendToAnimation_Shared"
	BehaviorBlendToAnimation Behavior = "BlendToAnimation_Shared"
	BehaviorUnstick          Behavior = "Blend_Unstick"
	BehaviorHeadHit          Behavior = "HeadHit_Blend_Fortune"

	BehaviorForceExplosion Behavior = "Force_PerfExplosion"

	BehaviorFlail          Behavior = "FlailThroughAir_DropZone"
	BehaviorHeadFirstFall  Behavior = "HeadFirstFall_DropZone"
	BehaviorFeetFirstFall  Behavior = "FeetFirstFall_DropZone"
	BehaviorGrabLedge      Behavior = "GrabLedge_GrabNGo"
	BehaviorHang           Behavior = "Hang_GrabNGo"
	BehaviorSlide          Behavior = "Slide_GrabNGo"
	BehaviorImpactReaction Behavior = "ImpactReaction_DropZone"

	BehaviorReactHitReact    Behavior = "React_PerfHitReact2"
	BehaviorTransferHitReact Behavior = "Transfer_PerfHitReact2"
	BehaviorCrunchHitReact   Behavior = "Crunch_PerfHitReact2"
	BehaviorImpactHitReact   Behavior = "Impact_PerfHitReact2"

	BehaviorPunch        Behavior = "Force_Punch"
	BehaviorStaggerPunch Behavior = "Stagger_Punch"
	BehaviorFallPunch    Behavior = "Fall_Punch"

	BehaviorStaggerShoved   Behavior = "Stagger_Shoved"
	BehaviorCatchFallShoved Behavior = "CatchFall_Shoved"

	BehaviorFlyThrow      Behavior = "Fly_PerfThrow"
	BehaviorTransferThrow Behavior = "Transfer_PerfThrow"
	BehaviorBreakThrow    Behavior = "Break_PerfThrow"
	BehaviorCrunchThrow   Behavior = "Crunch_PerfThrow"
	BehaviorTorqueThrow   Behavior = "Torque_PerfThrow"
	BehaviorImpactThrow   Behavior = "Impact_PerfThrow"
)

// HandPose is an overlay the animation layer plays on one hand.
type HandPose int

const (
	HandOpen HandPose = iota
	HandHang
)

func (p HandPose) String() string {
	if p == HandHang {
		return "HANG"
	}
	return "OPEN"
}

// Body part groups used by blend behaviors.
const (
	GroupAll                 = "all"
	GroupLowerBody           = "lower"
	GroupHandsFeetHead       = "handsFeetHead"
	GroupHandsFeetHeadPelvis = "handsFeetHeadPelvis"
)

// OverrideData carries the parameter overrides a behavior is started with.
// Slot meaning is fixed per behavior.
type OverrideData struct {
	Floats  [8]float64
	Ints    [8]int
	Bools   [4]bool
	Vectors [4]mgl64.Vec3
	Parts   [2]BodyPart
	Group   string
	Entity  BodyRef

	MomentumMultiplier float64
}

func (d *OverrideData) Reset() {
	*d = OverrideData{}
}

// CollisionData describes a contact reported with behavior feedback.
type CollisionData struct {
	Part    BodyPart
	Point   mgl64.Vec3
	Normal  mgl64.Vec3
	Impulse float64
	Other   BodyRef
}
