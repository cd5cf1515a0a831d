package ecs

import (
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const blockDuration = 1.2

// partOffsets are body-local (forward, up) offsets from the pelvis.
var partOffsets = map[component.BodyPart]cp.Vector{
	component.PartRoot:         {X: 0, Y: -0.9},
	component.PartHips0:        {X: 0, Y: -0.1},
	component.PartSpine0:       {X: 0, Y: 0},
	component.PartSpine2:       {X: 0, Y: 0.3},
	component.PartSpine3:       {X: 0, Y: 0.5},
	component.PartNeck2:        {X: 0, Y: 0.7},
	component.PartHead:         {X: 0, Y: 0.85},
	component.PartLeftHand0:    {X: 0.2, Y: 0.2},
	component.PartRightHand0:   {X: 0.2, Y: 0.2},
	component.PartLeftMiddle0:  {X: 0.22, Y: 0.15},
	component.PartRightMiddle0: {X: 0.22, Y: 0.15},
	component.PartLeftFoot0:    {X: 0.05, Y: -0.9},
	component.PartRightFoot0:   {X: -0.05, Y: -0.9},
}

// SandboxActor is one ragdoll in a PhysicsWorld. It implements every
// service a controller needs; Services bundles them.
type SandboxActor struct {
	world  *PhysicsWorld
	id     component.ActorID
	body   *cp.Body
	shape  *cp.Shape
	filter cp.ShapeFilter
	facing float64

	active      map[component.Behavior]*component.OverrideData
	epa         bool
	blendFrames int
	block       string
	blockLeft   float64

	actorMatrix mgl64.Mat4
	momentum    float64
	overlays    [component.ArmCount]component.HandPose
	truncate    bool

	dead       bool
	canPerform bool
	agents     bool
	refuse     map[component.Behavior]bool
}

// Services bundles the actor as every controller service.
func (a *SandboxActor) Services() component.Services {
	return component.Services{
		Animation:   a,
		Physics:     a,
		Environment: a,
		Game:        a,
		Constraints: a,
	}
}

func (a *SandboxActor) ID() component.ActorID {
	return a.id
}

func (a *SandboxActor) SetDead(dead bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.dead = dead
}

func (a *SandboxActor) SetCanPerform(can bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.canPerform = can
}

func (a *SandboxActor) SetAgentAvailable(available bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.agents = available
}

// RefuseBehavior makes StartBehavior fail for b.
func (a *SandboxActor) RefuseBehavior(b component.Behavior) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	if a.refuse == nil {
		a.refuse = make(map[component.Behavior]bool)
	}
	a.refuse[b] = true
}

// SetVelocity sets the pelvis velocity.
func (a *SandboxActor) SetVelocity(v mgl64.Vec3) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.body.SetVelocity(v.X(), v.Y())
}

// SetAngle rolls the body about the view axis. Zero is upright.
func (a *SandboxActor) SetAngle(angle float64) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.body.SetAngle(angle)
}

// ActiveBehaviors lists the running behaviors sorted by name.
func (a *SandboxActor) ActiveBehaviors() []component.Behavior {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	out := make([]component.Behavior, 0, len(a.active))
	for b := range a.active {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *SandboxActor) Block() string {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.block
}

func (a *SandboxActor) driving() bool {
	return a.epa || len(a.active) > 0
}

// advance runs once per Step with the world locked.
func (a *SandboxActor) advance(dt float64) {
	if a.blockLeft > 0 {
		a.blockLeft = math.Max(0, a.blockLeft-dt)
	}
	if _, ok := a.active[component.BehaviorBlendToFrame]; ok && a.blendFrames > 0 {
		a.blendFrames--
		if a.blendFrames == 0 {
			a.world.pushFeedback(Feedback{Actor: a.id, Kind: component.FeedbackBlendFrameDone})
		}
	}
}

func (a *SandboxActor) partLocal(part component.BodyPart) (cp.Vector, bool) {
	off, ok := partOffsets[part]
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: off.X * a.facing, Y: off.Y}, true
}

func (a *SandboxActor) partPosition(part component.BodyPart) mgl64.Vec3 {
	local, ok := a.partLocal(part)
	if !ok {
		local = cp.Vector{}
	}
	return fromCP(a.body.LocalToWorld(local))
}

// partTransform orients every part like the torso: Y along the spine and Z
// out of the chest.
func (a *SandboxActor) partTransform(part component.BodyPart) (mgl64.Mat4, bool) {
	local, ok := a.partLocal(part)
	if !ok {
		return mgl64.Mat4{}, false
	}
	rot := a.body.Rotation()
	up := mgl64.Vec3{-rot.Y, rot.X, 0}
	fwd := mgl64.Vec3{rot.X * a.facing, rot.Y * a.facing, 0}
	side := up.Cross(fwd)
	pos := fromCP(a.body.LocalToWorld(local))
	return mgl64.Mat4FromCols(side.Vec4(0), up.Vec4(0), fwd.Vec4(0), pos.Vec4(1)), true
}

func (a *SandboxActor) BodyPartTransform(part component.BodyPart) (mgl64.Mat4, bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.partTransform(part)
}

func (a *SandboxActor) BodyPartVelocity(part component.BodyPart) mgl64.Vec3 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	local, _ := a.partLocal(part)
	return fromCP(a.body.VelocityAtLocalPoint(local))
}

// StartBehavior records b as running. Force behaviors push the body with
// the impulse in Vectors[0] at Parts[0].
func (a *SandboxActor) StartBehavior(b component.Behavior, data *component.OverrideData) bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	if a.refuse[b] {
		return false
	}
	var stored *component.OverrideData
	if data != nil {
		copied := *data
		stored = &copied
	}
	a.active[b] = stored

	if strings.HasPrefix(string(b), "Force_") && stored != nil && stored.Vectors[0].LenSqr() > 0 {
		part := stored.Parts[0]
		if part == component.PartNone {
			part = component.PartSpine0
		}
		at := toCP(a.partPosition(part))
		a.body.ApplyImpulseAtWorldPoint(toCP(stored.Vectors[0]), at)
	}
	if b == component.BehaviorBlendToFrame {
		a.blendFrames = 4
		if stored != nil && stored.Ints[1] > 0 {
			a.blendFrames = stored.Ints[1]
		}
	}
	a.world.logger.Printf("physics: actor=%s start behavior %s", a.id, b)
	return true
}

func (a *SandboxActor) StopBehavior(b component.Behavior) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	delete(a.active, b)
}

func (a *SandboxActor) StopAllBehaviors() {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	clear(a.active)
}

func (a *SandboxActor) IsBehaviorActiveAndDriving() bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.driving()
}

// EndBehaviorControl hands the body back to animation, which stands it
// upright.
func (a *SandboxActor) EndBehaviorControl() {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	clear(a.active)
	a.epa = false
	a.body.SetAngle(0)
	a.body.SetAngularVelocity(0)
}

func (a *SandboxActor) IsAgentAvailable() bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.agents
}

func (a *SandboxActor) StartEPA() bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.epa = true
	return true
}

func (a *SandboxActor) StopEPA() {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.epa = false
}

func (a *SandboxActor) SetMomentumMultiplier(m float64) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.momentum = m
}

func (a *SandboxActor) SetHandOverlay(arm component.Arm, pose component.HandPose) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	if arm >= 0 && arm < component.ArmCount {
		a.overlays[arm] = pose
	}
}

func (a *SandboxActor) SetTruncateMovement(enabled bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.truncate = enabled
}

func (a *SandboxActor) StartBlock(chore, block string, heading float64) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.block = block
	a.blockLeft = blockDuration
	a.world.logger.Printf("physics: actor=%s play %s/%s heading=%.2f", a.id, chore, block, heading)
}

func (a *SandboxActor) PrimaryBlockRemainingTime() float64 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.blockLeft
}

// ActorMatrix is the animation root: the stored yaw at the pelvis position.
func (a *SandboxActor) ActorMatrix() mgl64.Mat4 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	m := a.actorMatrix
	pos := fromCP(a.body.Position())
	m.SetCol(3, pos.Vec4(1))
	return m
}

func (a *SandboxActor) SetActorMatrix(m mgl64.Mat4) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	a.actorMatrix = m
	if fwd := common.BasisZ(m); fwd.X() != 0 {
		a.facing = math.Copysign(1, fwd.X())
	}
}

func (a *SandboxActor) ActorForward() mgl64.Vec3 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return common.BasisZ(a.actorMatrix)
}

func (a *SandboxActor) IsDead() bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.dead
}

func (a *SandboxActor) CanRunPerformances() bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.canPerform
}

func (a *SandboxActor) ActorPosition(id component.ActorID) (mgl64.Vec3, bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	other, ok := a.world.actors[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return fromCP(other.body.Position()), true
}

func (a *SandboxActor) ActorSpeed(id component.ActorID) float64 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	other, ok := a.world.actors[id]
	if !ok {
		return 0
	}
	return other.body.Velocity().Length()
}

func (a *SandboxActor) ActorMass(id component.ActorID) float64 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	other, ok := a.world.actors[id]
	if !ok {
		return 0
	}
	return other.body.Mass()
}
