package ecs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	supportReach = 0.15
	// constraintForceScale turns a break threshold into a joint force limit
	// for a full-mass body.
	constraintForceScale = actorMass
)

func (a *SandboxActor) IsSupportedBelow(part component.BodyPart, distance float64) bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	from := a.partPosition(part)
	_, hit := a.world.segmentQuery(from, from.Sub(mgl64.Vec3{0, distance, 0}), a.filter)
	return hit
}

// supportQuery casts just under the feet.
func (a *SandboxActor) supportQuery() cp.SegmentQueryInfo {
	feet := toCP(a.partPosition(component.PartRoot))
	from := feet.Add(cp.Vector{Y: 0.05})
	to := feet.Sub(cp.Vector{Y: supportReach})
	return a.world.space.SegmentQueryFirst(from, to, 0, a.filter)
}

func (a *SandboxActor) Support() (mgl64.Vec3, bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	info := a.supportQuery()
	if info.Shape == nil {
		return mgl64.Vec3{}, false
	}
	return fromCP(info.Normal), true
}

func (a *SandboxActor) SupportingVelocity() mgl64.Vec3 {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	info := a.supportQuery()
	if info.Shape == nil {
		return mgl64.Vec3{}
	}
	return fromCP(info.Shape.Body().VelocityAtWorldPoint(info.Point))
}

func (a *SandboxActor) LineOfSight(from, to mgl64.Vec3) bool {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	_, hit := a.world.segmentQuery(from, to, a.filter)
	return !hit
}

func (a *SandboxActor) RayCast(from, to mgl64.Vec3) (component.RayHit, bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.world.segmentQuery(from, to, a.filter)
}

func (a *SandboxActor) BodyTransform(ref component.BodyRef) (mgl64.Mat4, bool) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	body, ok := a.world.bodies[ref]
	if !ok {
		return mgl64.Mat4{}, false
	}
	return bodyMatrix(body), true
}

func (a *SandboxActor) FindEdgesInRadius(center mgl64.Vec3, radius float64, max int) []component.EdgeHandle {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	return a.world.edgesNear(center, radius, max)
}

func (a *SandboxActor) EdgePosition(handle component.EdgeHandle) (mgl64.Vec3, mgl64.Vec3) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	edge, ok := a.world.edges[handle]
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	return a.world.edgeWorld(edge)
}

func (a *SandboxActor) DistanceToEdge(handle component.EdgeHandle, p mgl64.Vec3) (mgl64.Vec3, float64) {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	edge, ok := a.world.edges[handle]
	if !ok {
		return p, 0
	}
	start, end := a.world.edgeWorld(edge)
	return common.ClosestPointOnSegment(start, end, p)
}

func (a *SandboxActor) EdgeOwner(handle component.EdgeHandle) component.BodyRef {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()
	if edge, ok := a.world.edges[handle]; ok {
		return edge.owner
	}
	return 0
}

// CreateBallSocket pins part to body with a pivot joint whose force is
// capped by the break threshold.
func (a *SandboxActor) CreateBallSocket(part component.BodyPart, offset mgl64.Vec3, ref component.BodyRef, anchor mgl64.Vec3, breakThreshold float64) component.Constraint {
	a.world.mu.Lock()
	defer a.world.mu.Unlock()

	local, _ := a.partLocal(part)
	local = local.Add(cp.Vector{X: offset.X() * a.facing, Y: offset.Y()})

	other := a.world.space.StaticBody
	if body, ok := a.world.bodies[ref]; ok {
		other = body
	}
	joint := cp.NewPivotJoint2(a.body, other, local, toCP(anchor))
	maxForce := breakThreshold * constraintForceScale
	if maxForce > 0 {
		joint.SetMaxForce(maxForce)
	}
	joint.SetCollideBodies(false)
	a.world.space.AddConstraint(joint)
	return &sandboxConstraint{world: a.world, joint: joint, maxForce: maxForce}
}

type sandboxConstraint struct {
	world     *PhysicsWorld
	joint     *cp.Constraint
	maxForce  float64
	destroyed bool
}

// Broken reports a joint saturated at its force cap on the last step.
func (c *sandboxConstraint) Broken() bool {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	if c.destroyed {
		return true
	}
	dt := c.world.lastDT
	if c.maxForce <= 0 || dt <= 0 {
		return false
	}
	return c.joint.Class.GetImpulse() >= c.maxForce*dt*0.999
}

func (c *sandboxConstraint) Destroy() {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.world.space.RemoveConstraint(c.joint)
}
