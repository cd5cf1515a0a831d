package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	maxReachDistance  = 0.3
	fallTakeoverSpeed = 1.0
)

func (c *Controller) partTransform(part component.BodyPart) (mgl64.Mat4, bool) {
	return c.services.Animation.BodyPartTransform(part)
}

// partPosition is the world position of part, or the origin when the
// animation layer does not know it.
func (c *Controller) partPosition(part component.BodyPart) mgl64.Vec3 {
	m, ok := c.partTransform(part)
	if !ok {
		return mgl64.Vec3{}
	}
	return common.Translation(m)
}

// speedAndVelocity measures the body by its lowest spine segment.
func (c *Controller) speedAndVelocity() (float64, mgl64.Vec3) {
	v := c.services.Animation.BodyPartVelocity(component.PartSpine0)
	return v.Len(), v
}

// shouldFallingTakeOver reports a fall steep enough for the Falling
// performance: moving at least fallTakeoverSpeed within 45 degrees of
// straight down.
func (c *Controller) shouldFallingTakeOver() bool {
	speed, vel := c.speedAndVelocity()
	if speed < fallTakeoverSpeed {
		return false
	}
	return common.SafeNormalize(vel).Dot(common.WorldDown) > common.Cos45
}

// tryToGrabNearbyEdges tries the left hand, then the right, against the
// first edge within reach of each. A located edge is recorded in the
// controller even when the constraint does not take.
func (c *Controller) tryToGrabNearbyEdges() bool {
	for _, arm := range []component.Arm{component.ArmLeft, component.ArmRight} {
		edge, closest, _, found := c.locateEdge(c.partPosition(hands[arm].reach))
		if !found {
			continue
		}
		c.grabbedEdge = edge
		c.ConstrainLimb(arm, edge.OwnerBody, closest)
		if c.IsHandConstrained(arm) {
			return true
		}
	}
	return false
}

// locateEdge finds the first edge within reach of handPos. Edges owned by a
// physical body are returned in that body's local space. dist is
// math.MaxFloat64 when nothing is found.
func (c *Controller) locateEdge(handPos mgl64.Vec3) (edge component.GrabbedEdge, closest mgl64.Vec3, dist float64, found bool) {
	env := c.services.Environment
	edges := env.FindEdgesInRadius(handPos, maxReachDistance, 1)
	if len(edges) == 0 {
		return component.GrabbedEdge{}, mgl64.Vec3{}, math.MaxFloat64, false
	}

	edge.Edge = edges[0]
	edge.Start, edge.End = env.EdgePosition(edge.Edge)
	closest, dist = env.DistanceToEdge(edge.Edge, handPos)

	if owner := env.EdgeOwner(edge.Edge); owner != 0 {
		if xform, ok := c.services.Physics.BodyTransform(owner); ok {
			edge.Start = common.ToLocal(xform, edge.Start)
			edge.End = common.ToLocal(xform, edge.End)
			edge.OwnerBody = owner
		}
	}
	return edge, closest, dist, true
}
