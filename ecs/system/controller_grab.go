package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

// hand describes where a grab constraint attaches on each arm.
type hand struct {
	part   component.BodyPart
	reach  component.BodyPart
	offset mgl64.Vec3
}

var hands = [component.ArmCount]hand{
	component.ArmLeft: {
		part:   component.PartLeftMiddle0,
		reach:  component.PartLeftHand0,
		offset: mgl64.Vec3{0, -0.05, -0.05},
	},
	component.ArmRight: {
		part:   component.PartRightMiddle0,
		reach:  component.PartRightHand0,
		offset: mgl64.Vec3{0, 0.05, 0.05},
	},
}

func mustArm(arm component.Arm) {
	if arm < 0 || arm >= component.ArmCount {
		panic(fmt.Sprintf("grab: invalid arm %d", int(arm)))
	}
}

func (c *Controller) IsHandConstrained(arm component.Arm) bool {
	mustArm(arm)
	return c.handConstraints[arm] != nil
}

func (c *Controller) IsGrabbingWith(arm component.Arm) bool {
	mustArm(arm)
	return c.grabbing[arm]
}

func (c *Controller) anyHandConstrained() bool {
	return c.IsHandConstrained(component.ArmLeft) || c.IsHandConstrained(component.ArmRight)
}

// ConstrainLimb pins the hand of arm to worldPos, expressed in body's local
// space when body is set. A limb that already holds a constraint is left
// alone.
func (c *Controller) ConstrainLimb(arm component.Arm, body component.BodyRef, worldPos mgl64.Vec3) {
	mustArm(arm)
	if c.IsHandConstrained(arm) {
		return
	}
	h := hands[arm]
	c.services.Animation.SetHandOverlay(arm, component.HandHang)

	anchor := worldPos
	if body != 0 {
		if xform, ok := c.services.Physics.BodyTransform(body); ok {
			anchor = common.ToLocal(xform, worldPos)
		}
	}
	c.handConstraints[arm] = c.services.Constraints.CreateBallSocket(h.part, h.offset, body, anchor, c.constraintBreakThreshold)
	c.grabbing[arm] = true
	c.grabDelayTimer = 0
	c.logger.Printf("grab: actor=%s %s hand constrained at (%.2f, %.2f, %.2f)", c.actor, arm, worldPos.X(), worldPos.Y(), worldPos.Z())
}

// ReleaseConstraint destroys the constraint held by arm, if any.
func (c *Controller) ReleaseConstraint(arm component.Arm) {
	mustArm(arm)
	if c.handConstraints[arm] == nil {
		return
	}
	c.handConstraints[arm].Destroy()
	c.handConstraints[arm] = nil
	c.grabbing[arm] = false
	c.grabDelayTimer = 0
	c.logger.Printf("grab: actor=%s %s hand released", c.actor, arm)
}

// CheckForBrokenConstraints releases every constraint the physics layer
// reports broken.
func (c *Controller) CheckForBrokenConstraints() {
	for arm := component.ArmLeft; arm < component.ArmCount; arm++ {
		if con := c.handConstraints[arm]; con != nil && con.Broken() {
			c.ReleaseConstraint(arm)
		}
	}
}

// HandleConstraintMessages applies constrain/unconstrain feedback using the
// last located edge.
func (c *Controller) HandleConstraintMessages(t component.EventType) {
	switch t {
	case component.EventConstrainLeftHand:
		c.constrainToGrabbedEdge(component.ArmLeft)
	case component.EventConstrainRightHand:
		c.constrainToGrabbedEdge(component.ArmRight)
	case component.EventUnConstrainLeftHand:
		c.ReleaseConstraint(component.ArmLeft)
	case component.EventUnConstrainRightHand:
		c.ReleaseConstraint(component.ArmRight)
	}
}

func (c *Controller) constrainToGrabbedEdge(arm component.Arm) {
	handPos := c.partPosition(hands[arm].reach)
	closest, _ := c.services.Environment.DistanceToEdge(c.grabbedEdge.Edge, handPos)
	c.ConstrainLimb(arm, c.grabbedEdge.OwnerBody, closest)
}
