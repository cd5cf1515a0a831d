package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	uprightSupportDistance    = 1.2
	horizontalSupportDistance = 0.5
	uprightFootClearance      = 0.5
	uprightHeadRadius         = 0.25
	uprightHeadLeanRadius     = 0.4
)

// DetermineGetupPosition classifies the body's resting orientation from the
// current pose. It has no side effects.
func (c *Controller) DetermineGetupPosition() component.GetupPosition {
	anim := c.services.Animation
	spine, ok := anim.BodyPartTransform(component.PartSpine0)
	if !ok {
		return component.GetupNone
	}
	if c.services.Game.IsDead() {
		return component.GetupDead
	}

	rootPos := common.Translation(spine)
	rootFwd := common.BasisZ(spine)
	rootUp := common.BasisY(spine)

	if rootUp.Dot(common.WorldUp) >= common.Cos45 {
		if !c.services.Physics.IsSupportedBelow(component.PartSpine0, uprightSupportDistance) {
			return component.GetupNone
		}
		for _, foot := range []component.BodyPart{component.PartRightFoot0, component.PartLeftFoot0} {
			if rootPos.Y()-c.partPosition(foot).Y() < uprightFootClearance {
				return component.GetupNone
			}
		}

		toHead := common.FlattenXZ(c.partPosition(component.PartNeck2).Sub(rootPos))
		distSq := toHead.LenSqr()
		radius := uprightHeadRadius
		if common.SafeNormalize(toHead).Dot(common.SafeNormalize(common.FlattenXZ(rootFwd))) > common.Cos45 {
			radius = uprightHeadLeanRadius
		}
		if distSq > radius*radius {
			return component.GetupNone
		}
		return component.GetupUpright
	}

	if !c.services.Physics.IsSupportedBelow(component.PartSpine0, horizontalSupportDistance) {
		return component.GetupNone
	}
	d := common.WorldUp.Dot(rootFwd)
	switch {
	case d <= common.Cos125:
		return component.GetupFront
	case d <= common.Cos55:
		if rootUp.Cross(rootFwd).Dot(common.WorldUp) >= common.Cos90 {
			return component.GetupRight
		}
		return component.GetupLeft
	default:
		return component.GetupBack
	}
}

// OrientRen turns the actor so a side getup starts facing along the spine.
// Other positions leave the actor matrix untouched.
func (c *Controller) OrientRen(pos component.GetupPosition) {
	if pos != component.GetupLeft && pos != component.GetupRight {
		return
	}
	spine, ok := c.services.Animation.BodyPartTransform(component.PartSpine0)
	if !ok {
		return
	}
	fwd := common.FlattenXZ(common.BasisY(spine))
	if fwd.LenSqr() < 1e-12 {
		return
	}
	fwd = fwd.Normalize()
	angle := math.Acos(mgl64.Clamp(fwd.Dot(common.WorldForward), -1, 1))
	if fwd.X() < 0 {
		angle = -angle
	}
	if pos == component.GetupRight {
		angle += math.Pi / 2
	} else {
		angle -= math.Pi / 2
	}
	actorPos, _ := c.services.Game.ActorPosition(c.actor)
	c.services.Animation.SetActorMatrix(common.YawMatrix(angle, actorPos))
}
