package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	wallLeanThreshold = 0.75
	exitScanRange     = 1.0
	exitStepScale     = 0.016
	headBonkReach     = 0.12
)

// getupChore is the animation block that plays a getup from one position.
type getupChore struct {
	chore string
	block string
}

// Parameterized chores turn toward the attacker; the plain ones play as is.
var (
	parameterizedChores = [...]getupChore{
		component.GetupNone:    {},
		component.GetupFront:   {"CHORE_PARAMETERIZED_GETUP_FROM_FRONT", "CBLK_Param_Getup_Front"},
		component.GetupBack:    {"CHORE_PARAMETERIZED_GETUP_FROM_BACK", "CBLK_Param_Getup_Back"},
		component.GetupLeft:    {"CHORE_PARAMETERIZED_GETUP_FROM_LEFT", "CBLK_Param_Getup_Left"},
		component.GetupRight:   {"CHORE_PARAMETERIZED_GETUP_FROM_RIGHT", "CBLK_Param_Getup_Right"},
		component.GetupUpright: {"CHORE_PARAMETERIZED_UPRIGHT_RECOVERY", "CBLK_Param_Recover_Upright"},
		component.GetupDead:    {"CHORE_DEATH", "CBLK_StaticDeadPose"},
	}
	plainChores = [...]getupChore{
		component.GetupNone:    {},
		component.GetupFront:   {"CHORE_GETUP_FROM_FRONT", "CBLK_Euph_Getup_Front"},
		component.GetupBack:    {"CHORE_GETUP_FROM_BACK", "CBLK_Euph_Getup_Back"},
		component.GetupLeft:    {"CHORE_GETUP_FROM_LEFT", "CBLK_Euph_Getup_Left"},
		component.GetupRight:   {"CHORE_GETUP_FROM_RIGHT", "CBLK_Euph_Getup_Right"},
		component.GetupUpright: {"CHORE_UPRIGHT_RECOVERY", "CBLK_Euph_Recover_Upright"},
		component.GetupDead:    {"CHORE_DEATH", "CBLK_StaticDeadPose"},
	}
)

// choreFor looks up the getup chore for pos. It panics when pos has none,
// which only happens for GetupNone.
func choreFor(pos component.GetupPosition, parameterized bool) getupChore {
	table := plainChores[:]
	if parameterized {
		table = parameterizedChores[:]
	}
	if pos < 0 || int(pos) >= len(table) || table[pos].chore == "" {
		panic("blend: no getup chore for " + pos.String())
	}
	return table[pos]
}

// startGetupChore plays the getup chore for pos, turned toward the attacker
// when there is one.
func (p *BlendPerformance) startGetupChore(pos component.GetupPosition) {
	heading := 0.0
	parameterized := p.params.AttackerID() != component.NoActor
	if parameterized {
		heading = p.headingTo(p.params.AttackerID())
	}
	c := choreFor(pos, parameterized)
	p.anim().StartBlock(c.chore, c.block, heading)
}

// headingTo is the signed yaw from the actor's facing to target, flattened
// onto the ground plane.
func (p *BlendPerformance) headingTo(target component.ActorID) float64 {
	game := p.owner.services.Game
	targetPos, _ := game.ActorPosition(target)
	selfPos, _ := game.ActorPosition(p.owner.actor)
	fwd := p.anim().ActorForward()

	dir := common.FlattenXZ(targetPos.Sub(selfPos))
	if dir.LenSqr() > 1e-8 {
		dir = dir.Normalize()
	} else {
		dir = fwd
	}
	return math.Atan2(-fwd.X()*dir.Z()+fwd.Z()*dir.X(), fwd.X()*dir.X()+fwd.Z()*dir.Z())
}

// checkActorOrient compares the actor's facing with its up axis. up asks
// whether they agree, !up whether they oppose.
func (p *BlendPerformance) checkActorOrient(up bool) bool {
	anim := p.anim()
	fwd := common.SafeNormalize(common.BasisY(anim.ActorMatrix()))
	actorFwd := common.FlattenXZ(anim.ActorForward())
	d := fwd.Dot(actorFwd)
	if up && d < 0 {
		return false
	}
	if !up && d > 0 {
		return false
	}
	return true
}

// determineGetupChore settles on the getup to play given the classified
// position and its wall-corrected variant, turns the actor for side getups
// and starts the chore. It returns the position played.
func (p *BlendPerformance) determineGetupChore(classified, corrected component.GetupPosition) component.GetupPosition {
	pos := corrected
	if classified != corrected {
		switch corrected {
		case component.GetupBack:
			if !p.checkActorOrient(false) {
				pos = classified
			}
		case component.GetupFront:
			if !p.checkActorOrient(true) {
				pos = classified
			}
		}
	}

	switch pos {
	case component.GetupFront:
		if !p.checkActorOrient(true) {
			pos = component.GetupRight
		}
	case component.GetupBack:
		if !p.checkActorOrient(false) {
			pos = component.GetupLeft
		}
	}

	p.owner.OrientRen(pos)
	p.startGetupChore(pos)
	return pos
}

// castBlocked reports an obstruction within dist of from along dir.
func (p *BlendPerformance) castBlocked(from, dir mgl64.Vec3, dist float64) bool {
	return !p.phys().LineOfSight(from, from.Add(dir.Mul(dist)))
}

// exitDirection points away from whatever surrounds the pelvis within
// dist along the four ground axes. Zero when the actor is boxed in or free.
func (p *BlendPerformance) exitDirection(dist float64) mgl64.Vec3 {
	from := p.owner.partPosition(component.PartSpine0)
	var out mgl64.Vec3
	if p.castBlocked(from, mgl64.Vec3{1, 0, 0}, dist) {
		out[0]--
	}
	if p.castBlocked(from, mgl64.Vec3{-1, 0, 0}, dist) {
		out[0]++
	}
	if p.castBlocked(from, mgl64.Vec3{0, 0, 1}, dist) {
		out[2]--
	}
	if p.castBlocked(from, mgl64.Vec3{0, 0, -1}, dist) {
		out[2]++
	}
	return common.SafeNormalize(out)
}

// correctForWallLeaning swaps the getup when a wall would block it and
// returns a small step away from the wall to blend toward.
func (p *BlendPerformance) correctForWallLeaning(pos component.GetupPosition) (component.GetupPosition, mgl64.Vec3) {
	moveOut := 0.0
	switch pos {
	case component.GetupLeft, component.GetupRight:
		spine, ok := p.owner.partTransform(component.PartSpine0)
		if !ok {
			break
		}
		from := common.Translation(spine)
		dir := common.SafeNormalize(common.FlattenXZ(common.BasisZ(spine)))
		if p.castBlocked(from, dir, wallLeanThreshold) {
			pos = component.GetupBack
			moveOut = 2
		}
		if p.castBlocked(from, dir, -wallLeanThreshold) {
			pos = component.GetupFront
			moveOut = 2
		}
	case component.GetupBack:
		hips, ok := p.owner.partTransform(component.PartHips0)
		if !ok {
			break
		}
		from := common.Translation(hips)
		up := common.SafeNormalize(common.FlattenXZ(common.BasisY(hips)))
		if p.castBlocked(from, up, -wallLeanThreshold) {
			pos = component.GetupLeft
			side := common.SafeNormalize(common.FlattenXZ(common.BasisX(hips)))
			if p.castBlocked(from, side, wallLeanThreshold) {
				pos = component.GetupRight
			}
			moveOut = 3
		}
	}

	if moveOut == 0 {
		return pos, mgl64.Vec3{}
	}
	off := p.exitDirection(exitScanRange).Mul(exitStepScale * moveOut)
	off[1] = 0
	return pos, off
}

// isHeadBlocked casts just above the chest while the actor still moves.
func (p *BlendPerformance) isHeadBlocked() bool {
	if p.owner.services.Game.ActorSpeed(p.owner.actor) == 0 {
		return false
	}
	return p.castBlocked(p.owner.partPosition(component.PartSpine3), common.WorldUp, headBonkReach)
}
