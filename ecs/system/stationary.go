package system

import "github.com/milk9111/ragdoll/ecs/component"

// movementSampleParts are averaged to measure how fast the body moves.
var movementSampleParts = [3]component.BodyPart{
	component.PartSpine0,
	component.PartRightHand0,
	component.PartLeftFoot0,
}

// SetStationaryTimer changes the speed threshold and wait time used to
// decide the body has settled.
func (c *Controller) SetStationaryTimer(minSpeed, waitTime float64) {
	c.stationaryMinSpeed = minSpeed
	c.stationaryWaitTime = waitTime
}

func (c *Controller) ResetStationaryTimer() {
	c.stationaryElapsedTime = 0
}

func (c *Controller) IsBodyStationary() bool {
	return c.stationaryElapsedTime > c.stationaryWaitTime
}

func (c *Controller) StationaryElapsed() float64 {
	return c.stationaryElapsedTime
}

// CheckBodyForMovement samples body speed relative to whatever supports it
// and accumulates or resets the stationary timer.
func (c *Controller) CheckBodyForMovement(dt float64) {
	anim := c.services.Animation
	avg := anim.BodyPartVelocity(movementSampleParts[0]).
		Add(anim.BodyPartVelocity(movementSampleParts[1])).
		Add(anim.BodyPartVelocity(movementSampleParts[2])).
		Mul(1.0 / 3.0)
	speed := avg.Sub(c.services.Physics.SupportingVelocity()).Len()
	if speed < c.stationaryMinSpeed {
		c.stationaryElapsedTime += dt
		return
	}
	c.stationaryElapsedTime = 0
}
