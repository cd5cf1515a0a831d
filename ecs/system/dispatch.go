package system

import (
	"fmt"

	"github.com/milk9111/ragdoll/ecs/component"
)

// dispatch hands params to the matching performance and makes it current.
// The performance is started before it takes the slot so that a Blend
// leaving a previous cleanup does not disconnect its own restart.
func (c *Controller) dispatch(params component.PerformanceParams) {
	var perf component.Performance
	switch p := params.(type) {
	case component.EPAParams:
		c.epa.SetParams(p)
		perf = c.epa
	case component.ExplosionParams:
		c.explosion.SetParams(p)
		perf = c.explosion
	case component.PunchParams:
		c.punch.SetParams(p)
		perf = c.punch
	case component.ShoveParams:
		c.shove.SetParams(p)
		perf = c.shove
	case component.ThrowParams:
		c.throw.SetParams(p)
		perf = c.throw
	case component.HitReactParams:
		c.hitReact.SetParams(p)
		perf = c.hitReact
	case component.FallingParams:
		c.falling.SetParams(p)
		perf = c.falling
	case component.GunshotParams:
		c.gunshot.SetParams(p)
		perf = c.gunshot
	case component.BalanceParams:
		c.balance.SetParams(p)
		perf = c.balance
	case component.BlendParams:
		c.blend.SetParams(p)
		perf = c.blend
	default:
		panic(fmt.Sprintf("performance: no handler for params %T", params))
	}
	if perf.Type() != params.Type() {
		panic(fmt.Sprintf("performance: %T dispatched to %s", params, perf.Type()))
	}
	if c.verbose {
		c.logger.Printf("performance: actor=%s start %s attacker=%s", c.actor, perf.Type(), c.attacker)
	}
	perf.Start()
	c.current = perf
}
