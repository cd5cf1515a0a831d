package system

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/ecs/component"
)

// Controller owns one instance of every performance for a single actor and
// keeps at most one of them active.
type Controller struct {
	actor    component.ActorID
	services component.Services
	tuning   component.Tuning
	logger   *log.Logger
	verbose  bool

	epa       *EPAPerformance
	explosion *ExplosionPerformance
	punch     *PunchPerformance
	shove     *ShovePerformance
	throw     *ThrowPerformance
	hitReact  *HitReactPerformance
	falling   *FallingPerformance
	gunshot   *GunshotPerformance
	balance   *BalancePerformance
	blend     *BlendPerformance

	current  component.Performance
	attacker component.ActorID

	constraintBreakThreshold float64
	grabDelayTimer           float64
	grabDelayThreshold       float64
	recoveryEnabled          bool
	transitioning            bool
	truncateMovement         bool

	handConstraints [component.ArmCount]component.Constraint
	grabbing        [component.ArmCount]bool
	grabbedEdge     component.GrabbedEdge

	stationaryMinSpeed    float64
	stationaryWaitTime    float64
	stationaryElapsedTime float64

	stuckElapsed float64
	stuckAnchor  mgl64.Vec3
}

var ControllerComponent = component.NewComponent[Controller]("controller")

// NewController builds a controller and its performances. A nil logger
// discards output.
func NewController(actor component.ActorID, services component.Services, tuning component.Tuning, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Controller{
		actor:                    actor,
		services:                 services,
		tuning:                   tuning,
		logger:                   logger,
		attacker:                 component.NoActor,
		constraintBreakThreshold: tuning.Controller.ConstraintBreakThreshold,
		grabDelayThreshold:       tuning.Controller.GrabDelayThreshold,
		recoveryEnabled:          tuning.Controller.RecoveryEnabled,
		truncateMovement:         true,
	}
	c.createPerformances()
	c.ApplyTuning(tuning)
	return c
}

func (c *Controller) createPerformances() {
	c.epa = newEPAPerformance(c)
	c.explosion = newExplosionPerformance(c)
	c.punch = newPunchPerformance(c)
	c.shove = newShovePerformance(c)
	c.throw = newThrowPerformance(c)
	c.hitReact = newHitReactPerformance(c)
	c.falling = newFallingPerformance(c)
	c.gunshot = newGunshotPerformance(c)
	c.balance = newBalancePerformance(c)
	c.blend = newBlendPerformance(c)
}

// performances lists every owned performance in PerformanceType order.
func (c *Controller) performances() [component.PerformanceTypeCount]component.Performance {
	return [component.PerformanceTypeCount]component.Performance{
		c.epa, c.explosion, c.punch, c.shove, c.throw,
		c.hitReact, c.falling, c.gunshot, c.balance, c.blend,
	}
}

// ApplyTuning replaces the tuning and re-initializes per-performance
// thresholds. Gunshot and Balance never settle on their own and keep zero
// thresholds.
func (c *Controller) ApplyTuning(tuning component.Tuning) {
	c.tuning = tuning
	c.constraintBreakThreshold = tuning.Controller.ConstraintBreakThreshold
	c.grabDelayThreshold = tuning.Controller.GrabDelayThreshold
	for _, p := range c.performances() {
		switch p.Type() {
		case component.PerformanceGunshot, component.PerformanceBalance:
			p.Initialize(component.PerformanceSettings{})
		default:
			p.Initialize(tuning.Settings(p.Type()))
		}
	}
}

// SetTakeover installs the EPA hand-off policy.
func (c *Controller) SetTakeover(t Takeover) {
	c.epa.SetTakeover(t)
}

// SetVerbose enables state transition tracing.
func (c *Controller) SetVerbose(verbose bool) {
	c.verbose = verbose
}

func (c *Controller) trace(machine, from, to string) {
	if c.verbose {
		c.logger.Printf("performance: actor=%s %s %s -> %s", c.actor, machine, from, to)
	}
}

func (c *Controller) Actor() component.ActorID {
	return c.actor
}

func (c *Controller) Attacker() component.ActorID {
	return c.attacker
}

// Destroy stops any active performance.
func (c *Controller) Destroy() {
	if c.IsEuphoriaActive() {
		c.StopPerformance()
	}
}

// Think advances the active performance and runs recovery detection.
func (c *Controller) Think(dt float64) {
	if c.current != nil {
		c.CheckForBrokenConstraints()
		c.current.Think(dt)
		c.grabDelayTimer += dt
		c.checkStuck(dt)
	}

	if c.services.Animation.IsBehaviorActiveAndDriving() && !c.transitioning && c.recoveryEnabled {
		c.CheckBodyForMovement(dt)
		if c.IsBodyStationary() {
			c.transitioning = true
			c.StartPerformance(component.BlendParams{
				Attacker:        component.Attacker{Attacker: c.attacker},
				InitialPosition: c.DetermineGetupPosition(),
			})
		}
	}
}

// checkStuck forces the performance off when the actor has barely moved for
// the configured timeout.
func (c *Controller) checkStuck(dt float64) {
	timeout := c.tuning.Controller.StuckTimeout
	if timeout <= 0 || c.current == nil {
		return
	}
	pos, ok := c.services.Game.ActorPosition(c.actor)
	if !ok {
		return
	}
	limit := c.tuning.Controller.StuckDistance
	if pos.Sub(c.stuckAnchor).LenSqr() < limit*limit {
		c.stuckElapsed += dt
		if c.stuckElapsed > timeout {
			c.logger.Printf("performance: actor=%s force stopping %s after %.1fs without moving", c.actor, c.current.Type(), c.stuckElapsed)
			c.StopPerformance()
		}
		return
	}
	c.stuckElapsed = 0
	c.stuckAnchor = pos
}

func (c *Controller) resetStuck() {
	c.stuckElapsed = 0
	if pos, ok := c.services.Game.ActorPosition(c.actor); ok {
		c.stuckAnchor = pos
	}
}

// StartPerformance stops whatever is active and starts the performance
// matching params. Without an active performance an animation agent must be
// available, otherwise the request is dropped.
func (c *Controller) StartPerformance(params component.PerformanceParams) {
	c.resetStuck()

	wasActive := c.current != nil
	if c.current != nil {
		c.current.Stop()
		c.current = nil
	}

	if params.Type() != component.PerformanceBlend {
		c.transitioning = false
		c.ResetStationaryTimer()
	}
	c.grabDelayTimer = 0

	if !wasActive && !c.services.Animation.IsAgentAvailable() {
		c.logger.Printf("performance: actor=%s no agents available, %s aborted", c.actor, params.Type())
		return
	}
	c.attacker = params.AttackerID()
	c.dispatch(params)
}

// StopPerformance routes the active performance through its cleanup and
// hands the body back to animation. No-op when nothing is active.
func (c *Controller) StopPerformance() {
	if c.current == nil {
		return
	}
	c.current.Stop()
	c.current = nil
	c.services.Animation.EndBehaviorControl()
	if c.grabbing[component.ArmLeft] {
		c.ReleaseConstraint(component.ArmLeft)
	}
	if c.grabbing[component.ArmRight] {
		c.ReleaseConstraint(component.ArmRight)
	}
	c.transitioning = false
}

// DisconnectPerformance clears the active slot without touching the
// animation layer.
func (c *Controller) DisconnectPerformance() {
	if c.current == nil {
		return
	}
	c.current = nil
	c.transitioning = false
}

func (c *Controller) IsEuphoriaActive() bool {
	return c.current != nil
}

// Active returns the active performance, or nil.
func (c *Controller) Active() component.Performance {
	return c.current
}

// Performance returns the owned instance of kind.
func (c *Controller) Performance(kind component.PerformanceType) component.Performance {
	if kind < 0 || kind >= component.PerformanceTypeCount {
		return nil
	}
	return c.performances()[kind]
}

// HandleAnimationEvent forwards a hashed animation event to the active
// performance.
func (c *Controller) HandleAnimationEvent(nameHash uint32) {
	if c.current == nil {
		return
	}
	c.current.OnEvent(c.animationEvent(nameHash))
}

// HandleBehaviorEvent forwards behavior feedback to the active performance.
func (c *Controller) HandleBehaviorEvent(kind component.Feedback, data *component.OverrideData, collision *component.CollisionData) {
	if c.current == nil {
		return
	}
	c.current.OnEvent(c.behaviorEvent(kind, data, collision))
}

func (c *Controller) animationEvent(nameHash uint32) component.Event {
	if nameHash == component.AnimationEndHash {
		return component.Event{Type: component.EventAnimationEnd}
	}
	c.logger.Printf("performance: actor=%s unknown animation event %#08x", c.actor, nameHash)
	return component.Event{Type: component.EventInvalid}
}

func (c *Controller) behaviorEvent(kind component.Feedback, data *component.OverrideData, collision *component.CollisionData) component.Event {
	t, ok := component.FeedbackEventType(kind)
	if !ok {
		c.logger.Printf("performance: actor=%s unknown behavior event %d", c.actor, int(kind))
		return component.Event{Type: component.EventInvalid}
	}
	return component.Event{Type: t, Data: data, Collision: collision}
}

func (c *Controller) SetTruncateMovementEnable(enabled bool) {
	c.truncateMovement = enabled
	c.services.Animation.SetTruncateMovement(enabled)
}

func (c *Controller) IsTruncateMovementEnabled() bool {
	return c.truncateMovement
}

func (c *Controller) EnableRecovery() {
	c.recoveryEnabled = true
}

func (c *Controller) DisableRecovery() {
	c.recoveryEnabled = false
}

func (c *Controller) IsRecoveryEnabled() bool {
	return c.recoveryEnabled
}

func (c *Controller) IsTransitioning() bool {
	return c.transitioning
}

// IsReadyToGrab gates grab attempts behind the grab delay.
func (c *Controller) IsReadyToGrab() bool {
	return c.grabDelayTimer > c.grabDelayThreshold
}

// GrabbedEdge exposes the controller-owned edge record to the active
// performance. Callers must not keep the pointer past the current call.
func (c *Controller) GrabbedEdge() *component.GrabbedEdge {
	return &c.grabbedEdge
}
