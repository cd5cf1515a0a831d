package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

type fakeAnim struct {
	transforms map[component.BodyPart]mgl64.Mat4
	velocities map[component.BodyPart]mgl64.Vec3

	active  map[component.Behavior]bool
	started []component.Behavior
	data    map[component.Behavior]component.OverrideData
	refuse  map[component.Behavior]bool

	epa       bool
	noAgent   bool
	ended     int
	hands     [component.ArmCount]component.HandPose
	momentum  float64
	truncate  bool
	blocks    []string
	headings  []float64
	blockLeft float64
	actor     mgl64.Mat4
}

func newFakeAnim() *fakeAnim {
	a := &fakeAnim{
		transforms: make(map[component.BodyPart]mgl64.Mat4),
		velocities: make(map[component.BodyPart]mgl64.Vec3),
		active:     make(map[component.Behavior]bool),
		data:       make(map[component.Behavior]component.OverrideData),
		refuse:     make(map[component.Behavior]bool),
		truncate:   true,
		actor:      mgl64.Ident4(),
	}
	a.standAt(mgl64.Vec3{0, 0.9, 0})
	return a
}

func frame(x, y, z, pos mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), pos.Vec4(1))
}

// pose places every part at spine with the given axes. x is derived so the
// frame stays right handed.
func (a *fakeAnim) pose(up, fwd, spine mgl64.Vec3) {
	m := frame(up.Cross(fwd), up, fwd, spine)
	for _, part := range component.BodyParts() {
		a.transforms[part] = m
	}
}

// standAt poses an upright body with its pelvis at spine.
func (a *fakeAnim) standAt(spine mgl64.Vec3) {
	a.pose(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}, spine)
	a.place(component.PartLeftFoot0, spine.Sub(mgl64.Vec3{0, 0.9, 0}))
	a.place(component.PartRightFoot0, spine.Sub(mgl64.Vec3{0, 0.9, 0}))
	a.place(component.PartNeck2, spine.Add(mgl64.Vec3{0, 0.7, 0}))
}

func (a *fakeAnim) lie(up, fwd mgl64.Vec3) {
	a.pose(up, fwd, mgl64.Vec3{0, 0.2, 0})
}

func (a *fakeAnim) place(part component.BodyPart, pos mgl64.Vec3) {
	m := a.transforms[part]
	m.SetCol(3, pos.Vec4(1))
	a.transforms[part] = m
}

func (a *fakeAnim) wasStarted(b component.Behavior) bool {
	for _, s := range a.started {
		if s == b {
			return true
		}
	}
	return false
}

func (a *fakeAnim) BodyPartTransform(part component.BodyPart) (mgl64.Mat4, bool) {
	m, ok := a.transforms[part]
	return m, ok
}

func (a *fakeAnim) BodyPartVelocity(part component.BodyPart) mgl64.Vec3 {
	return a.velocities[part]
}

func (a *fakeAnim) StartBehavior(b component.Behavior, data *component.OverrideData) bool {
	if a.refuse[b] {
		return false
	}
	a.started = append(a.started, b)
	a.active[b] = true
	if data != nil {
		a.data[b] = *data
	} else {
		a.data[b] = component.OverrideData{}
	}
	return true
}

func (a *fakeAnim) StopBehavior(b component.Behavior) {
	delete(a.active, b)
}

func (a *fakeAnim) StopAllBehaviors() {
	clear(a.active)
}

func (a *fakeAnim) IsBehaviorActiveAndDriving() bool {
	return a.epa || len(a.active) > 0
}

func (a *fakeAnim) EndBehaviorControl() {
	a.ended++
	a.epa = false
	clear(a.active)
}

func (a *fakeAnim) IsAgentAvailable() bool { return !a.noAgent }

func (a *fakeAnim) StartEPA() bool {
	a.epa = true
	return true
}

func (a *fakeAnim) StopEPA() { a.epa = false }

func (a *fakeAnim) SetMomentumMultiplier(m float64) { a.momentum = m }

func (a *fakeAnim) SetHandOverlay(arm component.Arm, pose component.HandPose) {
	a.hands[arm] = pose
}

func (a *fakeAnim) SetTruncateMovement(enabled bool) { a.truncate = enabled }

func (a *fakeAnim) StartBlock(chore, block string, heading float64) {
	a.blocks = append(a.blocks, block)
	a.headings = append(a.headings, heading)
	a.blockLeft = 1.2
}

func (a *fakeAnim) PrimaryBlockRemainingTime() float64 { return a.blockLeft }

func (a *fakeAnim) ActorMatrix() mgl64.Mat4 { return a.actor }

func (a *fakeAnim) SetActorMatrix(m mgl64.Mat4) { a.actor = m }

func (a *fakeAnim) ActorForward() mgl64.Vec3 { return common.BasisZ(a.actor) }

type fakePhysics struct {
	supportedBelow bool
	supported      bool
	normal         mgl64.Vec3
	supportVel     mgl64.Vec3
	blocked        bool
	hit            *component.RayHit
	bodies         map[component.BodyRef]mgl64.Mat4
}

func (p *fakePhysics) IsSupportedBelow(component.BodyPart, float64) bool { return p.supportedBelow }

func (p *fakePhysics) Support() (mgl64.Vec3, bool) { return p.normal, p.supported }

func (p *fakePhysics) SupportingVelocity() mgl64.Vec3 { return p.supportVel }

func (p *fakePhysics) LineOfSight(from, to mgl64.Vec3) bool { return !p.blocked }

func (p *fakePhysics) RayCast(from, to mgl64.Vec3) (component.RayHit, bool) {
	if p.hit == nil {
		return component.RayHit{}, false
	}
	return *p.hit, true
}

func (p *fakePhysics) BodyTransform(body component.BodyRef) (mgl64.Mat4, bool) {
	m, ok := p.bodies[body]
	return m, ok
}

type fakeEdge struct {
	start, end mgl64.Vec3
	owner      component.BodyRef
}

// fakeEnv hands out edge i as handle i+1.
type fakeEnv struct {
	edges []fakeEdge
}

func (e *fakeEnv) edge(h component.EdgeHandle) fakeEdge {
	return e.edges[h-1]
}

func (e *fakeEnv) FindEdgesInRadius(center mgl64.Vec3, radius float64, max int) []component.EdgeHandle {
	var out []component.EdgeHandle
	for i, edge := range e.edges {
		if len(out) >= max {
			break
		}
		if _, d := common.ClosestPointOnSegment(edge.start, edge.end, center); d <= radius {
			out = append(out, component.EdgeHandle(i+1))
		}
	}
	return out
}

func (e *fakeEnv) EdgePosition(h component.EdgeHandle) (mgl64.Vec3, mgl64.Vec3) {
	edge := e.edge(h)
	return edge.start, edge.end
}

func (e *fakeEnv) DistanceToEdge(h component.EdgeHandle, p mgl64.Vec3) (mgl64.Vec3, float64) {
	edge := e.edge(h)
	return common.ClosestPointOnSegment(edge.start, edge.end, p)
}

func (e *fakeEnv) EdgeOwner(h component.EdgeHandle) component.BodyRef {
	return e.edge(h).owner
}

type fakeGame struct {
	dead      bool
	cannot    bool
	positions map[component.ActorID]mgl64.Vec3
	speeds    map[component.ActorID]float64
	masses    map[component.ActorID]float64
	// looked up records every id passed to ActorSpeed or ActorMass.
	lookedUp []component.ActorID
}

func (g *fakeGame) IsDead() bool             { return g.dead }
func (g *fakeGame) CanRunPerformances() bool { return !g.cannot }

func (g *fakeGame) ActorPosition(id component.ActorID) (mgl64.Vec3, bool) {
	p, ok := g.positions[id]
	return p, ok
}

func (g *fakeGame) ActorSpeed(id component.ActorID) float64 {
	g.lookedUp = append(g.lookedUp, id)
	return g.speeds[id]
}

func (g *fakeGame) ActorMass(id component.ActorID) float64 {
	g.lookedUp = append(g.lookedUp, id)
	return g.masses[id]
}

type fakeConstraint struct {
	part      component.BodyPart
	body      component.BodyRef
	anchor    mgl64.Vec3
	threshold float64
	broken    bool
	destroyed bool
}

func (c *fakeConstraint) Broken() bool { return c.broken }
func (c *fakeConstraint) Destroy()     { c.destroyed = true }

type fakeConstraints struct {
	created []*fakeConstraint
}

func (f *fakeConstraints) CreateBallSocket(part component.BodyPart, offset mgl64.Vec3, body component.BodyRef, anchor mgl64.Vec3, threshold float64) component.Constraint {
	c := &fakeConstraint{part: part, body: body, anchor: anchor, threshold: threshold}
	f.created = append(f.created, c)
	return c
}

// rig is one actor's worth of fake services: an upright body standing on
// flat ground at the origin.
type rig struct {
	id   component.ActorID
	anim *fakeAnim
	phys *fakePhysics
	env  *fakeEnv
	game *fakeGame
	cons *fakeConstraints
}

func newRig() *rig {
	id := component.NewActorID()
	return &rig{
		id:   id,
		anim: newFakeAnim(),
		phys: &fakePhysics{
			supportedBelow: true,
			supported:      true,
			normal:         common.WorldUp,
			bodies:         make(map[component.BodyRef]mgl64.Mat4),
		},
		env: &fakeEnv{},
		game: &fakeGame{
			positions: map[component.ActorID]mgl64.Vec3{id: {}},
			speeds:    make(map[component.ActorID]float64),
			masses:    map[component.ActorID]float64{id: 75},
		},
		cons: &fakeConstraints{},
	}
}

func (r *rig) services() component.Services {
	return component.Services{
		Animation:   r.anim,
		Physics:     r.phys,
		Environment: r.env,
		Game:        r.game,
		Constraints: r.cons,
	}
}

// newTestController uses the default tuning with the stuck watchdog off.
func newTestController(t *testing.T, r *rig, mutate ...func(*component.Tuning)) *Controller {
	t.Helper()
	tuning := component.DefaultTuning()
	tuning.Controller.StuckTimeout = 0
	for _, m := range mutate {
		m(&tuning)
	}
	return NewController(r.id, r.services(), tuning, nil)
}

func noRecovery(t *component.Tuning) {
	t.Controller.RecoveryEnabled = false
}

func mustActive(t *testing.T, c *Controller, want component.PerformanceType) {
	t.Helper()
	got := c.Active()
	if got == nil {
		t.Fatalf("expected %s active, got none", want)
	}
	if got.Type() != want {
		t.Fatalf("expected %s active, got %s", want, got.Type())
	}
}

func mustState(t *testing.T, p component.Performance, want string) {
	t.Helper()
	if got := p.State(); got != want {
		t.Fatalf("expected %s in %s, got %s", p.Type(), want, got)
	}
}

func approxVec(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-6)
}
