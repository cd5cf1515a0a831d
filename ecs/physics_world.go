package ecs

import (
	"io"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/ragdoll/common"
	"github.com/milk9111/ragdoll/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeDynamic
	collisionTypeActor
)

const (
	gravity        = -9.8
	actorWidth     = 0.5
	actorHeight    = 1.8
	actorMass      = 75.0
	groundFriction = 0.8
)

// Feedback is behavior feedback the sandbox produced for an actor since the
// last drain.
type Feedback struct {
	Actor     component.ActorID
	Kind      component.Feedback
	Data      *component.OverrideData
	Collision *component.CollisionData
}

type sandboxEdge struct {
	owner component.BodyRef
	// a and b are local to owner when it is set, world space otherwise.
	a, b mgl64.Vec3
}

// PhysicsWorld is a planar chipmunk sandbox hosting ragdoll actors. Every
// exported method is safe for concurrent use.
type PhysicsWorld struct {
	mu     sync.Mutex
	space  *cp.Space
	logger *log.Logger
	lastDT float64

	actors   map[component.ActorID]*SandboxActor
	order    []component.ActorID
	bodies   map[component.BodyRef]*cp.Body
	edges    map[component.EdgeHandle]*sandboxEdge
	nextBody component.BodyRef
	nextEdge component.EdgeHandle
	nextGrp  uint

	feedback []Feedback
}

// NewPhysicsWorld creates an empty sandbox with gravity along -Y. A nil
// logger discards output.
func NewPhysicsWorld(logger *log.Logger) *PhysicsWorld {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	pw := &PhysicsWorld{
		space:  space,
		logger: logger,
		actors: make(map[component.ActorID]*SandboxActor),
		bodies: make(map[component.BodyRef]*cp.Body),
		edges:  make(map[component.EdgeHandle]*sandboxEdge),
	}
	pw.setupHandlers()
	return pw
}

func toCP(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func fromCP(v cp.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, 0}
}

// bodyMatrix places a body in 3D: rotation about Z by its angle.
func bodyMatrix(body *cp.Body) mgl64.Mat4 {
	p := body.Position()
	return mgl64.Translate3D(p.X, p.Y, 0).Mul4(mgl64.HomogRotate3DZ(body.Angle()))
}

// AddGround adds a static solid segment.
func (pw *PhysicsWorld) AddGround(a, b mgl64.Vec3) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.addSegment(pw.space.StaticBody, toCP(a), toCP(b))
}

func (pw *PhysicsWorld) addSegment(body *cp.Body, a, b cp.Vector) *cp.Shape {
	shape := cp.NewSegment(body, a, b, 0.01)
	shape.SetFriction(groundFriction)
	shape.SetCollisionType(collisionTypeSolid)
	pw.space.AddShape(shape)
	return shape
}

// AddBody adds a box body that edges can be attached to. Kinematic bodies
// ignore gravity and keep the velocity they are given.
func (pw *PhysicsWorld) AddBody(pos mgl64.Vec3, width, height, mass float64, kinematic bool) component.BodyRef {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	var body *cp.Body
	if kinematic {
		body = cp.NewKinematicBody()
	} else {
		body = cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	}
	body.SetPosition(toCP(pos))
	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(groundFriction)
	shape.SetCollisionType(collisionTypeDynamic)
	pw.space.AddBody(body)
	pw.space.AddShape(shape)

	pw.nextBody++
	ref := pw.nextBody
	body.UserData = ref
	pw.bodies[ref] = body
	return ref
}

// SetBodyVelocity moves a body added with AddBody.
func (pw *PhysicsWorld) SetBodyVelocity(ref component.BodyRef, v mgl64.Vec3) bool {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	body, ok := pw.bodies[ref]
	if !ok {
		return false
	}
	body.SetVelocity(v.X(), v.Y())
	return true
}

// AddEdge adds a graspable solid segment. With an owner the endpoints are
// world positions converted into the owner's space at creation.
func (pw *PhysicsWorld) AddEdge(a, b mgl64.Vec3, owner component.BodyRef) component.EdgeHandle {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	edge := &sandboxEdge{a: a, b: b}
	body := pw.space.StaticBody
	if ownerBody, ok := pw.bodies[owner]; ok {
		m := bodyMatrix(ownerBody)
		edge.owner = owner
		edge.a = common.ToLocal(m, a)
		edge.b = common.ToLocal(m, b)
		body = ownerBody
	}
	pw.addSegment(body, toCP(edge.a), toCP(edge.b))

	pw.nextEdge++
	pw.edges[pw.nextEdge] = edge
	return pw.nextEdge
}

// SpawnActor creates an upright actor whose pelvis sits at pos, facing +X
// when facing is positive and -X otherwise.
func (pw *PhysicsWorld) SpawnActor(id component.ActorID, pos mgl64.Vec3, facing float64) *SandboxActor {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if a, ok := pw.actors[id]; ok {
		return a
	}

	body := cp.NewBody(actorMass, cp.MomentForBox(actorMass, actorWidth, actorHeight))
	body.SetPosition(toCP(pos))
	shape := cp.NewBox(body, actorWidth, actorHeight, 0)
	shape.SetFriction(groundFriction)
	shape.SetCollisionType(collisionTypeActor)
	pw.nextGrp++
	shape.SetFilter(cp.NewShapeFilter(pw.nextGrp, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	pw.space.AddBody(body)
	pw.space.AddShape(shape)

	if facing == 0 {
		facing = 1
	}
	a := &SandboxActor{
		world:      pw,
		id:         id,
		body:       body,
		shape:      shape,
		filter:     shape.Filter,
		facing:     math.Copysign(1, facing),
		active:     make(map[component.Behavior]*component.OverrideData),
		canPerform: true,
		agents:     true,
		truncate:   true,
	}
	a.actorMatrix = common.YawMatrix(a.facing*math.Pi/2, mgl64.Vec3{})
	shape.UserData = a
	body.UserData = a

	pw.actors[id] = a
	pw.order = append(pw.order, id)
	return a
}

// Actor looks up a spawned actor.
func (pw *PhysicsWorld) Actor(id component.ActorID) (*SandboxActor, bool) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	a, ok := pw.actors[id]
	return a, ok
}

// Step advances the space and every actor's behavior clocks.
func (pw *PhysicsWorld) Step(dt float64) {
	if dt <= 0 {
		return
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.lastDT = dt
	pw.space.Step(dt)
	for _, id := range pw.order {
		pw.actors[id].advance(dt)
	}
}

// DrainFeedback returns queued feedback in production order and clears the
// queue.
func (pw *PhysicsWorld) DrainFeedback() []Feedback {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	out := pw.feedback
	pw.feedback = nil
	return out
}

func (pw *PhysicsWorld) pushFeedback(fb Feedback) {
	pw.feedback = append(pw.feedback, fb)
}

func (pw *PhysicsWorld) setupHandlers() {
	for _, other := range []cp.CollisionType{collisionTypeSolid, collisionTypeDynamic, collisionTypeActor} {
		handler := pw.space.NewCollisionHandler(collisionTypeActor, other)
		handler.UserData = pw
		handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			world, ok := userData.(*PhysicsWorld)
			if !ok || world == nil {
				return true
			}
			shapeA, shapeB := arb.Shapes()
			actor, ok := shapeA.UserData.(*SandboxActor)
			if !ok || !actor.driving() {
				return true
			}
			data := &component.CollisionData{
				Part:   component.PartSpine0,
				Point:  fromCP(actor.body.Position()),
				Normal: fromCP(arb.Normal()),
			}
			if set := arb.ContactPointSet(); set.Count > 0 {
				data.Point = fromCP(set.Points[0].PointA)
			}
			if ref, ok := shapeB.Body().UserData.(component.BodyRef); ok {
				data.Other = ref
			}
			world.pushFeedback(Feedback{Actor: actor.id, Kind: component.FeedbackCollision, Collision: data})
			return true
		}
	}
}

// segmentQuery casts from a to b in the plane, ignoring the actor's own
// shape. Rays without planar extent hit nothing.
func (pw *PhysicsWorld) segmentQuery(from, to mgl64.Vec3, filter cp.ShapeFilter) (component.RayHit, bool) {
	a, b := toCP(from), toCP(to)
	if a.DistanceSq(b) < 1e-12 {
		return component.RayHit{}, false
	}
	info := pw.space.SegmentQueryFirst(a, b, 0, filter)
	if info.Shape == nil {
		return component.RayHit{}, false
	}
	point := from.Add(to.Sub(from).Mul(info.Alpha))
	return component.RayHit{
		Point:    point,
		Normal:   fromCP(info.Normal),
		Distance: to.Sub(from).Len() * info.Alpha,
	}, true
}

// edgeWorld returns an edge's endpoints in world space.
func (pw *PhysicsWorld) edgeWorld(edge *sandboxEdge) (mgl64.Vec3, mgl64.Vec3) {
	body, ok := pw.bodies[edge.owner]
	if !ok {
		return edge.a, edge.b
	}
	m := bodyMatrix(body)
	return common.ToWorld(m, edge.a), common.ToWorld(m, edge.b)
}

// edgesNear lists edges within radius of center, closest first.
func (pw *PhysicsWorld) edgesNear(center mgl64.Vec3, radius float64, max int) []component.EdgeHandle {
	type hit struct {
		edge component.EdgeHandle
		dist float64
	}
	var hits []hit
	for handle, edge := range pw.edges {
		a, b := pw.edgeWorld(edge)
		if _, d := common.ClosestPointOnSegment(a, b, center); d <= radius {
			hits = append(hits, hit{edge: handle, dist: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist == hits[j].dist {
			return hits[i].edge < hits[j].edge
		}
		return hits[i].dist < hits[j].dist
	})
	if max > 0 && len(hits) > max {
		hits = hits[:max]
	}
	out := make([]component.EdgeHandle, len(hits))
	for i, h := range hits {
		out[i] = h.edge
	}
	return out
}
