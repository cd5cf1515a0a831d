package ecs

import (
	"fmt"
	"math"
)

// Entity is a generational handle to one actor slot. The slot id sits in
// the low word and the slot's generation at issue time in the high word, so
// a handle to a destroyed actor never matches the slot's next occupant.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

func handle(id entityID, gen generation) Entity {
	return Entity(gen)<<32 | Entity(id)
}

func (e Entity) id() entityID { return entityID(e & math.MaxUint32) }
func (e Entity) generation() generation { return generation(e >> 32) }

// String formats the handle as slot:generation.
func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.id(), e.generation())
}
