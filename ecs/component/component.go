package component

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID indexes a component store in a world. Zero is never issued.
type ComponentID uint32

var kinds struct {
	mu    sync.Mutex
	names []string
}

func registerKind(name string) ComponentID {
	kinds.mu.Lock()
	defer kinds.mu.Unlock()
	kinds.names = append(kinds.names, name)
	return ComponentID(len(kinds.names))
}

// KindName returns the name id was registered under.
func KindName(id ComponentID) string {
	kinds.mu.Lock()
	defer kinds.mu.Unlock()
	if id == 0 || int(id) > len(kinds.names) {
		return fmt.Sprintf("ComponentID(%d)", uint32(id))
	}
	return kinds.names[id-1]
}

// ComponentKind addresses the store holding T values.
type ComponentKind[T any] struct {
	id ComponentID
}

func (k ComponentKind[T]) ID() ComponentID { return k.id }
func (k ComponentKind[T]) Valid() bool { return k.id != 0 }
func (k ComponentKind[T]) String() string { return KindName(k.id) }

// Component is the package-level registration of one component type, such
// as ActorComponent.
type Component[T any] struct {
	kind ComponentKind[T]
}

// NewComponent registers a new store for T. Names only feed diagnostics and
// need not be unique.
func NewComponent[T any](name string) Component[T] {
	return Component[T]{kind: ComponentKind[T]{id: registerKind(name)}}
}

func (c Component[T]) Kind() ComponentKind[T] {
	return c.kind
}
