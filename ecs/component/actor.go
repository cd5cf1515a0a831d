package component

import "github.com/google/uuid"

// ActorID identifies a simulated character across services.
type ActorID = uuid.UUID

// NoActor is the attacker handle used when a stimulus has no instigator.
var NoActor = uuid.Nil

func NewActorID() ActorID {
	return uuid.New()
}

// Actor tags an entity as a simulated character.
type Actor struct {
	ID   ActorID
	Name string
}

var ActorComponent = NewComponent[Actor]("actor")
