package component

import (
	"fmt"
	"hash/crc32"
)

// EventType is the closed set of events a performance can react to.
type EventType int

const (
	EventInvalid EventType = iota
	EventAnimationEnd
	EventLeftArmReached
	EventRightArmReached
	EventRelaxed
	EventDefend
	EventFlail
	EventStaggerBalanced
	EventStaggerBalancedFeetOnGround
	EventStaggerTrip
	EventStaggerMaxSteps
	EventStaggerStepping
	EventStaggerStartedFalling
	EventStaggerStoppedFalling
	EventCollision
	EventTumble
	EventConstrainLeftHand
	EventConstrainRightHand
	EventUnConstrainLeftHand
	EventUnConstrainRightHand
	EventHangFall
	EventMotionTransferIn
	EventMotionTransferOut
	EventBlendFrameDone
	eventTypeCount
)

var eventTypeNames = [eventTypeCount]string{
	"Invalid",
	"AnimationEnd",
	"LeftArmReached",
	"RightArmReached",
	"Relaxed",
	"Defend",
	"Flail",
	"StaggerBalanced",
	"StaggerBalancedFeetOnGround",
	"StaggerTrip",
	"StaggerMaxSteps",
	"StaggerStepping",
	"StaggerStartedFalling",
	"StaggerStoppedFalling",
	"Collision",
	"Tumble",
	"ConstrainLeftHand",
	"ConstrainRightHand",
	"UnConstrainLeftHand",
	"UnConstrainRightHand",
	"HangFall",
	"MotionTransferIn",
	"MotionTransferOut",
	"BlendFrameDone",
}

func (t EventType) String() string {
	if t < 0 || t >= eventTypeCount {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

// ParseEventType resolves an event name, case sensitive.
func ParseEventType(name string) (EventType, bool) {
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), true
		}
	}
	return EventInvalid, false
}

// Event is delivered to the active performance. Data and Collision are only
// set for behavior feedback that carries them.
type Event struct {
	Type      EventType
	Data      *OverrideData
	Collision *CollisionData
}

// Feedback is the kind reported by the behavior layer. Values mirror the
// behavior-originated event types; anything outside the known range is
// foreign and maps to EventInvalid.
type Feedback int

const (
	FeedbackLeftArmReached Feedback = iota + 1
	FeedbackRightArmReached
	FeedbackRelaxed
	FeedbackDefend
	FeedbackFlail
	FeedbackStaggerBalanced
	FeedbackStaggerBalancedFeetOnGround
	FeedbackStaggerTrip
	FeedbackStaggerMaxSteps
	FeedbackStaggerStepping
	FeedbackStaggerStartedFalling
	FeedbackStaggerStoppedFalling
	FeedbackCollision
	FeedbackTumble
	FeedbackConstrainLeftHand
	FeedbackConstrainRightHand
	FeedbackUnConstrainLeftHand
	FeedbackUnConstrainRightHand
	FeedbackHangFall
	FeedbackMotionTransferIn
	FeedbackMotionTransferOut
	FeedbackBlendFrameDone
)

// FeedbackEventType converts behavior feedback to an event type. ok is false
// for unknown kinds.
func FeedbackEventType(kind Feedback) (t EventType, ok bool) {
	switch kind {
	case FeedbackLeftArmReached:
		return EventLeftArmReached, true
	case FeedbackRightArmReached:
		return EventRightArmReached, true
	case FeedbackRelaxed:
		return EventRelaxed, true
	case FeedbackDefend:
		return EventDefend, true
	case FeedbackFlail:
		return EventFlail, true
	case FeedbackStaggerBalanced:
		return EventStaggerBalanced, true
	case FeedbackStaggerBalancedFeetOnGround:
		return EventStaggerBalancedFeetOnGround, true
	case FeedbackStaggerTrip:
		return EventStaggerTrip, true
	case FeedbackStaggerMaxSteps:
		return EventStaggerMaxSteps, true
	case FeedbackStaggerStepping:
		return EventStaggerStepping, true
	case FeedbackStaggerStartedFalling:
		return EventStaggerStartedFalling, true
	case FeedbackStaggerStoppedFalling:
		return EventStaggerStoppedFalling, true
	case FeedbackCollision:
		return EventCollision, true
	case FeedbackTumble:
		return EventTumble, true
	case FeedbackConstrainLeftHand:
		return EventConstrainLeftHand, true
	case FeedbackConstrainRightHand:
		return EventConstrainRightHand, true
	case FeedbackUnConstrainLeftHand:
		return EventUnConstrainLeftHand, true
	case FeedbackUnConstrainRightHand:
		return EventUnConstrainRightHand, true
	case FeedbackHangFall:
		return EventHangFall, true
	case FeedbackMotionTransferIn:
		return EventMotionTransferIn, true
	case FeedbackMotionTransferOut:
		return EventMotionTransferOut, true
	case FeedbackBlendFrameDone:
		return EventBlendFrameDone, true
	}
	return EventInvalid, false
}

// FeedbackFor is the inverse of FeedbackEventType for behavior-originated
// event types.
func FeedbackFor(t EventType) (Feedback, bool) {
	if t < EventLeftArmReached || t >= eventTypeCount {
		return 0, false
	}
	return Feedback(t - EventLeftArmReached + 1), true
}

// HashName hashes an animation event name the way the animation layer
// reports it.
func HashName(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

// AnimationEndHash is the only animation event the performances understand.
var AnimationEndHash = HashName("END")
