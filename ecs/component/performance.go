package component

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PerformanceType tags each reactive behavior kind.
type PerformanceType int

const (
	PerformanceEPA PerformanceType = iota
	PerformanceExplosion
	PerformancePunch
	PerformanceShove
	PerformanceThrow
	PerformanceHitReact
	PerformanceFalling
	PerformanceGunshot
	PerformanceBalance
	PerformanceBlend
	PerformanceTypeCount
)

var performanceTypeNames = [PerformanceTypeCount]string{
	"EPA",
	"Explosion",
	"Punch",
	"Shove",
	"Throw",
	"HitReact",
	"Falling",
	"Gunshot",
	"Balance",
	"Blend",
}

func (t PerformanceType) String() string {
	if t < 0 || t >= PerformanceTypeCount {
		return fmt.Sprintf("PerformanceType(%d)", int(t))
	}
	return performanceTypeNames[t]
}

func ParsePerformanceType(name string) (PerformanceType, bool) {
	for i, n := range performanceTypeNames {
		if n == name {
			return PerformanceType(i), true
		}
	}
	return 0, false
}

// Performance is one reactive behavior's state machine.
type Performance interface {
	Type() PerformanceType
	// State names the current state for diagnostics.
	State() string
	Initialize(settings PerformanceSettings)
	Start()
	Stop()
	Think(dt float64)
	OnEvent(ev Event)
}

// PerformanceSettings are the per-kind stationary thresholds a performance
// hands to its controller when it enters a settling state.
type PerformanceSettings struct {
	StationarySpeedThreshold float64
	StationaryWaitTime       float64
}

// GetupPosition classifies the resting orientation of the body.
type GetupPosition int

const (
	GetupNone GetupPosition = iota
	GetupFront
	GetupBack
	GetupLeft
	GetupRight
	GetupUpright
	GetupDead
	getupCount
)

var getupNames = [getupCount]string{"None", "Front", "Back", "Left", "Right", "Upright", "Dead"}

func (p GetupPosition) String() string {
	if p < 0 || p >= getupCount {
		return fmt.Sprintf("GetupPosition(%d)", int(p))
	}
	return getupNames[p]
}

func ParseGetupPosition(name string) (GetupPosition, bool) {
	for i, n := range getupNames {
		if n == name {
			return GetupPosition(i), true
		}
	}
	return GetupNone, false
}

// Arm selects a grabbing limb.
type Arm int

const (
	ArmLeft Arm = iota
	ArmRight
	ArmCount
)

func (a Arm) String() string {
	switch a {
	case ArmLeft:
		return "left"
	case ArmRight:
		return "right"
	}
	return fmt.Sprintf("Arm(%d)", int(a))
}

// BodyRef names a host physics body. Zero means none.
type BodyRef uint64

// EdgeHandle names a graspable edge in the environment. Zero means none.
type EdgeHandle uint64

// GrabbedEdge is the edge the actor last located. Start and End are local
// to OwnerBody when it is set, world space otherwise.
type GrabbedEdge struct {
	Edge      EdgeHandle
	Start     mgl64.Vec3
	End       mgl64.Vec3
	OwnerBody BodyRef
}
