package component

// ControllerTuning holds the orchestrator constants.
type ControllerTuning struct {
	ConstraintBreakThreshold float64
	GrabDelayThreshold       float64
	RecoveryEnabled          bool
	// StuckTimeout forces StopPerformance when an active performance has
	// not moved the actor StuckDistance for this many seconds. Zero
	// disables the watchdog.
	StuckTimeout  float64
	StuckDistance float64
}

// FallingTuning holds the fall classification thresholds.
type FallingTuning struct {
	MinFallingImpactTime float64
	MinReactImpactTime   float64
	MaxReactHeight       float64
	ImpactRayLength      float64
	ImpactMinSpeed       float64
	HeightRayLength      float64
	FastSpeed            float64
	// SlideAngle is the steepest slope, in degrees, the body may rest on
	// without sliding.
	SlideAngle    float64
	FeetFirstDot  float64
	MomentumScale float64
	MomentumMin   float64
	MomentumMax   float64
}

// EPATuning configures the pin-away takeover extension point.
type EPATuning struct {
	// TakeoverScript is the name of a tengo script; empty keeps EPA inert.
	TakeoverScript string
}

// Tuning is the injected configuration shared by every controller.
type Tuning struct {
	Controller   ControllerTuning
	Performances [PerformanceTypeCount]PerformanceSettings
	Falling      FallingTuning
	EPA          EPATuning
}

// Settings returns the thresholds for one performance kind.
func (t *Tuning) Settings(kind PerformanceType) PerformanceSettings {
	if kind < 0 || kind >= PerformanceTypeCount {
		return PerformanceSettings{}
	}
	return t.Performances[kind]
}

func DefaultTuning() Tuning {
	t := Tuning{
		Controller: ControllerTuning{
			ConstraintBreakThreshold: 100,
			GrabDelayThreshold:       0.25,
			RecoveryEnabled:          true,
			StuckTimeout:             13,
			StuckDistance:            1,
		},
		Falling: FallingTuning{
			MinFallingImpactTime: 1.0,
			MinReactImpactTime:   0.2,
			MaxReactHeight:       0.7,
			ImpactRayLength:      20,
			ImpactMinSpeed:       0.2,
			HeightRayLength:      20,
			FastSpeed:            2,
			SlideAngle:           25,
			FeetFirstDot:         0.5,
			MomentumScale:        0.1,
			MomentumMin:          0.5,
			MomentumMax:          2,
		},
	}
	for kind := PerformanceType(0); kind < PerformanceTypeCount; kind++ {
		t.Performances[kind] = PerformanceSettings{StationarySpeedThreshold: 0.5, StationaryWaitTime: 1}
	}
	t.Performances[PerformanceBlend] = PerformanceSettings{StationarySpeedThreshold: 0.3, StationaryWaitTime: 1.5}
	return t
}
