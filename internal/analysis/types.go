package analysis

import (
	"strings"
	"time"
)

// Sport identifies the discipline of a session
type Sport string

const (
	SportCycling  Sport = "cycling"
	SportRunning  Sport = "running"
	SportSwimming Sport = "swimming"
	SportOther    Sport = "other"
)

// ParseSport maps free-form sport names (FIT enum strings, Strava types) to a Sport
func ParseSport(s string) Sport {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cycling", "ride", "virtualride", "bike", "biking", "e_biking", "ebikeride", "gravelride", "mountainbikeride":
		return SportCycling
	case "running", "run", "trailrun", "virtualrun", "treadmill", "trail_running":
		return SportRunning
	case "swimming", "swim", "poolswim", "openwaterswim", "lap_swimming", "open_water":
		return SportSwimming
	default:
		return SportOther
	}
}

// SessionRecord is a single (nominally 1 Hz) sample from a session.
// Records are ordered by non-decreasing Timestamp and are never mutated by this package.
type SessionRecord struct {
	Timestamp float64  // seconds elapsed since session start
	HeartRate *int     // bpm
	Power     *int     // watts
	Cadence   *int     // rpm or spm
	Speed     *float64 // m/s
	Distance  *float64 // cumulative meters
	Elevation *float64 // meters
	Grade     *float64 // percent
}

// Gender selects the Banister TRIMP coefficients
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AthleteProfile holds the athlete thresholds the engine needs.
// A zero FTP disables the power-based stress path and a zero ThresholdPace
// disables pace-zone features.
type AthleteProfile struct {
	FTP           float64 // watts
	MaxHR         float64
	RestingHR     float64
	ThresholdPace float64 // sec/km
	Gender        Gender
}

// DefaultProfile returns sensible defaults if not configured
func DefaultProfile() AthleteProfile {
	return AthleteProfile{
		MaxHR:     185,
		RestingHR: 50,
		Gender:    GenderMale,
	}
}

// StressMethod records how a session's TSS was derived
type StressMethod string

const (
	StressPowerBased     StressMethod = "power-based"
	StressHeartRateBased StressMethod = "heart-rate-based"
	StressDuration       StressMethod = "duration-fallback"
)

// SessionMeta is the partial session summary produced by the activity-file parser.
// Any field may be missing.
type SessionMeta struct {
	ID              string
	Name            string
	Sport           Sport
	StartTime       time.Time
	DurationSeconds float64
	MovingSeconds   float64
	DistanceMeters  float64
	ElevationGain   float64
	AvgHeartRate    *float64
	MaxHeartRate    *float64
	DeviceTSS       *float64
}

// TrainingSession is the aggregate summary of one imported activity
type TrainingSession struct {
	ID                string
	Name              string
	Sport             Sport
	Date              time.Time
	DurationSeconds   float64
	MovingSeconds     float64
	DistanceMeters    float64
	ElevationGain     float64
	AvgHeartRate      *float64
	MaxHeartRate      *float64
	AvgPower          *float64
	AvgCadence        *float64
	AvgSpeed          *float64
	TSS               float64
	StressMethod      StressMethod
	NormalizedPower   *int
	IntensityFactor   *float64
	GradeAdjustedPace *float64 // sec/km
	DeviceTSS         *float64
	TSSComparison     *TSSComparison
	AerobicEffect     *float64
	AnaerobicEffect   *float64
	SensorWarnings    []string
}

// DailyMetrics is one calendar day of the training-load series
type DailyMetrics struct {
	Date time.Time
	TSS  float64
	CTL  float64 // Chronic Training Load (42-day EWMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EWMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
	ACWR float64 // Acute:Chronic Workload Ratio (ATL / CTL)
}

// PBCategory groups personal bests by what they measure
type PBCategory string

const (
	CategoryPeakPower       PBCategory = "peak-power"
	CategoryFastestDistance PBCategory = "fastest-distance"
	CategoryLongest         PBCategory = "longest"
	CategoryMostElevation   PBCategory = "most-elevation"
)

// PBKey uniquely identifies a personal best.
// Window is seconds for peak-power, meters for fastest-distance and 0 for session-level records.
type PBKey struct {
	Sport    Sport
	Category PBCategory
	Window   float64
}

// PersonalBest is the live all-time record for a PBKey
type PersonalBest struct {
	Sport     Sport
	Category  PBCategory
	Window    float64
	Value     float64 // watts, seconds or meters depending on Category
	SessionID string
	Date      time.Time
}

// Key returns the record's unique key
func (pb PersonalBest) Key() PBKey {
	return PBKey{Sport: pb.Sport, Category: pb.Category, Window: pb.Window}
}

// LapIntensity is the intensity tag a device attaches to a lap
type LapIntensity string

const (
	IntensityActive   LapIntensity = "active"
	IntensityRest     LapIntensity = "rest"
	IntensityWarmup   LapIntensity = "warmup"
	IntensityCooldown LapIntensity = "cooldown"
	IntensityRecovery LapIntensity = "recovery"
	IntensityOther    LapIntensity = "other"
)

// SessionLap is one recorded lap
type SessionLap struct {
	Index        int
	StartOffset  float64 // seconds since session start
	ElapsedTime  float64 // seconds
	MovingTime   float64 // seconds
	Distance     float64 // meters
	AvgHeartRate *float64
	MaxHeartRate *float64
	MinHeartRate *float64
	AvgCadence   *float64
	AvgSpeed     *float64
	Intensity    LapIntensity
}
