package tui

import (
	"fmt"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

func (u Units) paceInMiles() bool {
	return u.cfg.PaceUnit == "min/mi"
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	if u.paceInMiles() {
		return "min/mi"
	}
	return "min/km"
}

// FormatPace formats a pace given in sec/km in the user's pace unit, without a label
func (u Units) FormatPace(secPerKm float64) string {
	if secPerKm <= 0 {
		return "-"
	}
	pace := secPerKm
	if u.paceInMiles() {
		pace = secPerKm * metersPerMile / metersPerKm
	}
	total := int(pace + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatSpeed formats a speed in m/s as km/h or mph
func (u Units) FormatSpeed(mps float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mph", mps*3600/metersPerMile)
	}
	return fmt.Sprintf("%.1f km/h", mps*3600/metersPerKm)
}

// FormatSessionSpeed picks the sport's customary measure: pace for running,
// speed for cycling and time per 100m for swimming.
func (u Units) FormatSessionSpeed(sport analysis.Sport, seconds, meters float64) string {
	if seconds <= 0 || meters <= 0 {
		return "-"
	}
	switch sport {
	case analysis.SportRunning:
		return u.FormatPace(seconds/meters*metersPerKm) + "/" + u.DistanceLabel()
	case analysis.SportSwimming:
		per100 := int(seconds/meters*100 + 0.5)
		return fmt.Sprintf("%d:%02d/100m", per100/60, per100%60)
	}
	return u.FormatSpeed(meters / seconds)
}

// ConvertPaceData converts per-minute pace data from min/km to min/mi if needed
func (u Units) ConvertPaceData(paceMinPerKm []float64) []float64 {
	if !u.paceInMiles() {
		return paceMinPerKm
	}
	converted := make([]float64, len(paceMinPerKm))
	for i, p := range paceMinPerKm {
		if p > 0 {
			converted[i] = p * metersPerMile / metersPerKm
		}
	}
	return converted
}
