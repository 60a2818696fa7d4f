package analysis

import "fmt"

// Sensor plausibility limits
const (
	MaxPlausibleHeartRate = 230  // bpm
	MaxPlausiblePower     = 2500 // watts
	SensorGlitchTolerance = 10   // offending samples allowed before a warning is raised

	MaxSpeedKmhCycling  = 80.0
	MaxSpeedKmhRunning  = 25.0
	MaxSpeedKmhSwimming = 15.0
)

// SensorWarning is an advisory note about implausible sensor data
type SensorWarning struct {
	Field   string
	Message string
}

// String renders the warning as "field: message"
func (w SensorWarning) String() string {
	return w.Field + ": " + w.Message
}

// MaxSpeedKmh returns the plausible speed ceiling for a sport, or 0 if unchecked
func MaxSpeedKmh(sport Sport) float64 {
	switch sport {
	case SportCycling:
		return MaxSpeedKmhCycling
	case SportRunning:
		return MaxSpeedKmhRunning
	case SportSwimming:
		return MaxSpeedKmhSwimming
	default:
		return 0
	}
}

// ValidateSensors flags physiologically impossible sensor runs.
// Each rule only fires when more than SensorGlitchTolerance samples offend,
// so single dropouts and spikes are ignored.
func ValidateSensors(records []SessionRecord, sport Sport) []SensorWarning {
	var (
		hrHigh, hrZero, hrCount int
		powerHigh               int
		speedHigh               int
	)
	speedLimit := MaxSpeedKmh(sport)

	for _, r := range records {
		if r.HeartRate != nil {
			hrCount++
			if *r.HeartRate > MaxPlausibleHeartRate {
				hrHigh++
			}
			if *r.HeartRate == 0 {
				hrZero++
			}
		}
		if r.Power != nil && *r.Power > MaxPlausiblePower {
			powerHigh++
		}
		if speedLimit > 0 && r.Speed != nil && *r.Speed*3.6 > speedLimit {
			speedHigh++
		}
	}

	var warnings []SensorWarning
	if hrHigh > SensorGlitchTolerance {
		warnings = append(warnings, SensorWarning{
			Field:   "hr",
			Message: fmt.Sprintf("heart rate above %d bpm in %d samples, check the strap", MaxPlausibleHeartRate, hrHigh),
		})
	}
	if hrZero > SensorGlitchTolerance && hrZero == hrCount {
		warnings = append(warnings, SensorWarning{
			Field:   "hr",
			Message: "heart rate is zero for the whole session, sensor was probably disconnected",
		})
	}
	if powerHigh > SensorGlitchTolerance {
		warnings = append(warnings, SensorWarning{
			Field:   "power",
			Message: fmt.Sprintf("power above %d W in %d samples, power meter may need calibration", MaxPlausiblePower, powerHigh),
		})
	}
	if speedHigh > SensorGlitchTolerance {
		warnings = append(warnings, SensorWarning{
			Field:   "speed",
			Message: fmt.Sprintf("speed above %.0f km/h for %s in %d samples, possible GPS error", speedLimit, sport, speedHigh),
		})
	}

	return warnings
}

// FilterPower returns the samples whose power lies in (0, MaxPlausiblePower].
// Samples without power are dropped too. The input is not modified.
func FilterPower(records []SessionRecord) []SessionRecord {
	filtered := make([]SessionRecord, 0, len(records))
	for _, r := range records {
		if r.Power != nil && *r.Power > 0 && *r.Power <= MaxPlausiblePower {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
