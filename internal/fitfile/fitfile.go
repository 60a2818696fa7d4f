// Package fitfile decodes Garmin FIT activity files into engine inputs.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"trainingload/internal/analysis"
)

// ErrNoSession is returned when an activity file carries no session message
var ErrNoSession = errors.New("activity file has no session message")

// Activity is a decoded activity file
type Activity struct {
	Meta    analysis.SessionMeta
	Records []analysis.SessionRecord
	Laps    []analysis.SessionLap
}

// DecodeFile opens and decodes the FIT activity at path
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a FIT activity from r. Only the first session is used.
func Decode(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	af, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(af.Sessions) == 0 || af.Sessions[0] == nil {
		return nil, ErrNoSession
	}

	s := af.Sessions[0]
	start := validTime(s.StartTime)
	if start.IsZero() {
		start = firstRecordTime(af.Records)
	}

	meta := sessionMeta(s, start)
	records := convertRecords(af.Records, start)
	laps := convertLaps(af.Laps, records, start)

	return &Activity{Meta: meta, Records: records, Laps: laps}, nil
}

func sessionMeta(s *fit.SessionMsg, start time.Time) analysis.SessionMeta {
	meta := analysis.SessionMeta{
		Sport:           analysis.ParseSport(enumName(s.Sport.String(), "sport")),
		StartTime:       start.UTC(),
		DurationSeconds: safePositive(s.GetTotalTimerTimeScaled()),
		MovingSeconds:   safePositive(s.GetTotalMovingTimeScaled()),
		DistanceMeters:  safePositive(s.GetTotalDistanceScaled()),
	}
	if s.TotalAscent != math.MaxUint16 {
		meta.ElevationGain = float64(s.TotalAscent)
	}
	if s.AvgHeartRate != math.MaxUint8 && s.AvgHeartRate > 0 {
		v := float64(s.AvgHeartRate)
		meta.AvgHeartRate = &v
	}
	if s.MaxHeartRate != math.MaxUint8 && s.MaxHeartRate > 0 {
		v := float64(s.MaxHeartRate)
		meta.MaxHeartRate = &v
	}
	// training_stress_score has scale 10
	if s.TrainingStressScore != math.MaxUint16 && s.TrainingStressScore > 0 {
		v := float64(s.TrainingStressScore) / 10
		meta.DeviceTSS = &v
	}
	return meta
}

func convertRecords(msgs []*fit.RecordMsg, start time.Time) []analysis.SessionRecord {
	records := make([]analysis.SessionRecord, 0, len(msgs))
	for _, rr := range msgs {
		if rr == nil || validTime(rr.Timestamp).IsZero() {
			continue
		}
		r := analysis.SessionRecord{Timestamp: rr.Timestamp.Sub(start).Seconds()}

		// 0 bpm is kept so a disconnected strap can be flagged
		if rr.HeartRate != math.MaxUint8 {
			v := int(rr.HeartRate)
			r.HeartRate = &v
		}
		if rr.Power != math.MaxUint16 {
			v := int(rr.Power)
			r.Power = &v
		}
		if rr.Cadence != math.MaxUint8 {
			v := int(rr.Cadence)
			r.Cadence = &v
		}
		if v, ok := speed(rr); ok {
			r.Speed = &v
		}
		if v := rr.GetDistanceScaled(); isFinite(v) && v >= 0 {
			r.Distance = &v
		}
		if v, ok := altitude(rr); ok {
			r.Elevation = &v
		}
		if rr.Grade != math.MaxInt16 {
			// grade has scale 100
			v := float64(rr.Grade) / 100
			r.Grade = &v
		}
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records
}

func convertLaps(msgs []*fit.LapMsg, records []analysis.SessionRecord, start time.Time) []analysis.SessionLap {
	laps := make([]analysis.SessionLap, 0, len(msgs))
	for _, lp := range msgs {
		if lp == nil {
			continue
		}
		lap := analysis.SessionLap{
			Index:       len(laps),
			ElapsedTime: safePositive(lp.GetTotalElapsedTimeScaled()),
			MovingTime:  safePositive(lp.GetTotalTimerTimeScaled()),
			Distance:    safePositive(lp.GetTotalDistanceScaled()),
			Intensity:   lapIntensity(lp.Intensity.String()),
		}
		if t := validTime(lp.StartTime); !t.IsZero() {
			lap.StartOffset = t.Sub(start).Seconds()
		} else if len(laps) > 0 {
			prev := laps[len(laps)-1]
			lap.StartOffset = prev.StartOffset + prev.ElapsedTime
		}
		if lap.ElapsedTime == 0 {
			lap.ElapsedTime = lap.MovingTime
		}
		if lap.MovingTime == 0 {
			lap.MovingTime = lap.ElapsedTime
		}

		if lp.AvgHeartRate != math.MaxUint8 && lp.AvgHeartRate > 0 {
			v := float64(lp.AvgHeartRate)
			lap.AvgHeartRate = &v
		}
		if lp.MaxHeartRate != math.MaxUint8 && lp.MaxHeartRate > 0 {
			v := float64(lp.MaxHeartRate)
			lap.MaxHeartRate = &v
		}
		if lp.AvgCadence != math.MaxUint8 {
			v := float64(lp.AvgCadence)
			lap.AvgCadence = &v
		}
		if lap.MovingTime > 0 && lap.Distance > 0 {
			v := lap.Distance / lap.MovingTime
			lap.AvgSpeed = &v
		}
		lap.MinHeartRate = minHeartRate(records, lap.StartOffset, lap.StartOffset+lap.ElapsedTime)

		laps = append(laps, lap)
	}
	return laps
}

// minHeartRate scans the samples in [from, to]; FIT laps carry no minimum
func minHeartRate(records []analysis.SessionRecord, from, to float64) *float64 {
	var lowest *float64
	for _, r := range records {
		if r.Timestamp < from || r.Timestamp > to || r.HeartRate == nil || *r.HeartRate <= 0 {
			continue
		}
		v := float64(*r.HeartRate)
		if lowest == nil || v < *lowest {
			lowest = &v
		}
	}
	return lowest
}

func lapIntensity(name string) analysis.LapIntensity {
	switch enumName(name, "intensity") {
	case "active", "interval":
		return analysis.IntensityActive
	case "rest":
		return analysis.IntensityRest
	case "warmup":
		return analysis.IntensityWarmup
	case "cooldown":
		return analysis.IntensityCooldown
	case "recovery":
		return analysis.IntensityRecovery
	default:
		return analysis.IntensityOther
	}
}

// enumName normalizes a generated enum string such as "IntensityActive" or "Active"
func enumName(s, prefix string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), prefix)
}

func speed(rec *fit.RecordMsg) (float64, bool) {
	v := rec.GetEnhancedSpeedScaled()
	if isFinite(v) && v >= 0 {
		return v, true
	}
	v = rec.GetSpeedScaled()
	if isFinite(v) && v >= 0 {
		return v, true
	}
	return 0, false
}

// altitude applies the FIT scale 5, offset 500
func altitude(rec *fit.RecordMsg) (float64, bool) {
	if rec.EnhancedAltitude != math.MaxUint32 {
		return float64(rec.EnhancedAltitude)/5 - 500, true
	}
	if rec.Altitude != math.MaxUint16 {
		return float64(rec.Altitude)/5 - 500, true
	}
	return 0, false
}

func firstRecordTime(msgs []*fit.RecordMsg) time.Time {
	for _, rr := range msgs {
		if rr == nil {
			continue
		}
		if t := validTime(rr.Timestamp); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
