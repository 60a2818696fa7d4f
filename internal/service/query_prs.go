package service

import (
	"fmt"
	"time"

	"trainingload/internal/analysis"
)

// PersonalBestDisplay represents a formatted personal best for display
type PersonalBestDisplay struct {
	Record      analysis.PersonalBest
	Label       string // e.g. "5K", "20min", "Longest"
	Value       string // formatted watts, duration or distance
	Date        string
	SessionName string
}

// PBsData contains all data needed for the records screen
type PBsData struct {
	PeakPower       []PersonalBestDisplay
	FastestDistance []PersonalBestDisplay
	Other           []PersonalBestDisplay
}

// GetPersonalBests retrieves all live personal bests formatted for display
func (q *QueryService) GetPersonalBests() (*PBsData, error) {
	pbs, err := q.store.GetAllPersonalBests()
	if err != nil {
		return nil, err
	}
	return q.groupPBs(pbs), nil
}

// PersonalBestsBetween computes the best efforts among sessions in [from, to),
// ignoring all-time records. Useful for season bests.
func (q *QueryService) PersonalBestsBetween(from, to time.Time) ([]analysis.PersonalBest, error) {
	sessions, err := q.store.SessionsBetween(from, to)
	if err != nil {
		return nil, err
	}

	data := make([]analysis.SessionData, 0, len(sessions))
	for _, s := range sessions {
		records, err := q.store.GetRecords(s.ID)
		if err != nil {
			return nil, fmt.Errorf("loading records for %s: %w", s.ID, err)
		}
		data = append(data, analysis.SessionData{SessionID: s.ID, Sport: s.Sport, Date: s.Date, Records: records})
	}
	return analysis.ComputePBsForSessions(data), nil
}

func (q *QueryService) groupPBs(pbs []analysis.PersonalBest) *PBsData {
	// Names are best-effort; a failed lookup leaves the name blank
	names := make(map[string]string)
	for _, pb := range pbs {
		if _, ok := names[pb.SessionID]; ok {
			continue
		}
		if s, err := q.store.GetSession(pb.SessionID); err == nil {
			names[pb.SessionID] = s.Name
		} else {
			names[pb.SessionID] = ""
		}
	}

	data := &PBsData{}
	for _, pb := range pbs {
		display := FormatPersonalBest(pb)
		display.SessionName = names[pb.SessionID]

		switch pb.Category {
		case analysis.CategoryPeakPower:
			data.PeakPower = append(data.PeakPower, display)
		case analysis.CategoryFastestDistance:
			data.FastestDistance = append(data.FastestDistance, display)
		default:
			data.Other = append(data.Other, display)
		}
	}
	return data
}

// FormatPersonalBest renders a record's label and value
func FormatPersonalBest(pb analysis.PersonalBest) PersonalBestDisplay {
	display := PersonalBestDisplay{
		Record: pb,
		Label:  CategoryLabel(pb),
		Date:   pb.Date.Format("Jan 02, 2006"),
	}
	switch pb.Category {
	case analysis.CategoryPeakPower:
		display.Value = fmt.Sprintf("%.0f W", pb.Value)
	case analysis.CategoryFastestDistance:
		display.Value = FormatDuration(int(pb.Value))
	case analysis.CategoryLongest:
		display.Value = fmt.Sprintf("%.2f km", pb.Value/MetersPerKm)
	case analysis.CategoryMostElevation:
		display.Value = fmt.Sprintf("%.0f m", pb.Value)
	default:
		display.Value = fmt.Sprintf("%.1f", pb.Value)
	}
	return display
}

// CategoryLabel returns a human-readable label for a record
func CategoryLabel(pb analysis.PersonalBest) string {
	switch pb.Category {
	case analysis.CategoryPeakPower:
		return windowLabel(pb.Window)
	case analysis.CategoryFastestDistance:
		return distanceLabel(pb.Window)
	case analysis.CategoryLongest:
		return "Longest"
	case analysis.CategoryMostElevation:
		return "Most Elevation"
	}
	return string(pb.Category)
}

func windowLabel(seconds float64) string {
	if seconds < SecondsPerMinute {
		return fmt.Sprintf("%.0fs", seconds)
	}
	return fmt.Sprintf("%.0fmin", seconds/SecondsPerMinute)
}

func distanceLabel(meters float64) string {
	switch meters {
	case analysis.Distance1Mile:
		return "1 Mile"
	case analysis.DistanceHalfMara:
		return "Half Marathon"
	case analysis.DistanceMarathon:
		return "Marathon"
	}
	if meters < MetersPerKm {
		return fmt.Sprintf("%.0fm", meters)
	}
	if meters == float64(int(meters/MetersPerKm))*MetersPerKm {
		return fmt.Sprintf("%.0fK", meters/MetersPerKm)
	}
	return fmt.Sprintf("%.0fm", meters)
}
