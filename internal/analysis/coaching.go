package analysis

// Coaching thresholds
const (
	ACWRUndertraining = 0.8
	ACWRModerateRisk  = 1.3
	ACWRHighRisk      = 1.5

	TSBDetraining = 25.0
	TSBFresh      = 5.0
	TSBNeutral    = -10.0
	TSBOptimal    = -30.0

	// DataMaturityDays is the history length below which ACWR is not trusted
	DataMaturityDays = 28
)

// FormStatus is the readiness state derived from TSB
type FormStatus string

const (
	FormDetraining FormStatus = "detraining"
	FormFresh      FormStatus = "fresh"
	FormNeutral    FormStatus = "neutral"
	FormOptimal    FormStatus = "optimal"
	FormOverload   FormStatus = "overload"
)

// RiskLevel is the injury risk derived from ACWR
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// LoadState is the ACWR bucket gated on history length
type LoadState string

const (
	LoadInsufficientData LoadState = "insufficient-data"
	LoadHighRisk         LoadState = "high-risk"
	LoadModerateRisk     LoadState = "moderate-risk"
	LoadUndertraining    LoadState = "undertraining"
	LoadSweetSpot        LoadState = "sweet-spot"
)

// ClassifyForm maps TSB to a form state. Boundary values belong to the
// stricter band, e.g. exactly 25 is fresh, not detraining.
func ClassifyForm(tsb float64) FormStatus {
	switch {
	case tsb > TSBDetraining:
		return FormDetraining
	case tsb >= TSBFresh:
		return FormFresh
	case tsb >= TSBNeutral:
		return FormNeutral
	case tsb >= TSBOptimal:
		return FormOptimal
	default:
		return FormOverload
	}
}

// InjuryRisk maps ACWR to a risk level
func InjuryRisk(acwr float64) RiskLevel {
	switch {
	case acwr <= ACWRModerateRisk:
		return RiskLow
	case acwr <= ACWRHighRisk:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// ClassifyLoad buckets ACWR once at least DataMaturityDays of history exist
func ClassifyLoad(acwr float64, maturityDays int) LoadState {
	if maturityDays < DataMaturityDays {
		return LoadInsufficientData
	}
	switch {
	case acwr > ACWRHighRisk:
		return LoadHighRisk
	case acwr > ACWRModerateRisk:
		return LoadModerateRisk
	case acwr < ACWRUndertraining:
		return LoadUndertraining
	default:
		return LoadSweetSpot
	}
}

// CoachingRecommendation is the current readiness picture, recomputed on every read
type CoachingRecommendation struct {
	Status           FormStatus
	InjuryRisk       RiskLevel
	LoadState        LoadState
	ACWR             float64
	TSB              float64
	CTL              float64
	ATL              float64
	DataMaturityDays int
	Advice           string
}

// Recommend classifies the last row of a load series.
// Data maturity is the number of days in the series. Returns nil for an empty series.
func Recommend(metrics []DailyMetrics) *CoachingRecommendation {
	current, ok := CurrentLoad(metrics)
	if !ok {
		return nil
	}

	rec := &CoachingRecommendation{
		Status:           ClassifyForm(current.TSB),
		InjuryRisk:       InjuryRisk(current.ACWR),
		LoadState:        ClassifyLoad(current.ACWR, len(metrics)),
		ACWR:             current.ACWR,
		TSB:              current.TSB,
		CTL:              current.CTL,
		ATL:              current.ATL,
		DataMaturityDays: len(metrics),
	}
	rec.Advice = advice(rec)
	return rec
}

func advice(rec *CoachingRecommendation) string {
	switch rec.LoadState {
	case LoadHighRisk:
		return "Load is ramping too fast. Cut volume for a few days."
	case LoadModerateRisk:
		return "Load is climbing quickly. Keep the next sessions easy."
	case LoadUndertraining:
		if rec.Status == FormDetraining {
			return "Fitness is fading. Add volume gradually."
		}
		return "Acute load is low relative to fitness. There is room to train more."
	case LoadInsufficientData:
		return "Not enough history yet to judge load trends."
	}

	switch rec.Status {
	case FormFresh:
		return "Fresh and ready for a hard session or race."
	case FormOptimal:
		return "Productive training zone. Keep it consistent."
	case FormOverload:
		return "Fatigue is high. Schedule recovery."
	case FormDetraining:
		return "Very fresh. Training load could increase."
	default:
		return "Balanced load. Good for steady training."
	}
}
