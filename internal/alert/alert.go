package alert

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies which detector produced an alert.
type Kind string

const (
	KindThreshold    Kind = "threshold"
	KindStatistical  Kind = "statistical"
	KindPartitioning Kind = "partitioning"
	KindTemporal     Kind = "temporal"
	KindPattern      Kind = "pattern"
)

// Severity classifies alert urgency.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one detected anomaly.
type Alert struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Severity  Severity `json:"severity"`
	Subsystem string   `json:"subsystem"`
	Parameter string   `json:"parameter"`

	Value float64 `json:"value"`
	// Score is the detector's 0..1 confidence, when the detector produces one.
	Score float64 `json:"score,omitempty"`

	Message            string `json:"message"`
	Explanation        string `json:"explanation,omitempty"`
	RecommendationHint string `json:"recommendationHint,omitempty"`

	DetectedAt     time.Time  `json:"detectedAt"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
}

// New creates an alert with a fresh id.
func New(kind Kind, severity Severity, subsystem, parameter string, value float64, detectedAt time.Time) *Alert {
	return &Alert{
		ID:         uuid.NewString(),
		Kind:       kind,
		Severity:   severity,
		Subsystem:  subsystem,
		Parameter:  parameter,
		Value:      value,
		DetectedAt: detectedAt,
	}
}

// dedupKey identifies structurally identical alerts for suppression.
type dedupKey struct {
	subsystem string
	parameter string
	kind      Kind
	severity  Severity
}

func keyOf(a *Alert) dedupKey {
	return dedupKey{subsystem: a.Subsystem, parameter: a.Parameter, kind: a.Kind, severity: a.Severity}
}
