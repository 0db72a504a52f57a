package vitals

import "fmt"

// Metric identifies one of the tracked Core Web Vitals
type Metric string

const (
	LCP Metric = "lcp" // Largest Contentful Paint (ms)
	CLS Metric = "cls" // Cumulative Layout Shift (unitless)
	FID Metric = "fid" // First Input Delay (ms)
	INP Metric = "inp" // Interaction to Next Paint (ms)
)

// Metrics lists all tracked metrics in display order
var Metrics = []Metric{LCP, CLS, FID, INP}

// Thresholds maps each metric to its fixed cutoff. A value strictly
// above the cutoff fails the metric.
var Thresholds = map[Metric]float64{
	LCP: 2500,
	CLS: 0.1,
	FID: 100,
	INP: 200,
}

// Verdict is the overall pass/fail classification of a scoreboard
type Verdict string

const (
	VerdictGood Verdict = "GOOD"
	VerdictPoor Verdict = "POOR"
)

// Entry is one timing entry reported alongside an observation
type Entry struct {
	Name            string  `json:"name"`
	StartTime       float64 `json:"startTime"`
	Duration        float64 `json:"duration"`
	ProcessingStart float64 `json:"processingStart"`
	ProcessingEnd   float64 `json:"processingEnd"`
}

// Observation is a single metric report from the measurement source
type Observation struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Entries []Entry `json:"entries"`
}

// Title returns the metric's display name
func (m Metric) Title() string {
	switch m {
	case LCP:
		return "Largest Contentful Paint"
	case CLS:
		return "Cumulative Layout Shift"
	case FID:
		return "First Input Delay"
	case INP:
		return "Interaction to Next Paint"
	}
	return string(m)
}

// Known reports whether m is a tracked metric key
func (m Metric) Known() bool {
	_, ok := Thresholds[m]
	return ok
}

// WaitsForInput reports whether the metric has no value until the user
// interacts with the page
func (m Metric) WaitsForInput() bool {
	return m == FID || m == INP
}

// FormatValue renders a metric value for display: LCP in seconds to two
// decimals, CLS unitless to three decimals, FID/INP in milliseconds to
// two decimals. A nil value renders as the empty string.
func (m Metric) FormatValue(value *float64) string {
	if value == nil {
		return ""
	}

	switch m {
	case LCP:
		return fmt.Sprintf("%.2f s", *value/1000)
	case CLS:
		return fmt.Sprintf("%.3f", *value)
	default:
		return fmt.Sprintf("%.2f ms", *value)
	}
}
