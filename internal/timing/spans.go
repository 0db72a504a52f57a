package timing

import "math"

// Span is a named interval on the page's performance timeline,
// in milliseconds since the navigation's time origin.
type Span struct {
	Name  string
	Start float64
	End   float64
}

// Duration returns the span length in milliseconds
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// INPBreakdown splits one interaction entry into its four sub-intervals:
// total duration, input delay, processing time and presentation delay.
// The presentation delay end is floored at processingEnd+4 so that a
// zero or negative presentation delay still yields a visible interval.
func INPBreakdown(startTime, duration, processingStart, processingEnd float64) []Span {
	end := startTime + duration
	presentationEnd := math.Max(processingEnd+4, end)

	return []Span{
		{Name: "INP/duration", Start: startTime, End: end},
		{Name: "INP/inputDelay", Start: startTime, End: processingStart},
		{Name: "INP/processingTime", Start: processingStart, End: processingEnd},
		{Name: "INP/presentationDelay", Start: processingEnd, End: presentationEnd},
	}
}

// FIDBreakdown derives the single input-delay interval from a
// first-input entry.
func FIDBreakdown(startTime, processingStart float64) Span {
	return Span{Name: "FID/inputDelay", Start: startTime, End: processingStart}
}
