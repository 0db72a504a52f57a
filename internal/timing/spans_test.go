package timing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestINPBreakdown_FourSubIntervals(t *testing.T) {
	// start=100, duration=350, processingStart=120, processingEnd=300
	spans := INPBreakdown(100, 350, 120, 300)
	require.Len(t, spans, 4)

	byName := map[string]Span{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	require.Equal(t, Span{"INP/duration", 100, 450}, byName["INP/duration"])
	require.Equal(t, Span{"INP/inputDelay", 100, 120}, byName["INP/inputDelay"])
	require.Equal(t, Span{"INP/processingTime", 120, 300}, byName["INP/processingTime"])
	// presentation runs from processingEnd to start+duration
	require.Equal(t, Span{"INP/presentationDelay", 300, 450}, byName["INP/presentationDelay"])
}

func TestINPBreakdown_PresentationDelayFloor(t *testing.T) {
	// processing ends after the nominal interaction end: the +4 floor
	// keeps the presentation interval visible instead of degenerate
	spans := INPBreakdown(100, 50, 120, 200)

	var presentation Span
	for _, s := range spans {
		if s.Name == "INP/presentationDelay" {
			presentation = s
		}
	}

	require.Equal(t, 200.0, presentation.Start)
	require.Equal(t, 204.0, presentation.End)
	require.Equal(t, 4.0, presentation.Duration())
}

func TestFIDBreakdown_SingleInputDelaySpan(t *testing.T) {
	span := FIDBreakdown(100, 145.5)

	require.Equal(t, "FID/inputDelay", span.Name)
	require.Equal(t, 100.0, span.Start)
	require.Equal(t, 145.5, span.End)
	require.Equal(t, 45.5, span.Duration())
}

func TestEmitter_ObservesEachSpan(t *testing.T) {
	e := NewEmitter(nil)

	// no registry: emitting must still be safe
	e.Emit(FIDBreakdown(0, 10))
	e.Emit(INPBreakdown(0, 100, 10, 60)...)
}
