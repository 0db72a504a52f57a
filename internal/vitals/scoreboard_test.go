package vitals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewScoreboard_AllNullAllPassing(t *testing.T) {
	sb := NewScoreboard(123, "example.com")

	for _, m := range Metrics {
		record := sb.Get(m)
		require.Nil(t, record.Value)
		require.True(t, record.Pass)
	}
	require.Equal(t, VerdictGood, sb.Verdict())
	require.Equal(t, 123.0, sb.NavigationStart)
}

func TestApply_BelowThresholdStaysGood(t *testing.T) {
	sb := NewScoreboard(1, "")

	require.True(t, sb.Apply(LCP, 1800))
	require.True(t, sb.Apply(CLS, 0.05))
	require.True(t, sb.Apply(FID, 50))
	require.True(t, sb.Apply(INP, 150))

	require.Equal(t, VerdictGood, sb.Verdict())
	for _, m := range Metrics {
		require.True(t, sb.Get(m).Pass)
	}
}

func TestApply_AnyCoreMetricOverThresholdIsPoor(t *testing.T) {
	cases := []struct {
		metric Metric
		value  float64
	}{
		{LCP, 2501},
		{CLS, 0.25},
		{FID, 101},
	}

	for _, tc := range cases {
		sb := NewScoreboard(1, "")
		sb.Apply(tc.metric, tc.value)
		require.Equal(t, VerdictPoor, sb.Verdict(), "metric %s", tc.metric)
		require.False(t, sb.Get(tc.metric).Pass)
	}
}

func TestApply_INPOverThresholdNeverFlipsVerdict(t *testing.T) {
	sb := NewScoreboard(1, "")
	sb.Apply(INP, 350)

	require.False(t, sb.INP.Pass)
	require.Equal(t, VerdictGood, sb.Verdict())
}

func TestApply_PassFlagIsSticky(t *testing.T) {
	sb := NewScoreboard(1, "")

	sb.Apply(LCP, 3000)
	require.False(t, sb.LCP.Pass)

	// a later better observation must not un-fail the metric
	sb.Apply(LCP, 1200)
	require.False(t, sb.LCP.Pass)
	require.Equal(t, 1200.0, *sb.LCP.Value)
	require.Equal(t, VerdictPoor, sb.Verdict())
}

func TestApply_UnknownMetricDropped(t *testing.T) {
	sb := NewScoreboard(1, "")
	require.False(t, sb.Apply(Metric("ttfb"), 99))
	require.Equal(t, VerdictGood, sb.Verdict())
}

func TestScoreboard_JSONRoundTrip(t *testing.T) {
	sb := NewScoreboard(42, "example.com/docs")
	sb.Apply(LCP, 1800)
	sb.Apply(CLS, 0.25)
	sb.Timestamp = "10:42:17"

	data, err := json.Marshal(sb)
	require.NoError(t, err)

	var restored Scoreboard
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, 42.0, restored.NavigationStart)
	require.Equal(t, 1800.0, *restored.LCP.Value)
	require.Equal(t, 0.25, *restored.CLS.Value)
	require.False(t, restored.CLS.Pass)
	require.Nil(t, restored.FID.Value)
	require.Equal(t, VerdictPoor, restored.Verdict())
}

func TestClone_IsIndependent(t *testing.T) {
	sb := NewScoreboard(1, "")
	sb.Apply(LCP, 1000)

	clone := sb.Clone()
	sb.Apply(LCP, 2000)

	require.Equal(t, 1000.0, *clone.LCP.Value)
	require.Equal(t, 2000.0, *sb.LCP.Value)
}
