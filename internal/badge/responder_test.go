package badge

import (
	"encoding/json"
	"testing"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/stretchr/testify/require"
)

func TestResponder_HandleRecordsVerdictAndAcks(t *testing.T) {
	r := NewResponder(nil, "vitals.badge", "42")

	var hookTab string
	var hookVerdict vitals.Verdict
	r.OnVerdict = func(tabID string, verdict vitals.Verdict) {
		hookTab = tabID
		hookVerdict = verdict
	}

	sb := vitals.NewScoreboard(1000, "example.com")
	sb.Apply(vitals.CLS, 0.25)

	update, err := json.Marshal(vitals.Update{PassesAllThresholds: sb.Verdict(), Metrics: sb})
	require.NoError(t, err)

	reply := r.Handle(update)
	require.NotNil(t, reply)

	var ack vitals.Ack
	require.NoError(t, json.Unmarshal(reply, &ack))
	require.Equal(t, "42", ack.TabID)

	verdict, ok := r.Verdict("42")
	require.True(t, ok)
	require.Equal(t, vitals.VerdictPoor, verdict)

	require.Equal(t, "42", hookTab)
	require.Equal(t, vitals.VerdictPoor, hookVerdict)
}

func TestResponder_HandleDropsUnreadableUpdate(t *testing.T) {
	r := NewResponder(nil, "vitals.badge", "42")

	require.Nil(t, r.Handle([]byte("not json")))

	_, ok := r.Verdict("42")
	require.False(t, ok)
}

func TestTabRegistry_UnknownTabDefaultsForeground(t *testing.T) {
	tabs := NewTabRegistry()

	require.False(t, tabs.LoadedInBackground("7"))

	tabs.SetLoadedInBackground("7", true)
	require.True(t, tabs.LoadedInBackground("7"))

	tabs.SetLoadedInBackground("7", false)
	require.False(t, tabs.LoadedInBackground("7"))
}
