package overlay

import (
	"fmt"
	"html"
	"strings"

	"github.com/amarret/vitalview/internal/vitals"
)

// Element ids of the overlay's DOM surface. Both are created once and
// reused across re-renders.
const (
	ContainerID = "vitalview-overlay"
	DismissID   = "vitalview-dismiss"
)

// BuildFragment renders the scoreboard into the overlay's inner HTML:
// one row per metric with title, pass/fail state and formatted value,
// plus a dismiss control and a location/timestamp footer. FID and INP
// show a waiting indicator until the user interacts with the page.
// When the tab loaded in background the LCP row carries a caveat,
// since background loading inflates paint timing.
func BuildFragment(sb *vitals.Scoreboard, loadedInBackground bool) string {
	var b strings.Builder

	b.WriteString(`<div class="vitalview-head"><span class="vitalview-title">Web Vitals</span>`)
	fmt.Fprintf(&b, `<button id="%s" class="vitalview-dismiss" title="Dismiss">&times;</button></div>`, DismissID)

	for _, metric := range vitals.Metrics {
		record := sb.Get(metric)
		writeRow(&b, metric, record, loadedInBackground)
	}

	fmt.Fprintf(&b, `<div class="vitalview-foot">%s &middot; %s</div>`,
		html.EscapeString(sb.Location), html.EscapeString(sb.Timestamp))

	return b.String()
}

// writeRow appends one metric row
func writeRow(b *strings.Builder, metric vitals.Metric, record *vitals.Record, loadedInBackground bool) {
	state := "GOOD"
	class := "vitalview-good"
	if !record.Pass {
		state = "POOR"
		class = "vitalview-poor"
	}

	fmt.Fprintf(b, `<div class="vitalview-row %s" data-metric="%s">`, class, metric)
	fmt.Fprintf(b, `<span class="vitalview-name">%s</span>`, html.EscapeString(metric.Title()))
	fmt.Fprintf(b, `<span class="vitalview-state">%s</span>`, state)

	value := metric.FormatValue(record.Value)
	if record.Value == nil && metric.WaitsForInput() {
		b.WriteString(`<span class="vitalview-value vitalview-waiting">waiting for input</span>`)
	} else {
		fmt.Fprintf(b, `<span class="vitalview-value">%s</span>`, value)
	}

	if metric == vitals.LCP && loadedInBackground {
		b.WriteString(`<span class="vitalview-note">tab loaded in background</span>`)
	}

	b.WriteString(`</div>`)
}
