package overlay

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/amarret/vitalview/internal/vitals"
	"github.com/stretchr/testify/require"
)

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testScoreboard() *vitals.Scoreboard {
	sb := vitals.NewScoreboard(1000, "example.com/docs")
	sb.Timestamp = "10:42:17"
	return sb
}

func TestBuildFragment_OneRowPerMetric(t *testing.T) {
	doc := parseFragment(t, BuildFragment(testScoreboard(), false))

	rows := doc.Find(".vitalview-row")
	require.Equal(t, 4, rows.Length())

	require.Equal(t, 1, doc.Find(`[data-metric="lcp"]`).Length())
	require.Equal(t, 1, doc.Find(`[data-metric="cls"]`).Length())
	require.Equal(t, 1, doc.Find(`[data-metric="fid"]`).Length())
	require.Equal(t, 1, doc.Find(`[data-metric="inp"]`).Length())
}

func TestBuildFragment_FormatsValues(t *testing.T) {
	sb := testScoreboard()
	sb.Apply(vitals.LCP, 1800)
	sb.Apply(vitals.CLS, 0.25)
	sb.Apply(vitals.FID, 50)

	doc := parseFragment(t, BuildFragment(sb, false))

	require.Equal(t, "1.80 s", doc.Find(`[data-metric="lcp"] .vitalview-value`).Text())
	require.Equal(t, "0.250", doc.Find(`[data-metric="cls"] .vitalview-value`).Text())
	require.Equal(t, "50.00 ms", doc.Find(`[data-metric="fid"] .vitalview-value`).Text())
}

func TestBuildFragment_PassFailStates(t *testing.T) {
	sb := testScoreboard()
	sb.Apply(vitals.LCP, 1800)
	sb.Apply(vitals.CLS, 0.25)

	doc := parseFragment(t, BuildFragment(sb, false))

	lcp := doc.Find(`[data-metric="lcp"]`)
	require.True(t, lcp.HasClass("vitalview-good"))
	require.Equal(t, "GOOD", lcp.Find(".vitalview-state").Text())

	cls := doc.Find(`[data-metric="cls"]`)
	require.True(t, cls.HasClass("vitalview-poor"))
	require.Equal(t, "POOR", cls.Find(".vitalview-state").Text())
}

func TestBuildFragment_InputMetricsWaitForInput(t *testing.T) {
	doc := parseFragment(t, BuildFragment(testScoreboard(), false))

	require.Equal(t, "waiting for input", doc.Find(`[data-metric="fid"] .vitalview-waiting`).Text())
	require.Equal(t, "waiting for input", doc.Find(`[data-metric="inp"] .vitalview-waiting`).Text())
	require.Equal(t, 0, doc.Find(`[data-metric="lcp"] .vitalview-waiting`).Length())
}

func TestBuildFragment_BackgroundLoadCaveatOnLCPOnly(t *testing.T) {
	sb := testScoreboard()
	sb.Apply(vitals.LCP, 1800)

	doc := parseFragment(t, BuildFragment(sb, true))
	require.Equal(t, 1, doc.Find(`[data-metric="lcp"] .vitalview-note`).Length())
	require.Equal(t, 1, doc.Find(".vitalview-note").Length())

	doc = parseFragment(t, BuildFragment(sb, false))
	require.Equal(t, 0, doc.Find(".vitalview-note").Length())
}

func TestBuildFragment_DismissControlAndFooter(t *testing.T) {
	doc := parseFragment(t, BuildFragment(testScoreboard(), false))

	require.Equal(t, 1, doc.Find("#"+DismissID).Length())

	foot := doc.Find(".vitalview-foot").Text()
	require.Contains(t, foot, "example.com/docs")
	require.Contains(t, foot, "10:42:17")
}

func TestBuildFragment_EscapesLocation(t *testing.T) {
	sb := testScoreboard()
	sb.Location = `<script>alert(1)</script>`

	html := BuildFragment(sb, false)
	require.NotContains(t, html, "<script>")
}
