package vitals

// Record holds the latest value and pass state for one metric.
// Value stays nil until the first observation. Pass defaults to true
// and flips to false once the threshold is exceeded; it is never reset
// within one scoreboard lifetime, even if a later observation would
// pass (downstream badge rendering depends on the sticky failure).
type Record struct {
	Value *float64 `json:"value"`
	Pass  bool     `json:"pass"`
}

// Scoreboard is the per-navigation snapshot of all tracked metrics.
// It is valid only for the navigation whose start time matches
// NavigationStart; on mismatch it must be discarded and rebuilt.
type Scoreboard struct {
	LCP             Record  `json:"lcp"`
	CLS             Record  `json:"cls"`
	FID             Record  `json:"fid"`
	INP             Record  `json:"inp"`
	NavigationStart float64 `json:"navigationStart"`
	Location        string  `json:"location"`
	Timestamp       string  `json:"timestamp"`
}

// NewScoreboard creates a fresh all-null scoreboard for a navigation
func NewScoreboard(navigationStart float64, location string) *Scoreboard {
	return &Scoreboard{
		LCP:             Record{Pass: true},
		CLS:             Record{Pass: true},
		FID:             Record{Pass: true},
		INP:             Record{Pass: true},
		NavigationStart: navigationStart,
		Location:        location,
	}
}

// Get returns the record for a metric, or nil for an unknown key
func (sb *Scoreboard) Get(metric Metric) *Record {
	switch metric {
	case LCP:
		return &sb.LCP
	case CLS:
		return &sb.CLS
	case FID:
		return &sb.FID
	case INP:
		return &sb.INP
	}
	return nil
}

// Apply writes an observed value into the metric's record and flips
// the pass flag if the threshold is exceeded. Unknown metrics are
// dropped. Returns true if the scoreboard changed.
func (sb *Scoreboard) Apply(metric Metric, value float64) bool {
	record := sb.Get(metric)
	if record == nil {
		return false
	}

	v := value
	record.Value = &v

	if v > Thresholds[metric] {
		record.Pass = false
	}

	return true
}

// Verdict classifies the scoreboard overall: POOR if LCP, CLS or FID
// has failed its threshold, GOOD otherwise. INP failing marks only its
// own record and never affects the overall classification.
func (sb *Scoreboard) Verdict() Verdict {
	if !sb.LCP.Pass || !sb.CLS.Pass || !sb.FID.Pass {
		return VerdictPoor
	}
	return VerdictGood
}

// Clone returns a deep copy safe to hand to other goroutines
func (sb *Scoreboard) Clone() *Scoreboard {
	out := *sb
	out.LCP.Value = copyValue(sb.LCP.Value)
	out.CLS.Value = copyValue(sb.CLS.Value)
	out.FID.Value = copyValue(sb.FID.Value)
	out.INP.Value = copyValue(sb.INP.Value)
	return &out
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
