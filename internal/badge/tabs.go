package badge

import "sync"

// TabRegistry records which tabs were loaded without foreground focus,
// keyed by stringified tab id. Background loading inflates paint
// timing, so the overlay flags the LCP row for these tabs.
type TabRegistry struct {
	mu     sync.RWMutex
	hidden map[string]bool
}

// NewTabRegistry creates an empty registry
func NewTabRegistry() *TabRegistry {
	return &TabRegistry{hidden: make(map[string]bool)}
}

// SetLoadedInBackground records the load visibility for a tab
func (t *TabRegistry) SetLoadedInBackground(tabID string, hidden bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden[tabID] = hidden
}

// LoadedInBackground reports whether the tab loaded hidden.
// Unknown tabs report false.
func (t *TabRegistry) LoadedInBackground(tabID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hidden[tabID]
}
