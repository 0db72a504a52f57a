package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// PageSource measures Core Web Vitals on a live page over the Chrome
// DevTools Protocol. Each registration injects a PerformanceObserver
// script that reports observations back through a CDP binding; the
// callbacks run non-overlapping per metric on the event loop side.
type PageSource struct {
	tabCtx context.Context
	events chan vitals.Observation

	mu        sync.Mutex
	callbacks map[string]func(vitals.Observation)

	targetID     string
	nav          vitals.Navigation
	loadedHidden bool
}

// Attach installs the report binding on the tab and starts dispatching
// observations. Must be called before Navigate so that observer
// scripts land on the new document.
func Attach(tabCtx context.Context) (*PageSource, error) {
	p := &PageSource{
		tabCtx:    tabCtx,
		events:    make(chan vitals.Observation, 64),
		callbacks: make(map[string]func(vitals.Observation)),
	}

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return runtime.AddBinding(reportBinding).Do(ctx)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to add report binding: %w", err)
	}

	chromedp.ListenTarget(tabCtx, p.handleEvent)
	go p.dispatchLoop()

	if c := chromedp.FromContext(tabCtx); c != nil && c.Target != nil {
		p.targetID = string(c.Target.TargetID)
	}

	return p, nil
}

// handleEvent parses binding payloads and queues them for dispatch.
// CDP event handlers must not block the message loop, so a full queue
// drops the observation (losing an update is acceptable).
func (p *PageSource) handleEvent(ev interface{}) {
	e, ok := ev.(*runtime.EventBindingCalled)
	if !ok || e.Name != reportBinding {
		return
	}

	var obs vitals.Observation
	if err := json.Unmarshal([]byte(e.Payload), &obs); err != nil {
		logrus.Warnf("Dropping unreadable observation: %v", err)
		return
	}

	select {
	case p.events <- obs:
	default:
		logrus.Warnf("Observation queue full, dropping %s", obs.Name)
	}
}

// dispatchLoop delivers observations to callbacks one at a time, in
// arrival order, so handlers never run concurrently
func (p *PageSource) dispatchLoop() {
	for {
		select {
		case obs := <-p.events:
			p.mu.Lock()
			fn := p.callbacks[strings.ToLower(obs.Name)]
			p.mu.Unlock()

			if fn != nil {
				fn(obs)
			}
		case <-p.tabCtx.Done():
			return
		}
	}
}

// register stores the callback and injects the observer script for
// documents created from now on
func (p *PageSource) register(metric vitals.Metric, body string, fn func(vitals.Observation), reportAll bool) error {
	p.mu.Lock()
	p.callbacks[string(metric)] = fn
	p.mu.Unlock()

	script := observerScript(body, reportAll)

	err := chromedp.Run(p.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("failed to install %s observer: %w", metric, err)
	}

	return nil
}

// OnLCP registers the Largest Contentful Paint observer
func (p *PageSource) OnLCP(fn func(vitals.Observation), reportAllChanges bool) error {
	return p.register(vitals.LCP, lcpObserver, fn, reportAllChanges)
}

// OnCLS registers the Cumulative Layout Shift observer
func (p *PageSource) OnCLS(fn func(vitals.Observation), reportAllChanges bool) error {
	return p.register(vitals.CLS, clsObserver, fn, reportAllChanges)
}

// OnFID registers the First Input Delay observer
func (p *PageSource) OnFID(fn func(vitals.Observation), reportAllChanges bool) error {
	return p.register(vitals.FID, fidObserver, fn, reportAllChanges)
}

// OnINP registers the Interaction to Next Paint observer
func (p *PageSource) OnINP(fn func(vitals.Observation), reportAllChanges bool) error {
	return p.register(vitals.INP, inpObserver, fn, reportAllChanges)
}

// Navigate loads the target URL and captures the navigation identity:
// time origin, location and whether the tab loaded without foreground
// focus. ctx bounds the navigation and must derive from the tab
// context.
func (p *PageSource) Navigate(ctx context.Context, url string) error {
	var info struct {
		Start    float64 `json:"start"`
		Location string  `json:"location"`
		Hidden   bool    `json:"hidden"`
	}

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.Evaluate(`({
			start: performance.timeOrigin,
			location: location.href,
			hidden: document.visibilityState === 'hidden'
		})`, &info),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	p.mu.Lock()
	p.nav = vitals.Navigation{Start: info.Start, Location: info.Location}
	p.loadedHidden = info.Hidden
	p.mu.Unlock()

	return nil
}

// Navigation returns the identity of the current page load
func (p *PageSource) Navigation() vitals.Navigation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav
}

// LoadedHidden reports whether the page loaded without foreground focus
func (p *PageSource) LoadedHidden() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadedHidden
}

// TargetID returns the tab identifier of the attached target
func (p *PageSource) TargetID() string {
	return p.targetID
}
