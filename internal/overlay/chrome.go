package overlay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// dismissBinding is the page-exposed function the dismiss control calls
const dismissBinding = "__vitalviewDismiss"

// containerStyle keeps the overlay pinned and above page content
const containerStyle = "position:fixed;bottom:16px;right:16px;z-index:2147483647;" +
	"background:rgba(0,0,0,0.85);color:#fff;font:12px/1.6 monospace;" +
	"padding:10px 12px;border-radius:6px;max-width:340px"

// ChromeSurface applies overlay markup to a live page over the Chrome
// DevTools Protocol. The dismiss control is wired to a CDP binding so
// activations reach the agent without polling.
type ChromeSurface struct {
	tabCtx context.Context
}

// NewChromeSurface installs the dismiss binding on the tab and starts
// listening for its activations. onDismiss runs on its own goroutine
// because CDP event handlers must not block.
func NewChromeSurface(tabCtx context.Context, onDismiss func()) (*ChromeSurface, error) {
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return runtime.AddBinding(dismissBinding).Do(ctx)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to add dismiss binding: %w", err)
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == dismissBinding {
			go onDismiss()
		}
	})

	return &ChromeSurface{tabCtx: tabCtx}, nil
}

// Apply upserts the overlay container and replaces its content
func (s *ChromeSurface) Apply(ctx context.Context, innerHTML string) error {
	return chromedp.Run(ctx, chromedp.Evaluate(applyScript(innerHTML), nil))
}

// Remove deletes the overlay container from the page
func (s *ChromeSurface) Remove(ctx context.Context) error {
	script := fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		if (el) el.remove();
	})()`, ContainerID)

	return chromedp.Run(ctx, chromedp.Evaluate(script, nil))
}

// applyScript builds the reconciliation script: the container is
// created once, subsequent applies only swap its inner HTML. The
// dismiss handler is rebound after every apply since the control is
// part of the replaced content.
func applyScript(innerHTML string) string {
	encoded, _ := json.Marshal(innerHTML)

	return fmt.Sprintf(`(() => {
		let el = document.getElementById(%q);
		if (!el) {
			el = document.createElement('div');
			el.id = %q;
			el.setAttribute('style', %q);
			document.documentElement.appendChild(el);
		}
		el.innerHTML = %s;
		const btn = document.getElementById(%q);
		if (btn) {
			btn.addEventListener('click', () => window.%s(''), { once: true });
		}
	})()`, ContainerID, ContainerID, containerStyle, string(encoded), DismissID, dismissBinding)
}
