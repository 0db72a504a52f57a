package overlay

import (
	"context"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/sirupsen/logrus"
)

// Surface applies overlay markup to one id-addressable container on
// the page. Implementations create the container on first use and
// update it in place afterwards.
type Surface interface {
	Apply(ctx context.Context, innerHTML string) error
	Remove(ctx context.Context) error
}

// Overlay renders scoreboard snapshots onto a surface and forwards
// dismiss activations to the session
type Overlay struct {
	surface   Surface
	onDismiss func()
}

// New creates an overlay on the given surface
func New(surface Surface) *Overlay {
	return &Overlay{surface: surface}
}

// OnDismiss registers the callback invoked after the user activates
// the dismiss control
func (o *Overlay) OnDismiss(fn func()) {
	o.onDismiss = fn
}

// Render draws the scoreboard into the overlay container
func (o *Overlay) Render(ctx context.Context, sb *vitals.Scoreboard, loadedInBackground bool) error {
	return o.surface.Apply(ctx, BuildFragment(sb, loadedInBackground))
}

// Dismiss removes the fragment and notifies the session, which
// suppresses further renders until the next navigation
func (o *Overlay) Dismiss(ctx context.Context) {
	if err := o.surface.Remove(ctx); err != nil {
		logrus.Warnf("Failed to remove overlay: %v", err)
	}

	if o.onDismiss != nil {
		o.onDismiss()
	}

	logrus.Debug("Overlay dismissed")
}
