package overlay

import (
	"context"
	"testing"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	applied []string
	removed int
}

func (f *fakeSurface) Apply(_ context.Context, innerHTML string) error {
	f.applied = append(f.applied, innerHTML)
	return nil
}

func (f *fakeSurface) Remove(_ context.Context) error {
	f.removed++
	return nil
}

func TestOverlay_RenderAppliesFragment(t *testing.T) {
	surface := &fakeSurface{}
	ov := New(surface)

	sb := vitals.NewScoreboard(1, "example.com")
	require.NoError(t, ov.Render(context.Background(), sb, false))
	require.NoError(t, ov.Render(context.Background(), sb, false))

	require.Len(t, surface.applied, 2, "re-render updates in place, no duplicate fragments")
	require.Contains(t, surface.applied[0], DismissID)
}

func TestOverlay_DismissRemovesAndNotifies(t *testing.T) {
	surface := &fakeSurface{}
	ov := New(surface)

	notified := false
	ov.OnDismiss(func() { notified = true })

	ov.Dismiss(context.Background())

	require.Equal(t, 1, surface.removed)
	require.True(t, notified)
}
