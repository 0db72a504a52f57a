package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amarret/vitalview/internal/vitals"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileDefaultsAllFalse(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	require.Equal(t, vitals.Options{}, f.Snapshot())
}

func TestLoad_ReadsRecognizedOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"enableOverlay":true,"debug":false,"userTiming":true}`), 0644))

	f, err := Load(path)
	require.NoError(t, err)

	opts := f.Snapshot()
	require.True(t, opts.EnableOverlay)
	require.False(t, opts.Debug)
	require.True(t, opts.UserTiming)
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{enableOverlay: yes}`), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestReload_PicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	f, err := Load(path)
	require.NoError(t, err)
	require.False(t, f.Snapshot().EnableOverlay)

	require.NoError(t, os.WriteFile(path, []byte(`{"enableOverlay":true}`), 0644))
	require.NoError(t, f.reload())

	require.True(t, f.Snapshot().EnableOverlay)
}

func TestReload_FileRemovedRestoresDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"debug":true}`), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	require.True(t, f.Snapshot().Debug)

	require.NoError(t, os.Remove(path))
	require.NoError(t, f.reload())

	require.Equal(t, vitals.Options{}, f.Snapshot())
}
