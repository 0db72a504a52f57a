package vitals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrigin(t *testing.T) {
	origin, err := Origin("https://Example.com/docs/page?q=1")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", origin)

	origin, err = Origin("relative/path")
	require.NoError(t, err)
	require.Equal(t, "", origin)
}

func TestShortLocation(t *testing.T) {
	require.Equal(t, "example.com/docs", ShortLocation("https://example.com/docs/?q=1#top"))
	require.Equal(t, "example.com", ShortLocation("https://Example.com/"))
	require.Equal(t, "not a url at all", ShortLocation("not a url at all"))
}
