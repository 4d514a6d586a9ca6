package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenWithNilReaderUsesDefaults(t *testing.T) {
	opts, err := Open(nil)
	require.NoError(t, err)

	require.False(t, opts.Rebuild())
	require.True(t, opts.SaveCache())
	require.False(t, opts.CheckMagic())
	require.Equal(t, "application/octet-stream", opts.DefaultBinary())
	require.Equal(t, "text/plain", opts.DefaultText())
}

func TestOpenOverridesDefaults(t *testing.T) {
	yaml := []byte("mime:\n  rebuild: true\n  database: /opt/mime\n")
	opts, err := Open(bytes.NewReader(yaml))
	require.NoError(t, err)

	require.True(t, opts.Rebuild())
	require.Equal(t, "/opt/mime", opts.DatabasePath())
}

func TestSerializationPathExpandsHome(t *testing.T) {
	opts, err := Open(nil)
	require.NoError(t, err)
	require.NotContains(t, opts.SerializationPath(), "${user.home}")
}

func TestSaveRoundTrip(t *testing.T) {
	opts, err := Open(bytes.NewReader([]byte("mime:\n  rebuild: true\n")))
	require.NoError(t, err)

	dir := t.TempDir()
	path := dir + "/config.yml"
	require.NoError(t, opts.Save(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, reloaded.Rebuild())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	opts, err := Load("/nonexistent/path/to/config.yml")
	require.NoError(t, err)
	require.False(t, opts.Rebuild())
}
