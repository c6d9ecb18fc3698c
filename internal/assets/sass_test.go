package assets

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "sass")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700)) //nolint:gosec
	return path
}

func TestCLISassCompile(t *testing.T) {
	// arguments are --no-source-map <input> <output>
	binary := writeScript(t, `cp "$2" "$3"
`)

	src := filepath.Join(t.TempDir(), "theme.scss")
	require.NoError(t, os.WriteFile(src, []byte(".theme { color: blue; }\n"), 0o600))

	css, err := NewCLISass(binary).Compile(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, ".theme { color: blue; }\n", css)
}

func TestCLISassCompileFailure(t *testing.T) {
	binary := writeScript(t, `echo "Error: expected \"{\"" >&2
exit 65
`)

	src := filepath.Join(t.TempDir(), "broken.scss")
	require.NoError(t, os.WriteFile(src, []byte(".theme {"), 0o600))

	_, err := NewCLISass(binary).Compile(context.Background(), src)
	require.ErrorContains(t, err, "exited with code 65")
}

func TestEmbeddedSassCloseWithoutStart(t *testing.T) {
	require.NoError(t, NewEmbeddedSass("sass").Close())
}

func TestEmbeddedSassMissingSource(t *testing.T) {
	_, err := NewEmbeddedSass("sass").Compile(context.Background(), filepath.Join(t.TempDir(), "missing.scss"))
	require.ErrorContains(t, err, "failed to read stylesheet")
}
