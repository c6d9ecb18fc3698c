package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newWatcher(t *testing.T, onChange func(ctx context.Context) error) (*Watcher, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "components"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "react"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "public"), 0o755))

	return &Watcher{
		Root:     root,
		Ignore:   []string{"node_modules", "public"},
		Debounce: 20 * time.Millisecond,
		OnChange: onChange,
		Logger:   zerolog.Nop(),
	}, root
}

func start(t *testing.T, w *Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	// give the watcher time to register directories
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func TestWatcherTriggersOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	changes := make(chan struct{}, 10)
	w, root := newWatcher(t, func(ctx context.Context) error {
		changes <- struct{}{}
		return nil
	})

	cancel, done := start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "components", "application.js"), []byte("export {}\n"), 0o600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherIgnoresDependencies(t *testing.T) {
	defer goleak.VerifyNone(t)

	changes := make(chan struct{}, 10)
	w, root := newWatcher(t, func(ctx context.Context) error {
		changes <- struct{}{}
		return nil
	})

	cancel, done := start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "react", "index.js"), []byte("module.exports = {}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "public", "application.js"), []byte("\n"), 0o600))

	select {
	case <-changes:
		t.Fatal("ignored paths triggered a rebuild")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherStopsOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	errBuild := errors.New("build failed")
	w, root := newWatcher(t, func(ctx context.Context) error {
		return errBuild
	})

	cancel, done := start(t, w)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "main.css"), []byte("body {}\n"), 0o600))

	select {
	case err := <-done:
		require.ErrorIs(t, err, errBuild)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	changes := make(chan struct{}, 10)
	w, root := newWatcher(t, func(ctx context.Context) error {
		changes <- struct{}{}
		return nil
	})

	cancel, done := start(t, w)

	dir := filepath.Join(root, "app", "widgets")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	// directory creation itself triggers a rebuild
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chart.jsx"), []byte("export {}\n"), 0o600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild in new directory")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestIgnored(t *testing.T) {
	w := &Watcher{Root: "/srv/web", Ignore: []string{"node_modules", "public/build"}}

	tests := []struct {
		path string
		want bool
	}{
		{path: "/srv/web/app/components/application.js", want: false},
		{path: "/srv/web/node_modules/react/index.js", want: true},
		{path: "/srv/web/app/node_modules/local.js", want: true},
		{path: "/srv/web/public/build/application.js", want: true},
		{path: "/srv/web/public/index.html", want: false},
		{path: "/srv/web/.git/HEAD", want: true},
		{path: "/srv/web/app/.application.js.swp", want: true},
		{path: "/srv/web", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, w.ignored(tt.path))
		})
	}
}
