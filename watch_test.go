package themecss

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yacobolo/themecss/internal/discovery"
	"github.com/yacobolo/themecss/internal/emitter"
)

func TestWatch_RerunsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ui"), 0o755))

	runs := make(chan int, 16)
	count := 0
	fake := func(context.Context, Config) (*GenerateResult, error) {
		count++
		return &GenerateResult{PackagesLoaded: count}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		w := newWatcher(Config{Dir: root}, fake, 100*time.Millisecond)
		done <- w.run(ctx, func(r *GenerateResult, err error) {
			assert.NoError(t, err)
			runs <- r.PackagesLoaded
		})
	}()

	require.Equal(t, 1, waitRun(t, runs), "initial run")

	require.NoError(t, os.WriteFile(filepath.Join(root, "ui", "a.go"), []byte("package ui\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ui", "b.go"), []byte("package ui\n"), 0o644))
	assert.Equal(t, 2, waitRun(t, runs), "changes are batched into one run")

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_IgnoresGeneratedAndForeignFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	runs := make(chan int, 16)
	count := 0
	fake := func(context.Context, Config) (*GenerateResult, error) {
		count++
		return &GenerateResult{PackagesLoaded: count}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newWatcher(Config{Dir: root}, fake, 20*time.Millisecond).run(ctx, func(r *GenerateResult, _ error) {
			runs <- r.PackagesLoaded
		})
	}()
	require.Equal(t, 1, waitRun(t, runs))

	require.NoError(t, os.WriteFile(filepath.Join(root, emitter.FileName), []byte("package x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# notes\n"), 0o644))

	select {
	case n := <-runs:
		t.Fatalf("unexpected run %d", n)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_ReportsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := func(context.Context, Config) (*GenerateResult, error) {
		cancel()
		return nil, errors.New("load failed")
	}

	var got error
	err := newWatcher(Config{Dir: t.TempDir()}, failing, time.Millisecond).run(ctx, func(_ *GenerateResult, err error) {
		got = err
	})
	require.NoError(t, err)
	assert.EqualError(t, got, "load failed")
}

func TestWatch_InvalidExclude(t *testing.T) {
	err := Watch(context.Background(), Config{Dir: t.TempDir(), Excludes: []string{"[bad"}}, func(*GenerateResult, error) {})
	require.Error(t, err)
}

func TestRelevant(t *testing.T) {
	root := t.TempDir()
	filter, err := discovery.NewFilter(root, []string{"gen/**"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write go", fsnotify.Event{Name: filepath.Join(root, "a.go"), Op: fsnotify.Write}, true},
		{"remove go", fsnotify.Event{Name: filepath.Join(root, "a.go"), Op: fsnotify.Remove}, true},
		{"chmod go", fsnotify.Event{Name: filepath.Join(root, "a.go"), Op: fsnotify.Chmod}, false},
		{"markdown", fsnotify.Event{Name: filepath.Join(root, "a.md"), Op: fsnotify.Write}, false},
		{"temp file", fsnotify.Event{Name: filepath.Join(root, "a.go.tmp"), Op: fsnotify.Create}, false},
		{"generated", fsnotify.Event{Name: filepath.Join(root, emitter.FileName), Op: fsnotify.Write}, false},
		{"excluded", fsnotify.Event{Name: filepath.Join(root, "gen", "a.go"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event, filter))
		})
	}
}

func TestSkipDir(t *testing.T) {
	for _, name := range []string{".git", "vendor", "testdata", "node_modules", "_build"} {
		assert.True(t, skipDir(name), name)
	}
	assert.False(t, skipDir("ui"))
}

func waitRun(t *testing.T, runs <-chan int) int {
	t.Helper()
	select {
	case n := <-runs:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a generate run")
		return 0
	}
}
