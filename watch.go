package themecss

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/yacobolo/themecss/internal/discovery"
	"github.com/yacobolo/themecss/internal/fsutil"
)

// DefaultDebounce batches the bursts of events editors emit on save.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc receives the outcome of every generate run in watch mode.
type RunFunc func(*GenerateResult, error)

// Watch runs Generate once and again after every batch of Go source
// changes below config.Dir, until ctx is cancelled.
func Watch(ctx context.Context, config Config, onRun RunFunc) error {
	return newWatcher(config, Generate, DefaultDebounce).run(ctx, onRun)
}

type generateFunc func(context.Context, Config) (*GenerateResult, error)

type watcher struct {
	config   Config
	generate generateFunc
	debounce time.Duration
	log      *zap.Logger
}

func newWatcher(config Config, generate generateFunc, debounce time.Duration) *watcher {
	return &watcher{
		config:   config,
		generate: generate,
		debounce: debounce,
		log:      logger(config.Logger),
	}
}

func (w *watcher) run(ctx context.Context, onRun RunFunc) error {
	root, err := filepath.Abs(orDefault(w.config.Dir, "."))
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	filter, err := discovery.NewFilter(root, w.config.Excludes)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, filter, root); err != nil {
		return err
	}

	onRun(w.generate(ctx, w.config))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, filter, event.Name); err != nil {
						w.log.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if relevant(event, filter) {
				w.log.Debug("source changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if ctx.Err() != nil {
				return nil
			}
			onRun(w.generate(ctx, w.config))
		}
	}
}

// addTree watches dir and every directory below it that may hold sources.
func (w *watcher) addTree(fsw *fsnotify.Watcher, filter *discovery.Filter, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (skipDir(d.Name()) || filter.Skip(path)) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	switch name {
	case "vendor", "testdata", "node_modules":
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// relevant reports whether event touches a Go source that discovery reads.
func relevant(event fsnotify.Event, filter *discovery.Filter) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := event.Name
	if strings.HasSuffix(name, fsutil.TempSuffix) || !strings.HasSuffix(name, ".go") {
		return false
	}
	return !filter.Skip(name)
}
