package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lineagehq/lineage-graph/internal/store"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
)

// debounceWindow batches bursts of fixture-file writes (editors that
// write-then-rename, multi-file saves) into a single reload.
const debounceWindow = 300 * time.Millisecond

// Reload is delivered to a Watch callback after every debounced reload.
type Reload struct {
	Adapter  *store.MemoryAdapter
	Registry *taxonomy.Registry
}

// Watch loads dir once, invokes onReload, then watches dir for changes,
// reloading and re-invoking onReload on every debounced burst of writes.
// Blocks until ctx is cancelled. A reload that fails to parse is logged
// and skipped — the previously loaded graph keeps serving.
func Watch(ctx context.Context, dir string, log *zap.Logger, onReload func(Reload)) error {
	adapter, registry, err := Load(dir)
	if err != nil {
		return fmt.Errorf("initial fixture load: %w", err)
	}
	onReload(Reload{Adapter: adapter, Registry: registry})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fixture watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting up fixture watcher: %w", err)
	}

	timer := time.NewTimer(debounceWindow)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isYAML(event.Name) {
				continue
			}
			pending = true
			timer.Reset(debounceWindow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("fixture watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false

			adapter, registry, err := Load(dir)
			if err != nil {
				log.Warn("fixture reload failed, keeping previous graph", zap.Error(err))
				continue
			}
			log.Info("fixtures reloaded", zap.Int("nodes", adapter.NodeCount()), zap.Int("edges", adapter.EdgeCount()))
			onReload(Reload{Adapter: adapter, Registry: registry})
		}
	}
}
