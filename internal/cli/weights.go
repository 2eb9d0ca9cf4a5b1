package cli

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/srijanshukla18/kubectl-smart/internal/log"
	"github.com/srijanshukla18/kubectl-smart/internal/scoring"
)

// weightsSource serves the current scoring weights table, reloading it from
// disk whenever scoring.weights_file changes on disk. Grounded on
// kubilitics-ai's internal/config/manager.go OnConfigChange pattern: watch,
// reload, log-and-keep-serving-the-old-value on a bad reload rather than
// failing the in-flight request.
type weightsSource struct {
	path string

	mu      sync.RWMutex
	current map[string]int

	watcher *fsnotify.Watcher
}

// newWeightsSource loads path once (or scoring.DefaultWeights() if path is
// empty) and, when path is set, starts a background fsnotify watch so a
// long-running --watch invocation picks up edits without restarting.
func newWeightsSource(path string) (*weightsSource, error) {
	path = strings.TrimSpace(path)
	loaded, err := scoring.LoadWeights(path)
	if err != nil {
		return nil, err
	}
	s := &weightsSource{path: path, current: loaded}
	if path == "" {
		return s, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Hot-reload is a convenience, not a requirement: fall back to the
		// once-loaded table rather than failing the run.
		log.S().Debugw("weights hot-reload disabled", "error", err)
		return s, nil
	}
	if err := watcher.Add(path); err != nil {
		log.S().Debugw("weights hot-reload disabled", "path", path, "error", err)
		watcher.Close()
		return s, nil
	}
	s.watcher = watcher
	go s.run()
	return s, nil
}

func (s *weightsSource) run() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.S().Debugw("weights watcher error", "error", err)
		}
	}
}

func (s *weightsSource) reload() {
	loaded, err := scoring.LoadWeights(s.path)
	if err != nil {
		log.S().Warnw("weights file reload failed, keeping previous table", "path", s.path, "error", err)
		return
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	log.S().Infow("weights file reloaded", "path", s.path)
}

// Weights returns the current weights table.
func (s *weightsSource) Weights() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Close stops the background watch, if any.
func (s *weightsSource) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}
