package rules

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Store holds the active registry behind an atomic pointer so scans running
// on many goroutines always see one complete registry while reloads swap in
// a new one. Reads never block; writes are serialized.
type Store struct {
	current atomic.Pointer[Registry]
	paths   []string
	mu      sync.Mutex
}

// NewStore wraps an initial registry. paths, when given, are the sources
// Reload and Watch rebuild from; with none, Reload rebuilds the embedded
// defaults.
func NewStore(reg *Registry, paths ...string) *Store {
	s := &Store{paths: paths}
	if reg == nil {
		reg = NewRegistry()
	}
	s.current.Store(reg)
	return s
}

// Snapshot returns the active registry. Callers use the returned value for
// the whole operation so a concurrent swap cannot split their view.
func (s *Store) Snapshot() *Registry {
	return s.current.Load()
}

// Swap installs a new registry and returns the previous one.
func (s *Store) Swap(reg *Registry) *Registry {
	if reg == nil {
		reg = NewRegistry()
	}
	return s.current.Swap(reg)
}

// Reload rebuilds the registry from the store's configured paths and swaps
// it in. On failure the active registry stays untouched and the error
// describes the offending file.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		reg *Registry
		err error
	)
	if len(s.paths) == 0 {
		reg, err = LoadDefault()
	} else {
		reg, err = Load(s.paths...)
	}
	if err != nil {
		return fmt.Errorf("reloading rules: %w", err)
	}

	// Keep versions strictly increasing across swaps so consumers can tell
	// snapshots apart even when the rule count is unchanged.
	if prev := s.current.Load(); prev != nil && reg.version <= prev.version {
		reg.version = prev.version + 1
	}
	s.current.Store(reg)
	log.Info().Int("rules", reg.Len()).Int("version", reg.Version()).Msg("rule registry reloaded")
	return nil
}

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the store whenever one of its configured paths changes.
// It returns after the watcher is installed; reloads happen on a background
// goroutine until ctx is done. A failed reload logs the error and keeps the
// active registry serving.
func (s *Store) Watch(ctx context.Context) error {
	if len(s.paths) == 0 {
		return fmt.Errorf("watch requires configured rule paths")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating rule watcher: %w", err)
	}
	for _, p := range s.paths {
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	go func() {
		defer watcher.Close()
		timer := time.NewTimer(watchDebounce)
		if !timer.Stop() {
			<-timer.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("rule source changed")
				timer.Reset(watchDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("rule watcher error")
			case <-timer.C:
				if err := s.Reload(); err != nil {
					log.Error().Err(err).Msg("rule reload failed, keeping active registry")
				}
			}
		}
	}()
	return nil
}
