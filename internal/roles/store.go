package roles

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 150 * time.Millisecond

// Store is a Registry backed by a role definition file. Lookups always see
// one complete snapshot; a reload swaps the snapshot atomically and a failed
// reload keeps the previous one.
type Store struct {
	path   string
	logger *logging.Logger
	bus    *event.Bus

	mu      sync.RWMutex
	current *Set
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for load and reload failures.
func WithLogger(logger *logging.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus publishes an event.RolesReloadedEvent after each reload attempt.
func WithBus(bus *event.Bus) StoreOption {
	return func(s *Store) {
		s.bus = bus
	}
}

// NewStore loads path into a Store. When the file cannot be loaded the
// built-in roles are served and the failure is logged; the error is
// returned for the caller to report.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{path: path, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}

	set, err := LoadFile(path)
	if err != nil {
		s.logger.Warn("role file load failed, using built-in roles", "path", path, "error", err.Error())
		s.current = Default()
		return s, err
	}
	s.current = set
	s.logger.Info("roles loaded", "path", path, "count", set.Len())
	return s, nil
}

func (s *Store) snapshot() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ByID returns the role with the given id.
func (s *Store) ByID(id string) (Role, bool) { return s.snapshot().ByID(id) }

// AllIDs returns the role ids in definition order.
func (s *Store) AllIDs() []string { return s.snapshot().AllIDs() }

// Recommended returns the recommended list.
func (s *Store) Recommended() []string { return s.snapshot().Recommended() }

// Orchestrator returns the orchestrator persona.
func (s *Store) Orchestrator() Role { return s.snapshot().Orchestrator() }

// Roles returns the current roles in definition order.
func (s *Store) Roles() []Role { return s.snapshot().Roles() }

// Reload re-reads the file. On failure the current roles stay in place.
func (s *Store) Reload() error {
	set, err := LoadFile(s.path)
	if err != nil {
		s.logger.Warn("role file reload failed, keeping previous roles", "path", s.path, "error", err.Error())
		if s.bus != nil {
			s.bus.Publish(event.NewRolesReloadedEvent(s.path, s.snapshot().Len(), err.Error()))
		}
		return err
	}

	s.mu.Lock()
	s.current = set
	s.mu.Unlock()

	s.logger.Info("roles reloaded", "path", s.path, "count", set.Len())
	if s.bus != nil {
		s.bus.Publish(event.NewRolesReloadedEvent(s.path, set.Len(), ""))
	}
	return nil
}

// Watch reloads the file whenever it changes until ctx is done. The parent
// directory is watched so that editors that save by renaming are seen.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.path)
	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(reloadDebounce)

		case <-debounce.C:
			if pending {
				pending = false
				_ = s.Reload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("role file watcher error", "path", s.path, "error", err.Error())
		}
	}
}
