package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"explorer/internal/domain"
	"explorer/internal/source"
)

// ─────────────────────────────────────────────────────────────
// Refresh Service — scheduled and file-triggered reloads
// ─────────────────────────────────────────────────────────────

// Reloader refetches a source if it is still the active one.
type Reloader interface {
	Reload(ctx context.Context, url string) error
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(ctx context.Context, url string) error

func (f ReloaderFunc) Reload(ctx context.Context, url string) error { return f(ctx, url) }

// DefaultDebounce is how long file changes settle before a reload.
const DefaultDebounce = 500 * time.Millisecond

// RefreshService reloads the active source on its cron schedule and,
// for file sources, whenever the file is written. It subscribes to
// ExplorerService events, so it is wired in as an EventEmitter.
type RefreshService struct {
	reloader Reloader
	logger   *zap.Logger
	debounce time.Duration
	guard    reloadGuard

	mu          sync.Mutex
	watching    domain.Configuration
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewRefreshService creates a RefreshService with nothing scheduled.
func NewRefreshService(reloader Reloader, logger *zap.Logger) *RefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshService{
		reloader: reloader,
		logger:   logger.Named("refresh"),
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the settle delay for file changes.
func (s *RefreshService) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// Emit reacts to activation and configuration events by rescheduling.
func (s *RefreshService) Emit(ctx context.Context, event string, data any) {
	if event != EventSourceActivated && event != EventConfigChanged {
		return
	}
	cfg, ok := data.(domain.Configuration)
	if !ok {
		return
	}
	s.mu.Lock()
	same := s.watching.URL == cfg.URL && s.watching.Refresh == cfg.Refresh
	s.mu.Unlock()
	if same {
		return
	}
	if err := s.Watch(ctx, cfg); err != nil {
		s.logger.Warn("failed to schedule refresh", zap.String("url", cfg.URL), zap.Error(err))
	}
}

// Watching returns the configuration whose source is being watched.
func (s *RefreshService) Watching() domain.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// Watch tears down the current schedule and file watcher and rebuilds them
// for cfg. A bare configuration stops everything.
func (s *RefreshService) Watch(ctx context.Context, cfg domain.Configuration) error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = domain.Configuration{URL: cfg.URL, Refresh: cfg.Refresh}
	if cfg.URL == "" {
		return nil
	}

	// Reloads outlive whichever request triggered the rescheduling.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.watchCancel = cancel
	url := cfg.URL

	var errs []error

	// ── Cron ──
	if cfg.Refresh != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Refresh, func() { s.reload(runCtx, url, "cron") }); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, cfg.Refresh, err))
		} else {
			c.Start()
			s.cronSched = c
			s.logger.Info("refresh scheduled", zap.String("url", url), zap.String("spec", cfg.Refresh))
		}
	}

	// ── File watcher ──
	path, ok := source.FilePath(url)
	if !ok {
		return errors.Join(errs...)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("resolve %q: %w", path, err))...)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("create watcher: %w", err))...)
	}
	// Watch the directory: editors often replace files instead of writing them.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return errors.Join(append(errs, fmt.Errorf("watch %q: %w", filepath.Dir(absPath), err))...)
	}
	s.watcher = watcher
	s.logger.Info("watching file", zap.String("path", absPath))

	go s.watchLoop(runCtx, watcher, absPath, url, s.debounce)
	return errors.Join(errs...)
}

func (s *RefreshService) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, absPath, url string, debounce time.Duration) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != absPath {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { s.reload(ctx, url, "file") })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (s *RefreshService) reload(ctx context.Context, url, trigger string) {
	if ctx.Err() != nil {
		return
	}
	if !s.guard.Acquire(url) {
		s.logger.Debug("reload queued behind running one", zap.String("url", url), zap.String("trigger", trigger))
		return
	}
	for again := true; again; again = s.guard.Release(url) {
		s.reloadOnce(ctx, url, trigger)
	}
}

func (s *RefreshService) reloadOnce(ctx context.Context, url, trigger string) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Debug("reloading", zap.String("url", url), zap.String("trigger", trigger))
	err := s.reloader.Reload(ctx, url)
	switch {
	case errors.Is(err, ErrSourceChanged):
		s.logger.Debug("skipped reload of inactive source", zap.String("url", url))
	case err != nil:
		s.logger.Warn("reload failed", zap.String("url", url), zap.String("trigger", trigger), zap.Error(err))
	}
}

// Stop cancels the schedule and file watcher. In-flight reloads finish.
func (s *RefreshService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
	s.watching = domain.Configuration{}
}

// WaitRunning blocks until in-flight reloads finish or ctx is done.
func (s *RefreshService) WaitRunning(ctx context.Context) {
	s.guard.Wait(ctx)
}
