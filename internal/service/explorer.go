package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"explorer/internal/domain"
	"explorer/internal/schema"
	"explorer/internal/source"
	"explorer/internal/view"
)

// ─────────────────────────────────────────────────────────────
// Explorer Service — the active source, its view and its edits
// ─────────────────────────────────────────────────────────────

// Loader fetches and decodes the records of one source.
type Loader interface {
	Load(ctx context.Context, location string) ([]*domain.Object, error)
}

// Status is the fetch state of the active source.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

// ExplorerDeps groups everything ExplorerService needs.
type ExplorerDeps struct {
	Configs domain.ConfigStore
	History domain.HistoryStore
	Loader  Loader
	Schemas *schema.Cache
	Emitter EventEmitter
	Logger  *zap.Logger
}

// ExplorerService owns the active Configuration and derives the schema
// and visible rows from it. All methods are safe for concurrent use.
//
// Fetches run in the background. Each fetch carries a generation number;
// a result whose generation is no longer current is discarded, so a slow
// response can never overwrite a newer one.
type ExplorerService struct {
	configs domain.ConfigStore
	history domain.HistoryStore
	loader  Loader
	schemas *schema.Cache
	emitter EventEmitter
	logger  *zap.Logger

	mu         sync.Mutex
	cfg        domain.Configuration
	records    []*domain.Object
	schema     domain.Schema
	visible    []*domain.Object
	query      view.Query
	status     Status
	lastErr    error
	generation uint64
	historyID  string

	inflight sync.WaitGroup
}

// NewExplorerService creates an ExplorerService with no active source.
func NewExplorerService(deps ExplorerDeps) *ExplorerService {
	if deps.Emitter == nil {
		deps.Emitter = NopEmitter{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Schemas == nil {
		deps.Schemas, _ = schema.NewCache(schema.DefaultCacheSize)
	}
	return &ExplorerService{
		configs: deps.Configs,
		history: deps.History,
		loader:  deps.Loader,
		schemas: deps.Schemas,
		emitter: deps.Emitter,
		logger:  deps.Logger.Named("explorer"),
		cfg:     domain.BareConfiguration(""),
		query:   view.Query{Selection: view.NewSelection()},
		status:  StatusIdle,
	}
}

// View is a consistent snapshot of the explorer state.
type View struct {
	Config       domain.Configuration `json:"config"`
	Status       Status               `json:"status"`
	Error        string               `json:"error,omitempty"`
	Generation   uint64               `json:"generation"`
	Schema       domain.Schema        `json:"schema"`
	Columns      []domain.Property    `json:"columns"`
	Rows         []*domain.Object     `json:"rows"`
	Total        int                  `json:"total"`
	Search       string               `json:"search,omitempty"`
	Selection    view.Selection       `json:"selection"`
	OnlySelected bool                 `json:"onlySelected"`
}

// ── Lifecycle ──────────────────────────────────────────────

// Start reopens the most recently used source, if any.
func (s *ExplorerService) Start(ctx context.Context) error {
	recents, err := s.configs.Recents(ctx)
	if err != nil {
		return fmt.Errorf("load recents: %w", err)
	}
	if len(recents) == 0 {
		return nil
	}
	_, err = s.Open(ctx, recents[0])
	return err
}

// Activate makes url the active source using its saved configuration,
// without fetching. Records of a previous source are dropped; a cached
// schema for url is shown until the next fetch completes.
func (s *ExplorerService) Activate(ctx context.Context, url string) (domain.Configuration, error) {
	if url == "" {
		return domain.Configuration{}, ErrNoSource
	}
	cfg, err := s.configs.Load(ctx, url)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := s.configs.Touch(ctx, url); err != nil {
		s.logger.Warn("failed to update recents", zap.String("url", url), zap.Error(err))
	}
	historyID := s.initHistory(ctx, cfg)

	s.mu.Lock()
	if s.cfg.URL != url {
		s.records = nil
		s.schema, _ = s.schemas.Get(url)
		s.status = StatusIdle
		s.lastErr = nil
		// Any fetch of the previous source is now stale.
		s.generation++
	}
	s.cfg = cfg
	s.historyID = historyID
	s.query = view.Query{Selection: view.NewSelection()}
	s.recompute()
	s.mu.Unlock()

	s.logger.Info("source activated", zap.String("url", url), zap.Int("paths", len(cfg.Paths)))
	s.emitter.Emit(ctx, EventSourceActivated, cfg.Clone())
	return cfg.Clone(), nil
}

// Open activates url and starts fetching it.
func (s *ExplorerService) Open(ctx context.Context, url string) (uint64, error) {
	if _, err := s.Activate(ctx, url); err != nil {
		return 0, err
	}
	return s.Refresh(ctx)
}

// Refresh starts a background fetch of the active source and returns its
// generation. Rows already on screen stay until the new set is ready.
func (s *ExplorerService) Refresh(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	url := s.cfg.URL
	if url == "" {
		s.mu.Unlock()
		return 0, ErrNoSource
	}
	s.generation++
	gen := s.generation
	s.status = StatusLoading
	s.inflight.Add(1)
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventSourceLoading, LoadEvent{URL: url, Generation: gen})

	// The fetch outlives the caller's request; the loader applies its own timeout.
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		defer s.inflight.Done()
		records, err := s.loader.Load(fetchCtx, url)
		s.complete(fetchCtx, gen, url, records, err)
	}()
	return gen, nil
}

// Retry fetches the active source again after a failure.
func (s *ExplorerService) Retry(ctx context.Context) (uint64, error) {
	return s.Refresh(ctx)
}

// Reload fetches url and waits for the result, as long as url is still
// the active source. Scheduled refreshes go through here.
func (s *ExplorerService) Reload(ctx context.Context, url string) error {
	s.mu.Lock()
	active := s.cfg.URL
	s.mu.Unlock()
	if active != url {
		return ErrSourceChanged
	}
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	if err := s.Wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.URL == url && s.status == StatusUnavailable {
		return s.lastErr
	}
	return nil
}

func (s *ExplorerService) complete(ctx context.Context, gen uint64, url string, records []*domain.Object, err error) {
	s.mu.Lock()
	if gen != s.generation || url != s.cfg.URL {
		s.mu.Unlock()
		s.logger.Debug("discarding stale fetch",
			zap.String("url", url), zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		s.status = StatusUnavailable
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("source unavailable", zap.String("url", url), zap.Error(err))
		s.emitter.Emit(ctx, EventSourceUnavailable, LoadEvent{URL: url, Generation: gen, Error: err.Error()})
		return
	}
	s.records = records
	s.schema = s.schemas.Infer(url, records)
	s.status = StatusReady
	s.lastErr = nil
	s.recompute()
	visible := len(s.visible)
	s.mu.Unlock()

	s.logger.Info("source loaded",
		zap.String("url", url),
		zap.Uint64("generation", gen),
		zap.Int("records", len(records)),
		zap.Int("visible", visible),
	)
	s.emitter.Emit(ctx, EventSourceLoaded, LoadEvent{URL: url, Generation: gen, Records: len(records)})
}

// Wait blocks until every in-flight fetch has settled or ctx is done.
func (s *ExplorerService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect closes the active source. Its saved configuration and its
// place in the recents list are kept.
func (s *ExplorerService) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	url := s.cfg.URL
	s.reset()
	s.mu.Unlock()

	if url == "" {
		return nil
	}
	s.logger.Info("source disconnected", zap.String("url", url))
	s.emitter.Emit(ctx, EventSourceActivated, domain.BareConfiguration(""))
	return nil
}

// Forget removes url from the recents list and deletes its saved
// configuration, disconnecting first when it is the active source.
func (s *ExplorerService) Forget(ctx context.Context, url string) error {
	if url == "" {
		return ErrNoSource
	}
	if s.Config().URL == url {
		if err := s.Disconnect(ctx); err != nil {
			return err
		}
	}
	if err := s.configs.Forget(ctx, url); err != nil {
		return fmt.Errorf("forget %s: %w", url, err)
	}
	s.schemas.Invalidate(url)
	s.logger.Info("source forgotten", zap.String("url", url))
	return nil
}

// reset returns to the bare state. Requires s.mu.
func (s *ExplorerService) reset() {
	s.cfg = domain.BareConfiguration("")
	s.records = nil
	s.schema = domain.Schema{}
	s.visible = nil
	s.query = view.Query{Selection: view.NewSelection()}
	s.status = StatusIdle
	s.lastErr = nil
	s.historyID = ""
	s.generation++
}

// ── Reads ──────────────────────────────────────────────────

// Snapshot returns the current state. Slices in the result are never
// mutated afterwards and may be shared.
func (s *ExplorerService) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Config:       s.cfg.Clone(),
		Status:       s.status,
		Generation:   s.generation,
		Schema:       s.schema,
		Columns:      view.Columns(s.cfg, s.schema),
		Rows:         s.visible,
		Total:        len(s.records),
		Search:       s.query.Search,
		Selection:    s.query.Selection,
		OnlySelected: s.query.OnlySelected,
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

// Config returns the active configuration.
func (s *ExplorerService) Config() domain.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Schema returns the schema of the active source.
func (s *ExplorerService) Schema() domain.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// Available lists schema properties not yet configured whose path matches pattern.
func (s *ExplorerService) Available(pattern string) []domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Available(s.cfg, s.schema, pattern)
}

// Configured lists configured columns whose path matches pattern.
func (s *ExplorerService) Configured(pattern string) []view.ConfiguredPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Configured(s.cfg, s.schema, pattern)
}

// FilterControls describes the filter widget of each configured column.
func (s *ExplorerService) FilterControls() []view.FilterControl {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.FilterControls(s.cfg, s.schema)
}

// Aggregate breaks down the selected visible rows by every configured path.
func (s *ExplorerService) Aggregate() ([]view.Breakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.PrimaryKey == "" {
		return nil, ErrNoPrimaryKey
	}
	if s.query.Selection.Len() == 0 {
		return nil, ErrNothingSelected
	}
	rows := s.query.Selection.Rows(s.visible, s.cfg.PrimaryKey)
	return view.Aggregate(rows, s.cfg, s.schema), nil
}

// Detail renders the full record whose primary key stringifies to key.
func (s *ExplorerService) Detail(key string) (string, error) {
	s.mu.Lock()
	pk, records := s.cfg.PrimaryKey, s.records
	s.mu.Unlock()
	if pk == "" {
		return "", ErrNoPrimaryKey
	}
	rec, ok := view.FindByKey(records, pk, key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	return view.Detail(rec)
}

// Recents lists previously opened sources, most recent first.
func (s *ExplorerService) Recents(ctx context.Context) ([]string, error) {
	return s.configs.Recents(ctx)
}

// Examples lists sample sources for a first run.
func (s *ExplorerService) Examples() []source.Example {
	return source.Examples
}

// ── Configuration edits ────────────────────────────────────

// AddPath appends path as the last column.
func (s *ExplorerService) AddPath(ctx context.Context, path string) (domain.Configuration, error) {
	return s.apply(ctx, "add "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathConfigured, path)
		}
		return view.AddPath(cfg, path), nil
	})
}

// RemovePath drops the column for path.
func (s *ExplorerService) RemovePath(ctx context.Context, path string) (domain.Configuration, error) {
	return s.apply(ctx, "remove "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if !cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathNotConfigured, path)
		}
		return view.RemovePath(cfg, path), nil
	})
}

// RaisePath moves the column for path one position left.
func (s *ExplorerService) RaisePath(ctx context.Context, path string) (domain.Configuration, error) {
	return s.apply(ctx, "raise "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if !cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathNotConfigured, path)
		}
		if !view.CanRaise(cfg, path) {
			return cfg, fmt.Errorf("%w: %s is first", ErrCannotMove, path)
		}
		return view.RaisePath(cfg, path), nil
	})
}

// LowerPath moves the column for path one position right.
func (s *ExplorerService) LowerPath(ctx context.Context, path string) (domain.Configuration, error) {
	return s.apply(ctx, "lower "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if !cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathNotConfigured, path)
		}
		if !view.CanLower(cfg, path) {
			return cfg, fmt.Errorf("%w: %s is last", ErrCannotMove, path)
		}
		return view.LowerPath(cfg, path), nil
	})
}

// SetValues replaces the allow-list of path. An empty list clears it.
func (s *ExplorerService) SetValues(ctx context.Context, path string, values []string) (domain.Configuration, error) {
	return s.apply(ctx, "filter "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if !cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathNotConfigured, path)
		}
		return view.SetValues(cfg, path, values), nil
	})
}

// SetPathSearch replaces the search pattern of path.
func (s *ExplorerService) SetPathSearch(ctx context.Context, path, search string) (domain.Configuration, error) {
	return s.apply(ctx, "search "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		if !cfg.Has(path) {
			return cfg, fmt.Errorf("%w: %s", ErrPathNotConfigured, path)
		}
		return view.SetPathSearch(cfg, path, search), nil
	})
}

// ClearFilters drops every per-path filter, keeping the columns.
func (s *ExplorerService) ClearFilters(ctx context.Context) (domain.Configuration, error) {
	return s.apply(ctx, "clear filters", func(cfg domain.Configuration) (domain.Configuration, error) {
		return view.ClearFilters(cfg), nil
	})
}

// SetPrimaryKey designates the path that identifies records. Changing
// it invalidates the selection.
func (s *ExplorerService) SetPrimaryKey(ctx context.Context, path string) (domain.Configuration, error) {
	cfg, err := s.apply(ctx, "key "+path, func(cfg domain.Configuration) (domain.Configuration, error) {
		return view.SetPrimaryKey(cfg, path), nil
	})
	if err != nil {
		return cfg, err
	}
	s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Selection = view.NewSelection()
		q.OnlySelected = false
		return q
	})
	return cfg, nil
}

// SetRefresh sets the cron schedule for periodic reloads. An empty spec
// disables them.
func (s *ExplorerService) SetRefresh(ctx context.Context, spec string) (domain.Configuration, error) {
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return domain.Configuration{}, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
		}
	}
	return s.apply(ctx, "refresh "+spec, func(cfg domain.Configuration) (domain.Configuration, error) {
		return view.SetRefresh(cfg, spec), nil
	})
}

// apply runs one configuration edit: it derives the new document,
// recomputes the view, persists the result and records it in history.
func (s *ExplorerService) apply(ctx context.Context, label string, edit func(domain.Configuration) (domain.Configuration, error)) (domain.Configuration, error) {
	s.mu.Lock()
	if s.cfg.URL == "" {
		s.mu.Unlock()
		return domain.Configuration{}, ErrNoSource
	}
	next, err := edit(s.cfg)
	if err != nil {
		s.mu.Unlock()
		return domain.Configuration{}, err
	}
	if err := s.configs.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Configuration{}, fmt.Errorf("save configuration: %w", err)
	}
	s.cfg = next
	s.recompute()
	s.record(ctx, label, next)
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventConfigChanged, next.Clone())
	return next.Clone(), nil
}

// ── Transient query ────────────────────────────────────────

// SetSearch sets the free-text search over configured columns.
func (s *ExplorerService) SetSearch(ctx context.Context, text string) int {
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Search = text
		return q
	})
}

// ToggleSelected adds or removes key from the selection.
func (s *ExplorerService) ToggleSelected(ctx context.Context, key string) (int, error) {
	if s.Config().PrimaryKey == "" {
		return 0, ErrNoPrimaryKey
	}
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Selection = q.Selection.Toggle(key)
		return q
	}), nil
}

// SelectAll selects every currently visible row.
func (s *ExplorerService) SelectAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	pk, visible := s.cfg.PrimaryKey, s.visible
	s.mu.Unlock()
	if pk == "" {
		return 0, ErrNoPrimaryKey
	}
	sel := view.SelectAll(visible, pk)
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Selection = q.Selection.With(sel.Keys()...)
		return q
	}), nil
}

// ClearSelection empties the selection and shows every row again.
func (s *ExplorerService) ClearSelection(ctx context.Context) int {
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Selection = view.NewSelection()
		q.OnlySelected = false
		return q
	})
}

// FilterSelected narrows the view to exactly the selected rows. Other
// filters and the search are cleared so the selection is shown whole.
func (s *ExplorerService) FilterSelected(ctx context.Context) (int, error) {
	s.mu.Lock()
	pk, n := s.cfg.PrimaryKey, s.query.Selection.Len()
	s.mu.Unlock()
	if pk == "" {
		return 0, ErrNoPrimaryKey
	}
	if n == 0 {
		return 0, ErrNothingSelected
	}
	if _, err := s.ClearFilters(ctx); err != nil {
		return 0, err
	}
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.Search = ""
		q.OnlySelected = true
		return q
	}), nil
}

// ShowAll leaves selection mode, keeping the selection itself.
func (s *ExplorerService) ShowAll(ctx context.Context) int {
	return s.updateQuery(ctx, func(q view.Query) view.Query {
		q.OnlySelected = false
		return q
	})
}

func (s *ExplorerService) updateQuery(ctx context.Context, fn func(view.Query) view.Query) int {
	s.mu.Lock()
	s.query = fn(s.query)
	s.recompute()
	n := len(s.visible)
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventViewChanged, n)
	return n
}

// recompute must be called with s.mu held.
func (s *ExplorerService) recompute() {
	s.visible = view.ComputeVisible(s.records, s.cfg, s.query)
}
