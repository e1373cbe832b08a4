package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"explorer/internal/domain"
	"explorer/internal/schema"
	"explorer/internal/service"
	"explorer/internal/source"
	"explorer/internal/storage"
)

const launchesURL = "https://api.example.com/launches"

// fakeLoader serves canned records. A call can be held open with hold,
// and each started call is announced on started.
type fakeLoader struct {
	mu      sync.Mutex
	data    map[string][]*domain.Object
	errs    map[string]error
	hold    chan struct{}
	started chan string
	calls   int
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		data:    map[string][]*domain.Object{},
		errs:    map[string]error{},
		started: make(chan string, 16),
	}
}

func (l *fakeLoader) set(url string, records []*domain.Object, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[url] = records
	l.errs[url] = err
}

func (l *fakeLoader) Load(ctx context.Context, url string) ([]*domain.Object, error) {
	l.mu.Lock()
	l.calls++
	records, err, hold := l.data[url], l.errs[url], l.hold
	l.hold = nil
	l.mu.Unlock()

	l.started <- url
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, &source.UnavailableError{URL: url, Err: err}
	}
	return records, nil
}

func launchRecords() []*domain.Object {
	return []*domain.Object{
		domain.ObjectOf("id", "a", "name", "FalconSat", "success", false, "rocket", domain.ObjectOf("name", "Falcon 1")),
		domain.ObjectOf("id", "b", "name", "DemoSat", "success", false, "rocket", domain.ObjectOf("name", "Falcon 1")),
		domain.ObjectOf("id", "c", "name", "Starlink", "success", true, "rocket", domain.ObjectOf("name", "Falcon 9")),
	}
}

type fixture struct {
	svc     *service.ExplorerService
	loader  *fakeLoader
	configs *storage.ConfigStore
	emitter *service.MockEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loader := newFakeLoader()
	loader.set(launchesURL, launchRecords(), nil)
	configs := storage.NewConfigStore(storage.NewMemoryStore(), zap.NewNop())
	cache, err := schema.NewCache(4)
	require.NoError(t, err)
	emitter := &service.MockEmitter{}
	svc := service.NewExplorerService(service.ExplorerDeps{
		Configs: configs,
		History: storage.NewMemoryHistory(0),
		Loader:  loader,
		Schemas: cache,
		Emitter: emitter,
		Logger:  zap.NewNop(),
	})
	return &fixture{svc: svc, loader: loader, configs: configs, emitter: emitter}
}

func (f *fixture) open(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Open(ctx, url)
	require.NoError(t, err)
	require.NoError(t, f.svc.Wait(ctx))
}

func names(rows []*domain.Object) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = domain.ResolveString(r, "name")
	}
	return out
}

func TestExplorer_OpenLoadsAndInfers(t *testing.T) {
	f := newFixture(t)
	f.open(t, launchesURL)

	v := f.svc.Snapshot()
	assert.Equal(t, service.StatusReady, v.Status)
	assert.Equal(t, 3, v.Total)
	assert.Len(t, v.Rows, 3)
	assert.Empty(t, v.Columns)
	assert.Equal(t, []string{"id", "name", "success", "rocket.name"}, v.Schema.Paths())
	assert.Equal(t, 1, f.emitter.Count(service.EventSourceLoaded))

	recents, err := f.svc.Recents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{launchesURL}, recents)
}

func TestExplorer_EditsFilterAndPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	_, err := f.svc.AddPath(ctx, "name")
	require.NoError(t, err)
	_, err = f.svc.AddPath(ctx, "success")
	require.NoError(t, err)
	_, err = f.svc.SetValues(ctx, "success", []string{"false"})
	require.NoError(t, err)

	v := f.svc.Snapshot()
	assert.Equal(t, []string{"FalconSat", "DemoSat"}, names(v.Rows))
	assert.Equal(t, []string{"name", "success"}, v.Config.PathNames())

	saved, err := f.configs.Load(ctx, launchesURL)
	require.NoError(t, err)
	assert.Equal(t, v.Config, saved)

	_, err = f.svc.AddPath(ctx, "name")
	assert.ErrorIs(t, err, service.ErrPathConfigured)
	_, err = f.svc.RaisePath(ctx, "name")
	assert.ErrorIs(t, err, service.ErrCannotMove)
	_, err = f.svc.SetValues(ctx, "rocket.name", []string{"x"})
	assert.ErrorIs(t, err, service.ErrPathNotConfigured)
}

func TestExplorer_SearchIsTransient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)
	_, err := f.svc.AddPath(ctx, "rocket.name")
	require.NoError(t, err)

	n := f.svc.SetSearch(ctx, "falcon 9")
	assert.Equal(t, 1, n)

	saved, err := f.configs.Load(ctx, launchesURL)
	require.NoError(t, err)
	assert.False(t, saved.Paths[0].Active())

	assert.Equal(t, 3, f.svc.SetSearch(ctx, ""))
}

func TestExplorer_EditsRequireSource(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddPath(context.Background(), "name")
	assert.ErrorIs(t, err, service.ErrNoSource)
	_, err = f.svc.Refresh(context.Background())
	assert.ErrorIs(t, err, service.ErrNoSource)
}

func TestExplorer_StaleFetchIsDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, launchesURL)
	require.NoError(t, err)

	hold := make(chan struct{})
	f.loader.mu.Lock()
	f.loader.hold = hold
	f.loader.mu.Unlock()

	first, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	<-f.loader.started

	fresh := launchRecords()[:1]
	f.loader.set(launchesURL, fresh, nil)
	second, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)
	<-f.loader.started

	// The first response arrives last and carries the old data.
	f.loader.set(launchesURL, launchRecords(), nil)
	close(hold)
	require.NoError(t, f.svc.Wait(ctx))

	v := f.svc.Snapshot()
	assert.Equal(t, service.StatusReady, v.Status)
	assert.Equal(t, 1, v.Total)
	assert.Equal(t, 1, f.emitter.Count(service.EventSourceLoaded))
}

func TestExplorer_UnavailableKeepsRowsAndRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	f.loader.set(launchesURL, nil, errors.New("connection refused"))
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Wait(ctx))

	v := f.svc.Snapshot()
	assert.Equal(t, service.StatusUnavailable, v.Status)
	assert.Contains(t, v.Error, "connection refused")
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, f.emitter.Count(service.EventSourceUnavailable))

	f.loader.set(launchesURL, launchRecords()[:2], nil)
	_, err = f.svc.Retry(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Wait(ctx))

	v = f.svc.Snapshot()
	assert.Equal(t, service.StatusReady, v.Status)
	assert.Empty(t, v.Error)
	assert.Equal(t, 2, v.Total)
}

func TestExplorer_Reload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	require.NoError(t, f.svc.Reload(ctx, launchesURL))
	assert.ErrorIs(t, f.svc.Reload(ctx, "https://other"), service.ErrSourceChanged)

	f.loader.set(launchesURL, nil, errors.New("boom"))
	err := f.svc.Reload(ctx, launchesURL)
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
}

func TestExplorer_SwitchingSourceDropsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	other := "https://api.example.com/rockets"
	f.loader.set(other, []*domain.Object{domain.ObjectOf("name", "Falcon 9")}, nil)

	_, err := f.svc.Activate(ctx, other)
	require.NoError(t, err)
	v := f.svc.Snapshot()
	assert.Equal(t, other, v.Config.URL)
	assert.Zero(t, v.Total)

	f.open(t, other)
	assert.Equal(t, 1, f.svc.Snapshot().Total)

	recents, err := f.svc.Recents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{other, launchesURL}, recents)
}

func TestExplorer_SelectionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	_, err := f.svc.ToggleSelected(ctx, "a")
	assert.ErrorIs(t, err, service.ErrNoPrimaryKey)

	_, err = f.svc.SetPrimaryKey(ctx, "id")
	require.NoError(t, err)
	_, err = f.svc.AddPath(ctx, "success")
	require.NoError(t, err)
	_, err = f.svc.FilterSelected(ctx)
	assert.ErrorIs(t, err, service.ErrNothingSelected)

	_, err = f.svc.ToggleSelected(ctx, "a")
	require.NoError(t, err)
	_, err = f.svc.ToggleSelected(ctx, "c")
	require.NoError(t, err)

	_, err = f.svc.SetValues(ctx, "success", []string{"true"})
	require.NoError(t, err)
	f.svc.SetSearch(ctx, "true")

	n, err := f.svc.FilterSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v := f.svc.Snapshot()
	assert.True(t, v.OnlySelected)
	assert.Empty(t, v.Search)
	assert.False(t, v.Config.Paths[0].Active())
	assert.Equal(t, []string{"FalconSat", "Starlink"}, names(v.Rows))

	breakdowns, err := f.svc.Aggregate()
	require.NoError(t, err)
	require.Len(t, breakdowns, 1)
	assert.Equal(t, "success", breakdowns[0].Path)
	assert.Equal(t, 2, breakdowns[0].Total)

	assert.Equal(t, 3, f.svc.ClearSelection(ctx))
	_, err = f.svc.Aggregate()
	assert.ErrorIs(t, err, service.ErrNothingSelected)
}

func TestExplorer_SelectAllVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)
	_, err := f.svc.SetPrimaryKey(ctx, "id")
	require.NoError(t, err)
	_, err = f.svc.AddPath(ctx, "rocket.name")
	require.NoError(t, err)
	f.svc.SetSearch(ctx, "falcon 1")

	_, err = f.svc.SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.svc.Snapshot().Selection.Keys())
}

func TestExplorer_Detail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	_, err := f.svc.Detail("a")
	assert.ErrorIs(t, err, service.ErrNoPrimaryKey)

	_, err = f.svc.SetPrimaryKey(ctx, "id")
	require.NoError(t, err)
	out, err := f.svc.Detail("c")
	require.NoError(t, err)
	assert.Contains(t, out, "\n    \"name\": \"Starlink\"")

	_, err = f.svc.Detail("zzz")
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestExplorer_UndoRedo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	_, err := f.svc.Undo(ctx)
	assert.ErrorIs(t, err, service.ErrNothingToUndo)

	_, err = f.svc.AddPath(ctx, "name")
	require.NoError(t, err)
	_, err = f.svc.AddPath(ctx, "success")
	require.NoError(t, err)

	cfg, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, cfg.PathNames())

	cfg, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.Paths)

	cfg, err = f.svc.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, cfg.PathNames())

	saved, err := f.configs.Load(ctx, launchesURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, saved.PathNames())

	// A new edit after undo starts a branch; redo follows the newest one.
	_, err = f.svc.AddPath(ctx, "id")
	require.NoError(t, err)
	_, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	cfg, err = f.svc.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id"}, cfg.PathNames())

	_, err = f.svc.Redo(ctx)
	assert.ErrorIs(t, err, service.ErrNothingToRedo)
}

func TestExplorer_ConcurrentEditsChainHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	paths := []string{"id", "name", "success", "rocket.name"}
	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			_, err := f.svc.AddPath(ctx, path)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()
	require.Len(t, f.svc.Config().Paths, len(paths))

	// Every edit is one undo step away from the previous one.
	for i := len(paths) - 1; i >= 0; i-- {
		cfg, err := f.svc.Undo(ctx)
		require.NoError(t, err)
		assert.Len(t, cfg.Paths, i)
	}
	_, err := f.svc.Undo(ctx)
	assert.ErrorIs(t, err, service.ErrNothingToUndo)
}

func TestExplorer_SetRefreshValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)

	_, err := f.svc.SetRefresh(ctx, "not a schedule")
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)

	cfg, err := f.svc.SetRefresh(ctx, "*/5 * * * *")
	require.NoError(t, err)
	assert.Equal(t, "*/5 * * * *", cfg.Refresh)
}

func TestExplorer_StartAndDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.configs.Touch(ctx, launchesURL))

	require.NoError(t, f.svc.Start(ctx))
	require.NoError(t, f.svc.Wait(ctx))
	assert.Equal(t, launchesURL, f.svc.Config().URL)
	assert.Equal(t, 3, f.svc.Snapshot().Total)

	_, err := f.svc.AddPath(ctx, "name")
	require.NoError(t, err)
	_, err = f.svc.SetPrimaryKey(ctx, "id")
	require.NoError(t, err)

	require.NoError(t, f.svc.Disconnect(ctx))
	v := f.svc.Snapshot()
	assert.Empty(t, v.Config.URL)
	assert.Empty(t, v.Rows)
	assert.Equal(t, service.StatusIdle, v.Status)
	last, ok := f.emitter.Last(service.EventSourceActivated)
	require.True(t, ok)
	assert.Empty(t, last.(domain.Configuration).URL)

	saved, err := f.configs.Load(ctx, launchesURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, saved.PathNames())
	assert.Equal(t, "id", saved.PrimaryKey)

	recents, err := f.svc.Recents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{launchesURL}, recents)

	require.NoError(t, f.svc.Start(ctx))
	require.NoError(t, f.svc.Wait(ctx))
	assert.Equal(t, launchesURL, f.svc.Config().URL)
	assert.Equal(t, []string{"name"}, f.svc.Config().PathNames())
}

func TestExplorer_Forget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, launchesURL)
	_, err := f.svc.AddPath(ctx, "name")
	require.NoError(t, err)

	require.NoError(t, f.svc.Forget(ctx, launchesURL))
	assert.Empty(t, f.svc.Config().URL)

	recents, err := f.svc.Recents(ctx)
	require.NoError(t, err)
	assert.Empty(t, recents)

	saved, err := f.configs.Load(ctx, launchesURL)
	require.NoError(t, err)
	assert.Empty(t, saved.Paths)

	assert.ErrorIs(t, f.svc.Forget(ctx, ""), service.ErrNoSource)
}

func TestExplorer_Prefetch(t *testing.T) {
	f := newFixture(t)
	broken := "https://api.example.com/broken"
	f.loader.set(broken, nil, errors.New("503"))

	results := f.svc.Prefetch(context.Background(), []string{launchesURL, broken}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, launchesURL, results[0].URL)
	assert.Equal(t, 3, results[0].Records)
	assert.Equal(t, 4, results[0].Properties)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)

	// A prefetched schema is offered before the first fetch completes.
	_, err := f.svc.Activate(context.Background(), launchesURL)
	require.NoError(t, err)
	assert.Len(t, f.svc.Available(""), 4)
}

func TestExplorer_WaitHonoursContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Activate(ctx, launchesURL)
	require.NoError(t, err)

	hold := make(chan struct{})
	defer close(hold)
	f.loader.mu.Lock()
	f.loader.hold = hold
	f.loader.mu.Unlock()

	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.svc.Wait(waitCtx), context.DeadlineExceeded)
	assert.Equal(t, service.StatusLoading, f.svc.Snapshot().Status)
}
