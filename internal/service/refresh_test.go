package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"explorer/internal/domain"
	"explorer/internal/service"
)

type countingReloader struct {
	mu   sync.Mutex
	urls []string
}

func (r *countingReloader) Reload(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.urls)
}

func TestRefresh_FileChangeTriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launches.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	reloader := &countingReloader{}
	svc := service.NewRefreshService(reloader, zap.NewNop())
	svc.SetDebounce(10 * time.Millisecond)
	defer svc.Stop()

	cfg := domain.BareConfiguration("file://" + path)
	svc.Emit(context.Background(), service.EventSourceActivated, cfg)
	assert.Equal(t, cfg.URL, svc.Watching().URL)

	require.NoError(t, os.WriteFile(path, []byte(`[{"a":1}]`), 0o644))
	require.Eventually(t, func() bool { return reloader.count() > 0 }, 2*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	before := reloader.count()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`[]`), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, reloader.count())
}

func TestRefresh_InvalidSchedule(t *testing.T) {
	svc := service.NewRefreshService(&countingReloader{}, zap.NewNop())
	defer svc.Stop()

	cfg := domain.BareConfiguration("https://api.example.com/launches")
	cfg.Refresh = "every tuesday"
	err := svc.Watch(context.Background(), cfg)
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)
}

func TestRefresh_IgnoresOtherEvents(t *testing.T) {
	svc := service.NewRefreshService(&countingReloader{}, zap.NewNop())
	defer svc.Stop()

	svc.Emit(context.Background(), service.EventViewChanged, 3)
	svc.Emit(context.Background(), service.EventConfigChanged, "not a configuration")
	assert.Empty(t, svc.Watching().URL)

	cfg := domain.BareConfiguration("https://api.example.com/launches")
	cfg.Refresh = "@every 1h"
	svc.Emit(context.Background(), service.EventConfigChanged, cfg)
	assert.Equal(t, "@every 1h", svc.Watching().Refresh)

	svc.Emit(context.Background(), service.EventSourceActivated, domain.BareConfiguration(""))
	assert.Empty(t, svc.Watching().URL)
}

func TestRefresh_ExplorerEventsReschedule(t *testing.T) {
	f := newFixture(t)
	refresher := service.NewRefreshService(f.svc, zap.NewNop())
	defer refresher.Stop()

	// Rebuild the service so its emitter fans out to the refresher.
	svc := service.NewExplorerService(service.ExplorerDeps{
		Configs: f.configs,
		Loader:  f.loader,
		Emitter: service.Emitters{f.emitter, refresher},
	})
	ctx := context.Background()
	_, err := svc.Activate(ctx, launchesURL)
	require.NoError(t, err)
	assert.Equal(t, launchesURL, refresher.Watching().URL)

	_, err = svc.SetRefresh(ctx, "@every 1m")
	require.NoError(t, err)
	assert.Equal(t, "@every 1m", refresher.Watching().Refresh)
}

// slowReloader blocks its first reload until release is closed.
type slowReloader struct {
	countingReloader
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *slowReloader) Reload(ctx context.Context, url string) error {
	_ = r.countingReloader.Reload(ctx, url)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.started)
		<-r.release
	}
	return nil
}

func TestRefresh_ChangeDuringReloadRunsAgain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launches.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	reloader := &slowReloader{started: make(chan struct{}), release: make(chan struct{})}
	svc := service.NewRefreshService(reloader, zap.NewNop())
	svc.SetDebounce(10 * time.Millisecond)
	defer svc.Stop()
	require.NoError(t, svc.Watch(context.Background(), domain.BareConfiguration("file://"+path)))

	require.NoError(t, os.WriteFile(path, []byte(`[{"a":1}]`), 0o644))
	select {
	case <-reloader.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first reload never started")
	}

	require.NoError(t, os.WriteFile(path, []byte(`[{"a":2}]`), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, reloader.count())

	close(reloader.release)
	require.Eventually(t, func() bool { return reloader.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc.WaitRunning(ctx)
	assert.NoError(t, ctx.Err())
}
