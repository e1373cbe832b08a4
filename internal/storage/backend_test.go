package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"explorer/internal/domain"
	"explorer/internal/storage"
)

func TestOpen_SQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "explorer.db")

	b, err := storage.Open(ctx, storage.Options{Driver: domain.StoreDriverSQLite, DSN: path}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.Configs.Save(ctx, domain.Configuration{URL: "u", PrimaryKey: "id", Paths: []domain.PathFilter{}}))
	require.NoError(t, b.Configs.Touch(ctx, "u"))
	_, err = b.History.Push(ctx, "u", "", "open", domain.BareConfiguration("u"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = storage.Open(ctx, storage.Options{Driver: domain.StoreDriverSQLite, DSN: path}, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	cfg, err := b.Configs.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.PrimaryKey)

	recents, err := b.Configs.Recents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u"}, recents)

	tree, err := b.History.LoadTree(ctx, "u")
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Len(t, tree.Nodes, 1)
}

func TestOpen_Memory(t *testing.T) {
	b, err := storage.Open(context.Background(), storage.Options{Driver: domain.StoreDriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, b.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Options{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
