package domain

import (
	"context"
	"time"
)

// StoreDriver selects the durable key-value backend.
type StoreDriver string

const (
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMySQL    StoreDriver = "mysql"
	StoreDriverMongoDB  StoreDriver = "mongodb"
	StoreDriverMemory   StoreDriver = "memory"
)

// KVStore is the get/set capability persistence is built on.
// Values are JSON documents stored as text.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ConfigStore persists one Configuration per source plus the
// most-recently-used source list.
type ConfigStore interface {
	Load(ctx context.Context, url string) (Configuration, error)
	Save(ctx context.Context, cfg Configuration) error
	Recents(ctx context.Context) ([]string, error)
	Touch(ctx context.Context, url string) error
	Forget(ctx context.Context, url string) error
}

// HistoryNode is one configuration snapshot in a source's edit history.
type HistoryNode struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	ParentID  *string       `json:"parentId"`
	Label     string        `json:"label"`
	Snapshot  Configuration `json:"snapshot"`
	CreatedAt time.Time     `json:"createdAt"`
}

// HistoryTree is the full edit history of one source.
type HistoryTree struct {
	Nodes     []HistoryNode `json:"nodes"`
	CurrentID string        `json:"currentId"`
	RootID    string        `json:"rootId"`
}

// Node returns the node with id.
func (t *HistoryTree) Node(id string) (HistoryNode, bool) {
	if t == nil {
		return HistoryNode{}, false
	}
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return HistoryNode{}, false
}

// LatestChild returns the most recent child of id, used for redo.
func (t *HistoryTree) LatestChild(id string) (HistoryNode, bool) {
	var (
		best  HistoryNode
		found bool
	)
	if t == nil {
		return best, false
	}
	for _, n := range t.Nodes {
		if n.ParentID == nil || *n.ParentID != id {
			continue
		}
		if !found || !n.CreatedAt.Before(best.CreatedAt) {
			best, found = n, true
		}
	}
	return best, found
}

// HistoryStore persists per-source edit history.
type HistoryStore interface {
	LoadTree(ctx context.Context, source string) (*HistoryTree, error)
	Push(ctx context.Context, source, parentID, label string, snapshot Configuration) (*HistoryNode, error)
	GoTo(ctx context.Context, source, nodeID string) error
	Clear(ctx context.Context, source string) error
}
