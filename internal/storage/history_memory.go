package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"explorer/internal/domain"
)

// MemoryHistory keeps configuration history for the life of the process.
// It backs every non-SQLite store driver.
type MemoryHistory struct {
	mu       sync.Mutex
	maxNodes int
	nodes    map[string][]domain.HistoryNode
	current  map[string]string
}

func NewMemoryHistory(maxNodes int) *MemoryHistory {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxHistory
	}
	return &MemoryHistory{
		maxNodes: maxNodes,
		nodes:    map[string][]domain.HistoryNode{},
		current:  map[string]string{},
	}
}

func (h *MemoryHistory) LoadTree(_ context.Context, source string) (*domain.HistoryTree, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	nodes := h.nodes[source]
	if len(nodes) == 0 {
		return nil, nil
	}
	tree := &domain.HistoryTree{
		Nodes:     append([]domain.HistoryNode(nil), nodes...),
		CurrentID: h.current[source],
	}
	for _, n := range nodes {
		if n.ParentID == nil {
			tree.RootID = n.ID
		}
	}
	if tree.CurrentID == "" {
		tree.CurrentID = tree.RootID
	}
	return tree, nil
}

func (h *MemoryHistory) Push(_ context.Context, source, parentID, label string, snapshot domain.Configuration) (*domain.HistoryNode, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node := domain.HistoryNode{
		ID:        uuid.NewString(),
		Source:    source,
		Label:     label,
		Snapshot:  snapshot.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	if parentID != "" {
		node.ParentID = &parentID
	}
	h.nodes[source] = append(h.nodes[source], node)
	h.current[source] = node.ID
	h.prune(source)
	out := node
	return &out, nil
}

func (h *MemoryHistory) GoTo(_ context.Context, source, nodeID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current[source] = nodeID
	return nil
}

func (h *MemoryHistory) Clear(_ context.Context, source string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.nodes, source)
	delete(h.current, source)
	return nil
}

// prune drops the oldest nodes beyond maxNodes, keeping the current one and
// re-attaching orphaned children to the dropped node's parent.
func (h *MemoryHistory) prune(source string) {
	nodes := h.nodes[source]
	excess := len(nodes) - h.maxNodes
	if excess <= 0 {
		return
	}
	current := h.current[source]
	drop := map[string]*string{}
	for _, n := range nodes[:excess] {
		if n.ID != current {
			drop[n.ID] = n.ParentID
		}
	}
	kept := nodes[:0]
	for _, n := range nodes {
		if _, gone := drop[n.ID]; gone {
			continue
		}
		for n.ParentID != nil {
			parent, gone := drop[*n.ParentID]
			if !gone {
				break
			}
			n.ParentID = parent
		}
		kept = append(kept, n)
	}
	h.nodes[source] = kept
}
