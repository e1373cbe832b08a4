package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"explorer/internal/domain"
)

// DefaultMaxHistory bounds the number of snapshots kept per source.
const DefaultMaxHistory = 40

// HistoryStore keeps configuration history in SQLite.
type HistoryStore struct {
	db       *DB
	maxNodes int
}

func NewHistoryStore(db *DB, maxNodes int) *HistoryStore {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxHistory
	}
	return &HistoryStore{db: db, maxNodes: maxNodes}
}

// LoadTree returns the full history of a source, or nil when it has none.
func (s *HistoryStore) LoadTree(ctx context.Context, source string) (*domain.HistoryTree, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, source, parent_id, label, snapshot_json, created_at
		 FROM history_nodes WHERE source = ? ORDER BY created_at ASC, rowid ASC`, source,
	)
	if err != nil {
		return nil, fmt.Errorf("load history nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.HistoryNode
	var rootID string
	for rows.Next() {
		var (
			n        domain.HistoryNode
			snapshot string
		)
		if err := rows.Scan(&n.ID, &n.Source, &n.ParentID, &n.Label, &snapshot, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history node: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &n.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", n.ID, err)
		}
		if n.ParentID == nil {
			rootID = n.ID
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, nil
	}

	var currentID string
	err = s.db.Conn().QueryRowContext(ctx,
		`SELECT current_node_id FROM history_state WHERE source = ?`, source,
	).Scan(&currentID)
	if err != nil {
		currentID = rootID
	}

	return &domain.HistoryTree{Nodes: nodes, CurrentID: currentID, RootID: rootID}, nil
}

// Push records a snapshot under parentID ("" for a root) and moves the
// current position to it.
func (s *HistoryStore) Push(ctx context.Context, source, parentID, label string, snapshot domain.Configuration) (*domain.HistoryNode, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	node := &domain.HistoryNode{
		ID:        uuid.NewString(),
		Source:    source,
		Label:     label,
		Snapshot:  snapshot.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	if parentID != "" {
		node.ParentID = &parentID
	}

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO history_nodes (id, source, parent_id, label, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		node.ID, source, node.ParentID, label, string(data), node.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history node: %w", err)
	}

	if err := s.GoTo(ctx, source, node.ID); err != nil {
		return nil, err
	}

	s.pruneIfNeeded(ctx, source)
	return node, nil
}

// GoTo updates the current position pointer.
func (s *HistoryStore) GoTo(ctx context.Context, source, nodeID string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO history_state (source, current_node_id) VALUES (?, ?)
		 ON CONFLICT(source) DO UPDATE SET current_node_id = excluded.current_node_id`,
		source, nodeID,
	)
	if err != nil {
		return fmt.Errorf("update history state: %w", err)
	}
	return nil
}

// Clear removes all history for a source.
func (s *HistoryStore) Clear(ctx context.Context, source string) error {
	_, _ = s.db.Conn().ExecContext(ctx, `DELETE FROM history_state WHERE source = ?`, source)
	_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM history_nodes WHERE source = ?`, source)
	return err
}

// pruneIfNeeded removes the oldest nodes beyond maxNodes, never the current
// one. Children of a removed node are re-attached to its parent.
func (s *HistoryStore) pruneIfNeeded(ctx context.Context, source string) {
	conn := s.db.Conn()

	var count int
	conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM history_nodes WHERE source = ?`, source).Scan(&count)
	if count <= s.maxNodes {
		return
	}
	toDelete := count - s.maxNodes

	// Read the current node before opening a cursor; the pool has one connection.
	var currentID string
	conn.QueryRowContext(ctx, `SELECT current_node_id FROM history_state WHERE source = ?`, source).Scan(&currentID)

	rows, err := conn.QueryContext(ctx,
		`SELECT id FROM history_nodes WHERE source = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, source, toDelete,
	)
	if err != nil {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		if id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		var parentID sql.NullString
		err := conn.QueryRowContext(ctx, `SELECT parent_id FROM history_nodes WHERE id = ?`, id).Scan(&parentID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if parentID.Valid {
			conn.ExecContext(ctx, `UPDATE history_nodes SET parent_id = ? WHERE parent_id = ?`, parentID.String, id)
		} else {
			conn.ExecContext(ctx, `UPDATE history_nodes SET parent_id = NULL WHERE parent_id = ?`, id)
		}
		conn.ExecContext(ctx, `DELETE FROM history_nodes WHERE id = ?`, id)
	}
}
