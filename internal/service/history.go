package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"explorer/internal/domain"
)

// ── Undo / Redo ────────────────────────────────────────────

// initHistory returns the current history node for cfg's source,
// creating a root node on first use.
func (s *ExplorerService) initHistory(ctx context.Context, cfg domain.Configuration) string {
	if s.history == nil {
		return ""
	}
	tree, err := s.history.LoadTree(ctx, cfg.URL)
	if err != nil {
		s.logger.Warn("failed to load history", zap.String("url", cfg.URL), zap.Error(err))
		return ""
	}
	if tree != nil && tree.CurrentID != "" {
		return tree.CurrentID
	}
	node, err := s.history.Push(ctx, cfg.URL, "", "open", cfg)
	if err != nil {
		s.logger.Warn("failed to create history root", zap.String("url", cfg.URL), zap.Error(err))
		return ""
	}
	return node.ID
}

// record appends snapshot under the current node and moves to it. History
// is best effort; a failure never rejects the edit that produced it.
// Requires s.mu so concurrent edits chain instead of branching.
func (s *ExplorerService) record(ctx context.Context, label string, snapshot domain.Configuration) {
	if s.history == nil {
		return
	}
	node, err := s.history.Push(ctx, snapshot.URL, s.historyID, label, snapshot)
	if err != nil {
		s.logger.Warn("failed to record history", zap.String("url", snapshot.URL), zap.Error(err))
		return
	}
	s.historyID = node.ID
}

// History returns the edit tree of the active source.
func (s *ExplorerService) History(ctx context.Context) (*domain.HistoryTree, error) {
	url := s.Config().URL
	if url == "" {
		return nil, ErrNoSource
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.LoadTree(ctx, url)
}

// Undo restores the configuration before the last edit.
func (s *ExplorerService) Undo(ctx context.Context) (domain.Configuration, error) {
	return s.travel(ctx, ErrNothingToUndo, func(tree *domain.HistoryTree, cur domain.HistoryNode) (domain.HistoryNode, bool) {
		if cur.ParentID == nil {
			return domain.HistoryNode{}, false
		}
		return tree.Node(*cur.ParentID)
	})
}

// Redo re-applies the most recent edit undone from the current state.
func (s *ExplorerService) Redo(ctx context.Context) (domain.Configuration, error) {
	return s.travel(ctx, ErrNothingToRedo, func(tree *domain.HistoryTree, cur domain.HistoryNode) (domain.HistoryNode, bool) {
		return tree.LatestChild(cur.ID)
	})
}

func (s *ExplorerService) travel(
	ctx context.Context,
	none error,
	pick func(*domain.HistoryTree, domain.HistoryNode) (domain.HistoryNode, bool),
) (domain.Configuration, error) {
	s.mu.Lock()
	cfg, err := s.travelLocked(ctx, none, pick)
	s.mu.Unlock()
	if err != nil {
		return domain.Configuration{}, err
	}
	s.emitter.Emit(ctx, EventConfigChanged, cfg.Clone())
	return cfg, nil
}

func (s *ExplorerService) travelLocked(
	ctx context.Context,
	none error,
	pick func(*domain.HistoryTree, domain.HistoryNode) (domain.HistoryNode, bool),
) (domain.Configuration, error) {
	url, current := s.cfg.URL, s.historyID
	if url == "" {
		return domain.Configuration{}, ErrNoSource
	}
	if s.history == nil || current == "" {
		return domain.Configuration{}, none
	}

	tree, err := s.history.LoadTree(ctx, url)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("load history: %w", err)
	}
	cur, ok := tree.Node(current)
	if !ok {
		return domain.Configuration{}, none
	}
	target, ok := pick(tree, cur)
	if !ok {
		return domain.Configuration{}, none
	}
	if err := s.history.GoTo(ctx, url, target.ID); err != nil {
		return domain.Configuration{}, fmt.Errorf("move history: %w", err)
	}

	cfg := target.Snapshot.Clone()
	cfg.URL = url
	if err := s.configs.Save(ctx, cfg); err != nil {
		return domain.Configuration{}, fmt.Errorf("save configuration: %w", err)
	}
	s.cfg = cfg
	s.historyID = target.ID
	s.recompute()

	s.logger.Debug("history moved", zap.String("url", url), zap.String("node", target.ID), zap.String("label", target.Label))
	return cfg.Clone(), nil
}
