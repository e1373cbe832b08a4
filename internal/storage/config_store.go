package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"explorer/internal/domain"
)

// RecentsKey holds the most-recently-used source list.
const RecentsKey = "dataSources"

// ErrEmptyURL is returned when saving a Configuration without a source.
var ErrEmptyURL = errors.New("configuration has no url")

// ConfigStore persists Configurations on top of a KVStore: the recent list
// under RecentsKey and one document per source keyed by its url.
type ConfigStore struct {
	kv     domain.KVStore
	logger *zap.Logger
}

func NewConfigStore(kv domain.KVStore, logger *zap.Logger) *ConfigStore {
	return &ConfigStore{kv: kv, logger: logger.Named("config-store")}
}

// Load returns the stored Configuration for url. A missing or malformed
// document yields the bare Configuration; only store failures are errors.
func (s *ConfigStore) Load(ctx context.Context, url string) (domain.Configuration, error) {
	bare := domain.BareConfiguration(url)
	if url == "" {
		return bare, nil
	}
	raw, ok, err := s.kv.Get(ctx, url)
	if err != nil {
		return bare, fmt.Errorf("load configuration: %w", err)
	}
	if !ok {
		return bare, nil
	}

	var cfg domain.Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Warn("malformed configuration replaced with default",
			zap.String("url", url), zap.Error(err))
		return bare, nil
	}
	return normalize(cfg, url), nil
}

// Save writes cfg under its url.
func (s *ConfigStore) Save(ctx context.Context, cfg domain.Configuration) error {
	if cfg.URL == "" {
		return ErrEmptyURL
	}
	data, err := json.Marshal(normalize(cfg, cfg.URL))
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if err := s.kv.Set(ctx, cfg.URL, string(data)); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	return nil
}

// Recents returns known sources, most recently used first.
func (s *ConfigStore) Recents(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, RecentsKey)
	if err != nil {
		return nil, fmt.Errorf("load recents: %w", err)
	}
	if !ok {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("malformed recent source list ignored", zap.Error(err))
		return []string{}, nil
	}
	out := make([]string, 0, len(list))
	for _, u := range list {
		if u != "" {
			out = append(out, u)
		}
	}
	return out, nil
}

// Touch moves url to the front of the recent list.
func (s *ConfigStore) Touch(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	list, err := s.Recents(ctx)
	if err != nil {
		return err
	}
	next := []string{url}
	for _, u := range list {
		if u != url {
			next = append(next, u)
		}
	}
	return s.writeRecents(ctx, next)
}

// Forget removes url from the recent list and deletes its Configuration.
func (s *ConfigStore) Forget(ctx context.Context, url string) error {
	list, err := s.Recents(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(list))
	for _, u := range list {
		if u != url {
			next = append(next, u)
		}
	}
	if err := s.writeRecents(ctx, next); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, url); err != nil {
		return fmt.Errorf("forget configuration: %w", err)
	}
	return nil
}

func (s *ConfigStore) writeRecents(ctx context.Context, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode recents: %w", err)
	}
	if err := s.kv.Set(ctx, RecentsKey, string(data)); err != nil {
		return fmt.Errorf("save recents: %w", err)
	}
	return nil
}

// normalize pins the url and drops empty or repeated path entries so a
// stored document never lists a path twice.
func normalize(cfg domain.Configuration, url string) domain.Configuration {
	out := cfg.Clone()
	out.URL = url
	seen := map[string]bool{}
	paths := make([]domain.PathFilter, 0, len(out.Paths))
	for _, p := range out.Paths {
		if p.Path == "" || seen[p.Path] {
			continue
		}
		seen[p.Path] = true
		paths = append(paths, p)
	}
	out.Paths = paths
	return out
}
