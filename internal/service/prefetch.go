package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultPrefetchLimit bounds concurrent fetches during Prefetch.
const DefaultPrefetchLimit = 4

// PrefetchResult reports how warming one source went.
type PrefetchResult struct {
	URL        string `json:"url"`
	Records    int    `json:"records"`
	Properties int    `json:"properties"`
	Error      string `json:"error,omitempty"`
}

// Prefetch loads every url and caches its schema so that opening it later
// can show columns before the first fetch completes. Failures are reported
// per source; results keep the order of urls.
func (s *ExplorerService) Prefetch(ctx context.Context, urls []string, limit int) []PrefetchResult {
	if limit <= 0 {
		limit = DefaultPrefetchLimit
	}
	results := make([]PrefetchResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, url := range urls {
		g.Go(func() error {
			results[i].URL = url
			records, err := s.loader.Load(gctx, url)
			if err != nil {
				results[i].Error = err.Error()
				s.logger.Debug("prefetch failed", zap.String("url", url), zap.Error(err))
				return nil
			}
			sch := s.schemas.Infer(url, records)
			results[i].Records = len(records)
			results[i].Properties = len(sch.Properties)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
