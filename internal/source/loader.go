package source

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"explorer/internal/domain"
)

// Loader fetches and decodes a source collection.
type Loader struct {
	logger   *zap.Logger
	timeout  time.Duration
	maxBytes int64
}

// NewLoader creates a Loader. A zero timeout or maxBytes disables the limit.
func NewLoader(logger *zap.Logger, timeout time.Duration, maxBytes int64) *Loader {
	return &Loader{
		logger:   logger.Named("source"),
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

// Load returns the records at location. Every failure is an
// *UnavailableError.
func (l *Loader) Load(ctx context.Context, location string) ([]*domain.Object, error) {
	log := l.logger.With(zap.String("url", location), zap.String("request_id", uuid.NewString()))

	src, err := Lookup(location)
	if err != nil {
		return nil, &UnavailableError{URL: location, Err: err}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := src.Fetch(ctx, location, l.maxBytes)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil, &UnavailableError{URL: location, Err: err}
	}

	records, err := Decode(data)
	if err != nil {
		log.Warn("decode failed", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, &UnavailableError{URL: location, Err: err}
	}

	log.Debug("source loaded",
		zap.String("type", src.Spec().Type),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}
