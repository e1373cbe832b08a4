package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ── HTTP Source ─────────────────────────────────────────────
// GETs a JSON REST endpoint. Deadlines come from the caller's context.

type httpSource struct {
	client *http.Client
}

func init() { Register(&httpSource{client: &http.Client{}}) }

func (s *httpSource) Spec() Spec {
	return Spec{Type: "http", Label: "HTTP JSON endpoint", Schemes: []string{"http", "https"}}
}

func (s *httpSource) Fetch(ctx context.Context, location string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return readLimited(resp.Body, limit)
}

// readLimited reads r fully, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
