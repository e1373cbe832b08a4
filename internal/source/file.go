package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

// ── File Source ─────────────────────────────────────────────
// Reads a JSON document from disk. Accepts file:// URLs and bare paths.

type fileSource struct{}

func init() { Register(&fileSource{}) }

func (s *fileSource) Spec() Spec {
	return Spec{Type: "file", Label: "Local JSON file", Schemes: []string{"file"}}
}

func (s *fileSource) Fetch(ctx context.Context, location string, limit int64) ([]byte, error) {
	path, ok := FilePath(location)
	if !ok {
		return nil, fmt.Errorf("not a file location: %q", location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return readLimited(f, limit)
}

// FilePath returns the local path behind a file location.
func FilePath(location string) (string, bool) {
	if Scheme(location) != "file" {
		return "", false
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return location, location != ""
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}
