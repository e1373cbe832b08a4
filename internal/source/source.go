package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A Source retrieves the raw JSON payload behind a location.
// Implementations register themselves from init(), one file per scheme.

// Spec describes a registered source type.
type Spec struct {
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Schemes []string `json:"schemes"`
}

// Source is the interface every payload fetcher implements.
type Source interface {
	Spec() Spec

	// Fetch returns the payload at location. Bodies larger than limit bytes
	// are rejected when limit is positive.
	Fetch(ctx context.Context, location string, limit int64) ([]byte, error)
}

// Example is a built-in source offered on first start.
type Example struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Examples lists public endpoints that work out of the box.
var Examples = []Example{
	{Label: "SpaceX past launches", URL: "https://api.spacexdata.com/v3/launches/past?order=desc"},
}

// ── Registry ────────────────────────────────────────────────

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// Register adds s under each of its schemes.
func Register(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, scheme := range s.Spec().Schemes {
		registry[scheme] = s
	}
}

// Lookup returns the source serving location. A location without a
// scheme is treated as a local file path.
func Lookup(location string) (Source, error) {
	scheme := Scheme(location)
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return s, nil
}

// List returns the specs of all registered sources, sorted by type.
func List() []Spec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	seen := map[string]bool{}
	var specs []Spec
	for _, s := range registry {
		spec := s.Spec()
		if seen[spec.Type] {
			continue
		}
		seen[spec.Type] = true
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}

// Scheme returns the lower-cased scheme of location, or "file" when none.
func Scheme(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return "file"
	}
	return strings.ToLower(u.Scheme)
}
