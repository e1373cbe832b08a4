package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"explorer/internal/domain"
	"explorer/internal/view"
)

func numbers() []*domain.Object {
	return []*domain.Object{
		domain.ObjectOf("n", 1),
		domain.ObjectOf("n", 2),
		domain.ObjectOf("n", 3),
	}
}

func TestComputeVisible_ValuesFilter(t *testing.T) {
	cfg := domain.Configuration{Paths: []domain.PathFilter{
		{Path: "n", Values: domain.FilterValues{"2"}},
	}}
	got := view.ComputeVisible(numbers(), cfg, view.Query{})
	assert.Len(t, got, 1)
	v, _ := got[0].Get("n")
	assert.Equal(t, 2.0, v)
}

func TestComputeVisible_FreeText(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("name", "abc"),
		domain.ObjectOf("name", "xyz"),
	}
	cfg := domain.Configuration{Paths: paths("name")}

	got := view.ComputeVisible(records, cfg, view.Query{Search: "b"})
	assert.Equal(t, records[:1], got)

	got = view.ComputeVisible(records, cfg, view.Query{Search: "B"})
	assert.Equal(t, records[:1], got, "case-insensitive")
}

func TestComputeVisible_FreeTextOnlyConfiguredPaths(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("name", "xyz", "hidden", "abc"),
	}
	cfg := domain.Configuration{Paths: paths("name")}
	assert.Empty(t, view.ComputeVisible(records, cfg, view.Query{Search: "abc"}))
}

func TestComputeVisible_NoFilters(t *testing.T) {
	records := numbers()
	got := view.ComputeVisible(records, domain.Configuration{Paths: paths("n")}, view.Query{})
	assert.Equal(t, records, got)
}

func TestComputeVisible_SearchFilter(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("mission", "FalconSat"),
		domain.ObjectOf("mission", "DemoSat"),
		domain.ObjectOf("mission", "Trailblazer"),
	}
	cfg := domain.Configuration{Paths: []domain.PathFilter{{Path: "mission", Search: "sat$"}}}
	got := view.ComputeVisible(records, cfg, view.Query{})
	assert.Equal(t, records[:2], got)
}

func TestComputeVisible_InvalidPatternMatchesLiterally(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("v", "a(b"),
		domain.ObjectOf("v", "ab"),
	}
	cfg := domain.Configuration{Paths: []domain.PathFilter{{Path: "v", Search: "a("}}}
	assert.Equal(t, records[:1], view.ComputeVisible(records, cfg, view.Query{}))
	assert.Equal(t, records[:1], view.ComputeVisible(records, domain.Configuration{Paths: paths("v")}, view.Query{Search: "A("}))
}

func TestComputeVisible_FiltersAreConjunctive(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("site", "CCAFS", "ok", true),
		domain.ObjectOf("site", "CCAFS", "ok", false),
		domain.ObjectOf("site", "VAFB", "ok", true),
	}
	cfg := domain.Configuration{Paths: []domain.PathFilter{
		{Path: "site", Search: "ccafs"},
		{Path: "ok", Values: domain.FilterValues{"true"}},
	}}
	assert.Equal(t, records[:1], view.ComputeVisible(records, cfg, view.Query{}))
}

func TestComputeVisible_UnknownPathMatchesNothing(t *testing.T) {
	cfg := domain.Configuration{Paths: []domain.PathFilter{{Path: "gone", Values: domain.FilterValues{"1"}}}}
	assert.Empty(t, view.ComputeVisible(numbers(), cfg, view.Query{}))
}

func TestComputeVisible_SelectionOverride(t *testing.T) {
	records := []*domain.Object{
		domain.ObjectOf("id", 1, "name", "abc"),
		domain.ObjectOf("id", 2, "name", "xyz"),
		domain.ObjectOf("id", 3, "name", "abd"),
	}
	cfg := domain.Configuration{
		PrimaryKey: "id",
		Paths:      []domain.PathFilter{{Path: "name", Search: "ab"}},
	}
	q := view.Query{
		Search:       "zzz",
		Selection:    view.NewSelection("2", "3"),
		OnlySelected: true,
	}
	got := view.ComputeVisible(records, cfg, q)
	assert.Equal(t, records[1:], got, "per-path filters and free text are ignored")
}

func TestComputeVisible_Idempotent(t *testing.T) {
	records := numbers()
	cfg := domain.Configuration{Paths: []domain.PathFilter{{Path: "n", Search: "[12]"}}}
	before := cfg.Clone()

	a := view.ComputeVisible(records, cfg, view.Query{Search: "1"})
	b := view.ComputeVisible(records, cfg, view.Query{Search: "1"})

	assert.Equal(t, a, b)
	assert.Equal(t, before, cfg)
	assert.Len(t, records, 3)
}
