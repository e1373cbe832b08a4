package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/internal/domain"
	"explorer/internal/schema"
	"explorer/internal/view"
)

func launches() []*domain.Object {
	return []*domain.Object{
		domain.ObjectOf("flight", 1, "site", "KWAJ", "success", false, "details", "first"),
		domain.ObjectOf("flight", 2, "site", "KWAJ", "success", false, "details", "second"),
		domain.ObjectOf("flight", 3, "site", "CCAFS", "success", true, "details", "third"),
		domain.ObjectOf("flight", 4, "site", "CCAFS", "success", true),
	}
}

func TestSelection(t *testing.T) {
	s := view.NewSelection()
	s2 := s.Toggle("1").Toggle("2")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"1", "2"}, s2.Keys())

	s3 := s2.Toggle("1")
	assert.Equal(t, []string{"2"}, s3.Keys())
	assert.True(t, s2.Has("1"))

	var zero view.Selection
	assert.False(t, zero.Has("x"))
	assert.Equal(t, []string{"x"}, zero.Toggle("x").Keys())
}

func TestSelectAll(t *testing.T) {
	s := view.SelectAll(launches(), "flight")
	assert.Equal(t, []string{"1", "2", "3", "4"}, s.Keys())

	rows := s.Toggle("2").Rows(launches(), "flight")
	assert.Len(t, rows, 3)
}

func TestColumns_SkipUnknown(t *testing.T) {
	sch := schema.Infer(launches())
	cfg := domain.Configuration{Paths: paths("site", "gone", "flight")}

	cols := view.Columns(cfg, sch)
	require.Len(t, cols, 2)
	assert.Equal(t, "site", cols[0].Path)
	assert.Equal(t, "flight", cols[1].Path)
}

func TestAvailable(t *testing.T) {
	sch := schema.Infer(launches())
	cfg := domain.Configuration{Paths: paths("site")}

	var got []string
	for _, p := range view.Available(cfg, sch, "") {
		got = append(got, p.Path)
	}
	assert.Equal(t, []string{"flight", "success", "details"}, got)

	got = nil
	for _, p := range view.Available(cfg, sch, "^S") {
		got = append(got, p.Path)
	}
	assert.Equal(t, []string{"success"}, got)
}

func TestConfigured(t *testing.T) {
	sch := schema.Infer(launches())
	cfg := domain.Configuration{PrimaryKey: "flight", Paths: paths("flight", "site", "gone")}

	got := view.Configured(cfg, sch, "")
	require.Len(t, got, 3)
	assert.True(t, got[0].PrimaryKey)
	assert.False(t, got[0].CanRaise)
	assert.True(t, got[1].CanRaise)
	assert.True(t, got[1].CanLower)
	assert.False(t, got[2].CanLower)
	assert.False(t, got[2].Known)
}

func TestFilterControls(t *testing.T) {
	sch := schema.Infer(launches())
	cfg := domain.Configuration{Paths: paths("site", "flight")}

	got := view.FilterControls(cfg, sch)
	require.Len(t, got, 2)
	assert.Equal(t, view.FilterModeValues, got[0].Mode)
	assert.Equal(t, []string{"KWAJ", "CCAFS"}, got[0].Options)
	assert.Equal(t, view.FilterModeSearch, got[1].Mode)
}

func TestAggregate(t *testing.T) {
	records := launches()
	sch := schema.Infer(records)
	cfg := domain.Configuration{Paths: paths("flight", "site", "success", "details")}

	got := view.Aggregate(records, cfg, sch)
	require.Len(t, got, 3, "flight has no options")

	assert.Equal(t, "site", got[0].Path)
	assert.Equal(t, 4, got[0].Total)
	assert.Equal(t, []view.Bucket{
		{Value: "KWAJ", Count: 2, Percent: 50},
		{Value: "CCAFS", Count: 2, Percent: 50},
	}, got[0].Buckets)

	assert.Equal(t, "details", got[2].Path)
	assert.Equal(t, view.MissingLabel, got[2].Buckets[3].Value)
	assert.Equal(t, 25.0, got[2].Buckets[3].Percent)
}

func TestAggregate_NoRows(t *testing.T) {
	sch := schema.Infer(launches())
	cfg := domain.Configuration{Paths: paths("site")}
	got := view.Aggregate(nil, cfg, sch)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Buckets)
}

func TestDetail(t *testing.T) {
	rec := domain.ObjectOf("b", 1, "a", domain.ObjectOf("c", true))
	got, err := view.Detail(rec)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"b\": 1,\n    \"a\": {\n        \"c\": true\n    }\n}", got)
}

func TestFindByKey(t *testing.T) {
	rec, ok := view.FindByKey(launches(), "flight", "3")
	require.True(t, ok)
	v, _ := rec.Get("site")
	assert.Equal(t, "CCAFS", v)

	_, ok = view.FindByKey(launches(), "flight", "99")
	assert.False(t, ok)
}
