package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/etov/internal/domain/entities"
)

func newTestCatalog() *entities.Catalog {
	c := entities.NewCatalog()
	c.Put(entities.NewPerfume("A", "BrandX", "NameX", "kw1"))
	c.Put(entities.NewPerfume("B", "BrandY", "NameY", "kw2"))
	return c
}

func TestSplitAccords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "trims around separators",
			input:    "woody, floral , citrus",
			expected: []string{"woody", "floral", "citrus"},
		},
		{
			name:     "keeps case and inner whitespace",
			input:    " Warm Spicy ,fresh  green",
			expected: []string{"Warm Spicy", "fresh  green"},
		},
		{
			name:     "single value",
			input:    "woody",
			expected: []string{"woody"},
		},
		{
			name:     "empty cell",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "only separator",
			input:    ",",
			expected: []string{"", ""},
		},
		{
			name:     "doubled separator",
			input:    "woody,,floral",
			expected: []string{"woody", "", "floral"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAccords(tt.input))
		})
	}
}

func TestMerger_Merge(t *testing.T) {
	catalog := newTestCatalog()
	rows := []AccordRow{
		{Row: 2, Code: "A", Name: "NameX", Accords: "woody, floral", HasAccords: true},
		{Row: 3, Code: "A", Name: "NameX", Accords: "woody", HasAccords: true},
		{Row: 4, Code: "B", Name: "NameY", Accords: "citrus", HasAccords: true},
	}

	unresolved := NewMerger(zap.NewNop(), MergeOptions{}).Merge(catalog, rows)

	assert.Empty(t, unresolved)
	a, _ := catalog.Get("A")
	assert.Equal(t, []string{"woody", "floral", "woody"}, a.Accords)
	b, _ := catalog.Get("B")
	assert.Equal(t, []string{"citrus"}, b.Accords)
}

func TestMerger_Merge_UnresolvedKey(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	catalog := newTestCatalog()
	rows := []AccordRow{
		{Row: 2, Code: "Z", Name: "Ghost", Accords: "woody", HasAccords: true},
		{Row: 3, Code: "A", Name: "NameX", Accords: "floral", HasAccords: true},
	}

	unresolved := NewMerger(zap.New(core), MergeOptions{}).Merge(catalog, rows)

	require.Len(t, unresolved, 1)
	assert.Equal(t, entities.UnresolvedKey{Key: "Z", Name: "Ghost", Row: 2}, unresolved[0])
	assert.Equal(t, 2, catalog.Len())
	_, ok := catalog.Get("Z")
	assert.False(t, ok, "unresolved key must not create a perfume")

	a, _ := catalog.Get("A")
	assert.Equal(t, []string{"floral"}, a.Accords)
	b, _ := catalog.Get("B")
	assert.Empty(t, b.Accords)

	entries := logs.FilterMessage("no perfume for accord row").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Z", entries[0].ContextMap()["key"])
}

func TestMerger_Merge_UnresolvedWithoutAccordCell(t *testing.T) {
	rows := []AccordRow{{Row: 2, Code: "Z", Name: "Ghost"}}

	unresolved := NewMerger(zap.NewNop(), MergeOptions{}).Merge(newTestCatalog(), rows)

	assert.Len(t, unresolved, 1)
}

func TestMerger_Merge_MissingAccordCellSkipsRow(t *testing.T) {
	catalog := newTestCatalog()
	rows := []AccordRow{{Row: 2, Code: "A", Name: "NameX", HasAccords: false}}

	unresolved := NewMerger(zap.NewNop(), MergeOptions{}).Merge(catalog, rows)

	assert.Empty(t, unresolved)
	a, _ := catalog.Get("A")
	assert.Empty(t, a.Accords)
}

func TestMerger_Merge_EmptyParts(t *testing.T) {
	t.Run("kept by default", func(t *testing.T) {
		catalog := newTestCatalog()
		rows := []AccordRow{{Row: 2, Code: "A", Accords: "woody,, ", HasAccords: true}}

		NewMerger(zap.NewNop(), MergeOptions{}).Merge(catalog, rows)

		a, _ := catalog.Get("A")
		assert.Equal(t, []string{"woody", "", ""}, a.Accords)
	})

	t.Run("dropped when configured", func(t *testing.T) {
		catalog := newTestCatalog()
		rows := []AccordRow{{Row: 2, Code: "A", Accords: "woody,, ", HasAccords: true}}

		NewMerger(zap.NewNop(), MergeOptions{DropEmpty: true}).Merge(catalog, rows)

		a, _ := catalog.Get("A")
		assert.Equal(t, []string{"woody"}, a.Accords)
	})
}

func TestCollectAccords(t *testing.T) {
	catalog := newTestCatalog()
	a, _ := catalog.Get("A")
	a.AddAccords("woody", "floral", "woody")
	b, _ := catalog.Get("B")
	b.AddAccords("floral", "citrus")

	set := CollectAccords(catalog)

	assert.Equal(t, []string{"woody", "floral", "citrus"}, set.Values())
}

func TestCollectAccords_NoAccords(t *testing.T) {
	set := CollectAccords(newTestCatalog())
	assert.Equal(t, 0, set.Len())
}
