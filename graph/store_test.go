package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestigationsByBrand(t *testing.T) {
	store := NewInMemoryStore()

	invs := store.Investigations("Avino", nil)
	require.Len(t, invs, 3)

	t.Run("case insensitive brand", func(t *testing.T) {
		assert.Len(t, store.Investigations("avino", nil), 3)
		assert.Len(t, store.Investigations("AVINO", nil), 3)
	})

	t.Run("unknown brand", func(t *testing.T) {
		assert.Empty(t, store.Investigations("Zyltra", nil))
	})
}

func TestInvestigationsFilteredByCAPAIDs(t *testing.T) {
	store := NewInMemoryStore()

	invs := store.Investigations("Avino", []string{"CAPA2024001", "CAPA2024003"})
	require.Len(t, invs, 2)
	assert.Equal(t, "INV001", invs[0].ID)
	assert.Equal(t, "INV003", invs[1].ID)

	t.Run("ids matched case insensitively", func(t *testing.T) {
		assert.Len(t, store.Investigations("Avino", []string{"capa2024002"}), 1)
	})

	t.Run("no id matches", func(t *testing.T) {
		assert.Empty(t, store.Investigations("Avino", []string{"CAPA9999"}))
	})
}

func TestCAPADetails(t *testing.T) {
	store := NewInMemoryStore()

	capa, ok := store.CAPADetails("CAPA2024001")
	require.True(t, ok)
	assert.Equal(t, "Improve Batch Documentation Process", capa.Title)

	// Only two of the three referenced CAPAs have detail records.
	_, ok = store.CAPADetails("CAPA2024003")
	assert.False(t, ok)
}

func TestBatchInfo(t *testing.T) {
	store := NewInMemoryStore()

	batch, ok := store.BatchInfo("AV2024003")
	require.True(t, ok)
	assert.Equal(t, "Quarantine", batch.Status)

	_, ok = store.BatchInfo("AV9999")
	assert.False(t, ok)
}

func TestBrandSummary(t *testing.T) {
	store := NewInMemoryStore()

	summary, ok := store.BrandSummary("avino")
	require.True(t, ok)
	assert.Equal(t, "Oncology", summary.Brand.TherapeuticArea)
	assert.Equal(t, 3, summary.InvestigationCount)
	assert.Len(t, summary.Investigations, 3)
	assert.Equal(t, 3, summary.BatchCount)

	_, ok = store.BrandSummary("Zyltra")
	assert.False(t, ok)
}

func TestRelatedEntities(t *testing.T) {
	store := NewInMemoryStore()

	t.Run("capa to investigations", func(t *testing.T) {
		related, err := store.RelatedEntities("CAPA2024002", EntityCAPA)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, EntityInvestigation, related[0].Type)
		assert.Equal(t, "INV002", related[0].Data.(Investigation).ID)
	})

	t.Run("investigation to capa and batch", func(t *testing.T) {
		related, err := store.RelatedEntities("INV001", EntityInvestigation)
		require.NoError(t, err)
		require.Len(t, related, 2)
		assert.Equal(t, EntityCAPA, related[0].Type)
		assert.Equal(t, EntityBatch, related[1].Type)
	})

	t.Run("investigation without capa detail", func(t *testing.T) {
		// INV003 references CAPA2024003 which has no detail record,
		// so only the batch edge comes back.
		related, err := store.RelatedEntities("INV003", EntityInvestigation)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, EntityBatch, related[0].Type)
	})

	t.Run("unknown entity id", func(t *testing.T) {
		related, err := store.RelatedEntities("INV999", EntityInvestigation)
		require.NoError(t, err)
		assert.Empty(t, related)
	})

	t.Run("unknown entity type", func(t *testing.T) {
		_, err := store.RelatedEntities("X", "document")
		assert.Error(t, err)
	})
}

func TestCountByBrand(t *testing.T) {
	store := NewInMemoryStore()
	assert.Equal(t, 3, store.CountByBrand("Avino"))
	assert.Equal(t, 0, store.CountByBrand("Zyltra"))
}

func TestEmptyStorePopulation(t *testing.T) {
	store := NewEmptyStore()
	assert.Empty(t, store.Investigations("Avino", nil))

	store.AddBrand(Brand{ID: "BRAND002", Name: "Zyltra"})
	store.AddInvestigation(Investigation{ID: "INV100", Brand: "Zyltra", CAPAID: "CAPA100"})

	summary, ok := store.BrandSummary("zyltra")
	require.True(t, ok)
	assert.Equal(t, 1, summary.InvestigationCount)
}
