package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/Makb000/opportunity-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ReplaceCollection Tests
// =============================================================================

func TestReplaceCollection_ArrayReplacesExisting(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "old"}}

	replaced := ds.ReplaceCollection("companies", json.RawMessage(`[{"id":"c1"},{"id":"c2"}]`))

	assert.True(t, replaced)
	require.Len(t, ds.Companies, 2)
	assert.Equal(t, "c1", ds.Companies[0].ID())
}

func TestReplaceCollection_NonArrayKeepsExisting(t *testing.T) {
	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{"missing", nil},
		{"null", json.RawMessage(`null`)},
		{"object", json.RawMessage(`{"id":"c1"}`)},
		{"string", json.RawMessage(`"companies"`)},
		{"number", json.RawMessage(`42`)},
		{"malformed", json.RawMessage(`[{`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := domain.NewDataset()
			ds.Companies = []domain.Entity{{"id": "keep"}}

			replaced := ds.ReplaceCollection("companies", tt.raw)

			assert.False(t, replaced)
			require.Len(t, ds.Companies, 1)
			assert.Equal(t, "keep", ds.Companies[0].ID())
		})
	}
}

func TestReplaceCollection_UnknownCollection(t *testing.T) {
	ds := domain.NewDataset()
	assert.False(t, ds.ReplaceCollection("invoices", json.RawMessage(`[]`)))
}

func TestReplaceCollection_PreservesUnknownFields(t *testing.T) {
	ds := domain.NewDataset()
	ds.ReplaceCollection("contacts", json.RawMessage(`[{"id":"p1","customField":"kept"}]`))

	require.Len(t, ds.Contacts, 1)
	assert.Equal(t, "kept", ds.Contacts[0]["customField"])
}

// =============================================================================
// Merge Tests
// =============================================================================

func TestMerge_SuppliedArraysReplaceWholeCollections(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "c1"}, {"id": "c2"}}
	ds.Contacts = []domain.Entity{{"id": "p1"}}

	ds.Merge(map[string]json.RawMessage{
		"companies": json.RawMessage(`[{"id":"c9"}]`),
	})

	// The supplied collection is replaced wholesale, not element-merged
	require.Len(t, ds.Companies, 1)
	assert.Equal(t, "c9", ds.Companies[0].ID())

	// Untouched collections are preserved verbatim
	require.Len(t, ds.Contacts, 1)
	assert.Equal(t, "p1", ds.Contacts[0].ID())
}

func TestMerge_NilUpdatesChangesNothing(t *testing.T) {
	ds := domain.NewDataset()
	ds.Activities = []domain.Entity{{"id": "a1"}}

	ds.Merge(nil)

	assert.Len(t, ds.Activities, 1)
}

func TestMerge_IgnoresUnknownKeys(t *testing.T) {
	ds := domain.NewDataset()
	ds.Merge(map[string]json.RawMessage{
		"invoices": json.RawMessage(`[{"id":"x"}]`),
	})

	for _, name := range domain.CollectionNames() {
		assert.Empty(t, ds.Collection(name))
	}
}

// =============================================================================
// Upsert Tests
// =============================================================================

func TestUpsert_InsertStampsCreatedAt(t *testing.T) {
	ds := domain.NewDataset()

	entity, err := ds.Upsert("companies", "c1", domain.Entity{"name": "Acme"})
	require.NoError(t, err)

	assert.Equal(t, "c1", entity.ID())
	assert.Equal(t, "Acme", entity["name"])
	assert.NotEmpty(t, entity["createdAt"])
	assert.Nil(t, entity["updatedAt"])
	require.Len(t, ds.Companies, 1)
}

func TestUpsert_UpdatePreservesCreatedAt(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{
		"id":        "c1",
		"name":      "Acme",
		"createdAt": "2024-01-01T00:00:00Z",
	}}

	entity, err := ds.Upsert("companies", "c1", domain.Entity{"name": "Acme Corp"})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", entity["name"])
	assert.Equal(t, "2024-01-01T00:00:00Z", entity["createdAt"])
	assert.NotEmpty(t, entity["updatedAt"])
	require.Len(t, ds.Companies, 1)
}

func TestUpsert_UpdateKeepsPosition(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "c1"}, {"id": "c2"}, {"id": "c3"}}

	_, err := ds.Upsert("companies", "c2", domain.Entity{"name": "Middle"})
	require.NoError(t, err)

	require.Len(t, ds.Companies, 3)
	assert.Equal(t, "c2", ds.Companies[1].ID())
	assert.Equal(t, "Middle", ds.Companies[1]["name"])
}

func TestUpsert_PathIDOverridesBodyID(t *testing.T) {
	ds := domain.NewDataset()

	entity, err := ds.Upsert("companies", "c1", domain.Entity{"id": "spoofed"})
	require.NoError(t, err)

	assert.Equal(t, "c1", entity.ID())
}

func TestUpsert_MergesIntoExistingFields(t *testing.T) {
	ds := domain.NewDataset()
	ds.Contacts = []domain.Entity{{"id": "p1", "name": "Jo", "email": "jo@acme.test"}}

	entity, err := ds.Upsert("contacts", "p1", domain.Entity{"phone": "555-0100"})
	require.NoError(t, err)

	// Patch fields are overlaid, fields outside the patch survive
	assert.Equal(t, "Jo", entity["name"])
	assert.Equal(t, "jo@acme.test", entity["email"])
	assert.Equal(t, "555-0100", entity["phone"])
}

func TestUpsert_UnknownCollection(t *testing.T) {
	ds := domain.NewDataset()

	_, err := ds.Upsert("invoices", "x1", domain.Entity{})

	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
}

// =============================================================================
// Delete Tests
// =============================================================================

func TestDelete_RemovesAllMatches(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "c1"}, {"id": "dup"}, {"id": "c2"}, {"id": "dup"}}

	removed, err := ds.Delete("companies", "dup")
	require.NoError(t, err)

	assert.True(t, removed)
	require.Len(t, ds.Companies, 2)
	assert.Equal(t, "c1", ds.Companies[0].ID())
	assert.Equal(t, "c2", ds.Companies[1].ID())
}

func TestDelete_NotFound(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "c1"}}

	removed, err := ds.Delete("companies", "missing")
	require.NoError(t, err)

	assert.False(t, removed)
	assert.Len(t, ds.Companies, 1)
}

func TestDelete_OpportunityCascadesToActivities(t *testing.T) {
	ds := domain.NewDataset()
	ds.Opportunities = []domain.Entity{{"id": "o1"}, {"id": "o2"}}
	ds.Activities = []domain.Entity{
		{"id": "a1", "opportunityId": "o1"},
		{"id": "a2", "opportunityId": "o2"},
		{"id": "a3", "opportunityId": "o1"},
		{"id": "a4"},
	}

	removed, err := ds.Delete("opportunities", "o1")
	require.NoError(t, err)
	assert.True(t, removed)

	require.Len(t, ds.Opportunities, 1)
	assert.Equal(t, "o2", ds.Opportunities[0].ID())

	// Activities referencing o1 go with it; others stay
	require.Len(t, ds.Activities, 2)
	assert.Equal(t, "a2", ds.Activities[0].ID())
	assert.Equal(t, "a4", ds.Activities[1].ID())
}

func TestDelete_CompanyDoesNotCascade(t *testing.T) {
	ds := domain.NewDataset()
	ds.Companies = []domain.Entity{{"id": "c1"}}
	ds.Opportunities = []domain.Entity{{"id": "o1", "companyId": "c1"}}

	removed, err := ds.Delete("companies", "c1")
	require.NoError(t, err)
	assert.True(t, removed)

	// Opportunities referencing the company are untouched
	assert.Len(t, ds.Opportunities, 1)
}

func TestDelete_UnknownCollection(t *testing.T) {
	ds := domain.NewDataset()

	_, err := ds.Delete("invoices", "x1")

	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
}
