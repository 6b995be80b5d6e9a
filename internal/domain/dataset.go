// Package domain holds the Dataset aggregate and the pure mutation
// logic applied to it. The Dataset is a single JSON document with four
// collections of schemaless entities; everything here operates on the
// in-memory value and performs no I/O.
package domain

import "encoding/json"

// Collection names addressable through the API.
const (
	CollectionCompanies     = "companies"
	CollectionOpportunities = "opportunities"
	CollectionContacts      = "contacts"
	CollectionActivities    = "activities"
)

// Reserved entity keys managed by the store rather than the caller.
const (
	KeyID            = "id"
	KeyCreatedAt     = "createdAt"
	KeyUpdatedAt     = "updatedAt"
	KeyOpportunityID = "opportunityId"
)

// Entity is a single collection element: an open map of JSON-compatible
// values. The schema is by convention only; unknown fields pass through
// untouched.
type Entity map[string]any

// ID returns the entity's string id, or "" when absent or not a string.
func (e Entity) ID() string {
	id, _ := e[KeyID].(string)
	return id
}

// Clone returns a shallow copy of the entity.
func (e Entity) Clone() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Dataset is the aggregate root: the whole persisted document.
// Each collection is always present and always an array, never null.
type Dataset struct {
	Companies     []Entity `json:"companies"`
	Opportunities []Entity `json:"opportunities"`
	Contacts      []Entity `json:"contacts"`
	Activities    []Entity `json:"activities"`
}

// NewDataset returns an empty Dataset with all four collections
// initialized. This is the first-run default when no document exists.
func NewDataset() *Dataset {
	return &Dataset{
		Companies:     []Entity{},
		Opportunities: []Entity{},
		Contacts:      []Entity{},
		Activities:    []Entity{},
	}
}

// CollectionNames returns the four collection names in document order.
func CollectionNames() []string {
	return []string{
		CollectionCompanies,
		CollectionOpportunities,
		CollectionContacts,
		CollectionActivities,
	}
}

// singularNames maps collection names to the key used for a single
// element in API responses.
var singularNames = map[string]string{
	CollectionCompanies:     "company",
	CollectionOpportunities: "opportunity",
	CollectionContacts:      "contact",
	CollectionActivities:    "activity",
}

// IsValidCollection reports whether name is one of the four collections.
func IsValidCollection(name string) bool {
	_, ok := singularNames[name]
	return ok
}

// SingularName returns the singular response key for a collection name,
// or "" for an unknown collection.
func SingularName(name string) string {
	return singularNames[name]
}

// Normalize replaces nil collections with empty slices so the document
// always serializes with all four keys as arrays.
func (d *Dataset) Normalize() {
	if d.Companies == nil {
		d.Companies = []Entity{}
	}
	if d.Opportunities == nil {
		d.Opportunities = []Entity{}
	}
	if d.Contacts == nil {
		d.Contacts = []Entity{}
	}
	if d.Activities == nil {
		d.Activities = []Entity{}
	}
}

// Collection returns the named collection, or nil for an unknown name.
func (d *Dataset) Collection(name string) []Entity {
	switch name {
	case CollectionCompanies:
		return d.Companies
	case CollectionOpportunities:
		return d.Opportunities
	case CollectionContacts:
		return d.Contacts
	case CollectionActivities:
		return d.Activities
	}
	return nil
}

func (d *Dataset) setCollection(name string, items []Entity) {
	switch name {
	case CollectionCompanies:
		d.Companies = items
	case CollectionOpportunities:
		d.Opportunities = items
	case CollectionContacts:
		d.Contacts = items
	case CollectionActivities:
		d.Activities = items
	}
}

// Counts returns the number of elements per collection, keyed by
// collection name. Used in bulk write responses.
func (d *Dataset) Counts() map[string]int {
	return map[string]int{
		CollectionCompanies:     len(d.Companies),
		CollectionOpportunities: len(d.Opportunities),
		CollectionContacts:      len(d.Contacts),
		CollectionActivities:    len(d.Activities),
	}
}

// MarshalPretty serializes the Dataset the way it is persisted:
// pretty-printed JSON with two-space indentation.
func (d *Dataset) MarshalPretty() ([]byte, error) {
	d.Normalize()
	return json.MarshalIndent(d, "", "  ")
}
