package domain

import (
	"encoding/json"
	"time"
)

// timestamp returns the store-assigned timestamp for createdAt/updatedAt.
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ReplaceCollection sets the named collection to the decoded array when
// raw is a JSON array; any other value (missing, null, object, scalar)
// leaves the existing collection unchanged. The fallback is defensive,
// not an error. Reports whether a replacement happened.
func (d *Dataset) ReplaceCollection(name string, raw json.RawMessage) bool {
	if !IsValidCollection(name) || raw == nil {
		return false
	}
	var items []Entity
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	if items == nil {
		// "null" decodes without error but is not an array.
		return false
	}
	d.setCollection(name, items)
	return true
}

// Merge applies a document-level merge: for each collection name, an
// array supplied in updates fully replaces the existing collection;
// collections not supplied (or not arrays) are kept verbatim. This is
// whole-collection granularity, deliberately distinct from per-id
// upserts.
func (d *Dataset) Merge(updates map[string]json.RawMessage) {
	for _, name := range CollectionNames() {
		d.ReplaceCollection(name, updates[name])
	}
}

// Upsert merges patch into the element with the given id, or appends a
// new element when no match exists. The path-supplied id is
// authoritative: an "id" key inside patch is overridden. On update the
// element keeps its position and gets updatedAt stamped; on insert the
// new element gets createdAt stamped and goes to the end. createdAt is
// never rewritten after first creation. Returns the resulting element.
func (d *Dataset) Upsert(name, id string, patch Entity) (Entity, error) {
	if !IsValidCollection(name) {
		return nil, ErrUnknownCollection
	}
	items := d.Collection(name)
	for i, existing := range items {
		if existing.ID() != id {
			continue
		}
		merged := existing.Clone()
		for k, v := range patch {
			merged[k] = v
		}
		merged[KeyID] = id
		merged[KeyUpdatedAt] = timestamp()
		items[i] = merged
		return merged, nil
	}

	created := make(Entity, len(patch)+2)
	for k, v := range patch {
		created[k] = v
	}
	created[KeyID] = id
	created[KeyCreatedAt] = timestamp()
	d.setCollection(name, append(items, created))
	return created, nil
}

// Delete removes every element with the given id from the named
// collection and reports whether anything was removed. Deleting from
// opportunities cascades: all activities whose opportunityId equals the
// deleted id are removed in the same mutation. No other cascade exists.
func (d *Dataset) Delete(name, id string) (bool, error) {
	if !IsValidCollection(name) {
		return false, ErrUnknownCollection
	}
	items := d.Collection(name)
	kept := make([]Entity, 0, len(items))
	for _, e := range items {
		if e.ID() == id {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(kept) != len(items)
	d.setCollection(name, kept)

	if name == CollectionOpportunities {
		activities := make([]Entity, 0, len(d.Activities))
		for _, a := range d.Activities {
			if ref, _ := a[KeyOpportunityID].(string); ref == id {
				continue
			}
			activities = append(activities, a)
		}
		d.Activities = activities
	}
	return removed, nil
}
