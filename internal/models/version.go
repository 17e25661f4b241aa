package models

import (
	"sort"
	"time"
)

// Item types recorded in the change history
const (
	ItemFamily = "Family"
	ItemKid    = "Kid"
)

// Change events
const (
	EventCreate = "create"
	EventUpdate = "update"
)

// Change is one field-level entry in an item's change history
type Change struct {
	ID          int64
	ChangeSetID string // groups the fields changed by one save
	ItemType    string
	ItemID      int64
	Event       string
	Field       string
	OldValue    *string
	NewValue    *string
	CreatedAt   time.Time
}

// Version is all field changes made to an item by a single save
type Version struct {
	ChangeSetID string
	Event       string
	CreatedAt   time.Time
	Changes     map[string][2]*string // field -> [old, new]
}

// Diff compares two attribute maps and returns the changed fields, sorted by name
func Diff(before, after map[string]*string) []Change {
	var changes []Change
	for field, newValue := range after {
		oldValue := before[field]
		if equalValues(oldValue, newValue) {
			continue
		}
		changes = append(changes, Change{Field: field, OldValue: oldValue, NewValue: newValue})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

// GroupVersions folds an ordered list of changes into versions, oldest first
func GroupVersions(changes []Change) []Version {
	var versions []Version
	index := make(map[string]int)
	for _, c := range changes {
		i, ok := index[c.ChangeSetID]
		if !ok {
			versions = append(versions, Version{
				ChangeSetID: c.ChangeSetID,
				Event:       c.Event,
				CreatedAt:   c.CreatedAt,
				Changes:     make(map[string][2]*string),
			})
			i = len(versions) - 1
			index[c.ChangeSetID] = i
		}
		versions[i].Changes[c.Field] = [2]*string{c.OldValue, c.NewValue}
	}
	return versions
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
