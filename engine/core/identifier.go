package core

import "fmt"

// Owner slots for runtime IDs. Index is the ID; nil slots are free.
var owners []interface{}

func IdentifierAcquireNewID(owner interface{}) uint32 {
	if len(owners) == 0 {
		owners = make([]interface{}, 100)
	}
	length := uint32(len(owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if owners[i] == nil {
			owners[i] = owner
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	// This means the id will be length - 1
	owners = append(owners, owner)
	return uint32(len(owners)) - 1
}

func IdentifierReleaseID(id uint32) error {
	if len(owners) == 0 {
		return fmt.Errorf("identifier_release_id called before any id was acquired. Nothing was done")
	}

	if id >= uint32(len(owners)) {
		return fmt.Errorf("identifier_release_id: id '%d' out of range (max=%d). Nothing was done", id, len(owners))
	}

	// Just zero out the entry, making it available for use.
	owners[id] = nil
	return nil
}
