package reliosdk

// ──────────────────────────────────────────────
// Contact persistence — pluggable snapshot storage
// ──────────────────────────────────────────────

// ContactSnapshot is the persisted record for one contact: the contact
// itself plus its relationship state.
type ContactSnapshot struct {
	Contact *Contact           `json:"contact"`
	State   *RelationshipState `json:"relationship_state"`
}

// ContactStore is the pluggable storage backend for contact snapshots.
// Implementations: in-memory (dev/tests), JSON files, Redis (store package).
type ContactStore interface {
	// Load returns the snapshot for a contact, or (nil, nil) when absent.
	Load(contactID string) (*ContactSnapshot, error)

	// Save persists a snapshot, replacing any existing one.
	Save(snapshot *ContactSnapshot) error

	// Delete removes a contact's snapshot. Removing an absent contact is
	// not an error.
	Delete(contactID string) error

	// List returns the ids of every stored contact.
	List() ([]string, error)
}
