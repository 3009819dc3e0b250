package store

// InnerProfile is the persisted long-horizon profile for one user.
// Payload holds the serialized profile document as JSON; the store does not
// interpret it beyond round-tripping.
type InnerProfile struct {
	UserKey   string
	Payload   string
	CreatedTs int64
	UpdatedTs int64
}

// FindInnerProfile specifies the conditions for finding an inner profile.
type FindInnerProfile struct {
	UserKey *string
}

// UpsertInnerProfile specifies the data for upserting an inner profile.
type UpsertInnerProfile struct {
	UserKey string
	Payload string
}

// DeleteInnerProfile specifies the inner profile to delete.
type DeleteInnerProfile struct {
	UserKey string
}
