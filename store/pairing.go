package store

// Pairing is a client application paired with this instance. KeyHash holds
// a bcrypt hash of the pairing secret; the plaintext is shown exactly once
// at creation time.
type Pairing struct {
	Name       string
	KeyHash    string
	CreatedTs  int64
	LastSeenTs int64
	ID         int32
}

// FindPairing specifies the conditions for finding pairings.
type FindPairing struct {
	ID   *int32
	Name *string
}

// CreatePairing specifies the data for creating a pairing.
type CreatePairing struct {
	Name    string
	KeyHash string
}

// DeletePairing specifies the pairing to delete.
type DeletePairing struct {
	ID int32
}
