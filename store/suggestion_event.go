package store

// SuggestionEvent records one next-step suggestion handed to a client.
// Only the tool hop, a theme count, and whether the user followed the
// suggestion are kept; message text never lands in the database.
type SuggestionEvent struct {
	UserKey    string
	SessionID  string
	SourceTool string
	TargetTool string
	ThemeCount int
	Accepted   bool
	CreatedTs  int64
	ID         int64
}

// FindSuggestionEvent specifies the conditions for finding suggestion events.
type FindSuggestionEvent struct {
	UserKey    *string
	SourceTool *string
	TargetTool *string
	Accepted   *bool
	Since      *int64
	Limit      *int
	Offset     *int
}

// AcceptSuggestionEvent marks one recorded suggestion as accepted.
// The user key must match the event's owner.
type AcceptSuggestionEvent struct {
	ID      int64
	UserKey string
}

// DeleteSuggestionEvent specifies the suggestion events to delete.
// All events for the given user key are removed.
type DeleteSuggestionEvent struct {
	UserKey string
}
