package model

import "time"

// FetchMode distinguishes a wholesale reload from an incremental merge.
type FetchMode string

// Fetch modes.
const (
	FetchModeReload  FetchMode = "reload"
	FetchModeRefresh FetchMode = "refresh"
	FetchModeImport  FetchMode = "import"
)

// FetchRecord is one entry in the local fetch history.
type FetchRecord struct {
	CreatedAt      time.Time
	Scope          string
	Mode           FetchMode
	ID             int64
	Fetched        int
	Added          int
	Calls          int
	Suppressed     int
	GuardTriggered bool
}
