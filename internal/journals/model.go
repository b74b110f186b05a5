// Package journals manages accounting journals, the books entries are recorded in.
package journals

import "time"

// Journal represents an accounting journal.
type Journal struct {
	ID               int64
	JournalID        string
	Code             string
	ShortName        string
	Name             string
	IsOpeningBalance bool
	CompanyCode      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
