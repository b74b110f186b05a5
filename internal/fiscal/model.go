// Package fiscal manages fiscal years for the ledger.
package fiscal

import "time"

// Year represents a fiscal year window.
// At most one year carries IsCurrent at any time; the flag is only moved
// through Service.SetCurrent so the invariant stays visible and testable.
type Year struct {
	ID        int64
	Year      int
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsClosed  bool
	IsCurrent bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
