// internal/lending/shadow.go
package lending

import (
	"github.com/google/uuid"

	"github.com/shelfshare/booklend-backend/internal/models"
)

type loanKey struct {
	bookID     uuid.UUID
	borrowerID uuid.UUID
}

// FilterIncoming suppresses stale pending duplicates from an owner's
// incoming-request view: a pending row is dropped when the same
// (book, borrower) pair already holds an approved loan anywhere in the list.
// Rows in any other status are always retained, input order is preserved,
// and the input slice is never mutated. This is a read-time projection only;
// suppressed rows still exist in storage, so it must be recomputed on every
// fetch.
func FilterIncoming(requests []models.BorrowRequest) []models.BorrowRequest {
	active := make(map[loanKey]struct{})
	for _, r := range requests {
		if r.Status == models.RequestStatusApproved {
			active[loanKey{r.BookID, r.BorrowerID}] = struct{}{}
		}
	}

	filtered := make([]models.BorrowRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == models.RequestStatusPending {
			if _, shadowed := active[loanKey{r.BookID, r.BorrowerID}]; shadowed {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}
