// internal/lending/shadow_test.go
package lending

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfshare/booklend-backend/internal/models"
)

func request(bookID, borrowerID uuid.UUID, status models.RequestStatus) models.BorrowRequest {
	return models.BorrowRequest{
		BaseModel:  models.BaseModel{ID: uuid.New()},
		BookID:     bookID,
		BorrowerID: borrowerID,
		Status:     status,
	}
}

func TestFilterIncomingSuppressesShadowedPending(t *testing.T) {
	bookID := uuid.New()
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(bookID, borrowerID, models.RequestStatusPending),
		request(bookID, borrowerID, models.RequestStatusApproved),
		request(bookID, borrowerID, models.RequestStatusPending),
	}

	out := FilterIncoming(in)
	require.Len(t, out, 1)
	assert.Equal(t, models.RequestStatusApproved, out[0].Status)
}

func TestFilterIncomingDoesNotCrossBorrowers(t *testing.T) {
	bookID := uuid.New()
	approvedBorrower := uuid.New()
	otherBorrower := uuid.New()

	in := []models.BorrowRequest{
		request(bookID, approvedBorrower, models.RequestStatusApproved),
		request(bookID, otherBorrower, models.RequestStatusPending),
	}

	out := FilterIncoming(in)
	require.Len(t, out, 2, "a pending request from a different borrower is never shadowed")
}

func TestFilterIncomingDoesNotCrossBooks(t *testing.T) {
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(uuid.New(), borrowerID, models.RequestStatusApproved),
		request(uuid.New(), borrowerID, models.RequestStatusPending),
	}

	out := FilterIncoming(in)
	require.Len(t, out, 2, "the same borrower pending on a different book is never shadowed")
}

func TestFilterIncomingRetainsNonPendingStatuses(t *testing.T) {
	bookID := uuid.New()
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(bookID, borrowerID, models.RequestStatusApproved),
		request(bookID, borrowerID, models.RequestStatusRejected),
		request(bookID, borrowerID, models.RequestStatusCancelled),
		request(bookID, borrowerID, models.RequestStatusReturned),
	}

	out := FilterIncoming(in)
	assert.Len(t, out, 4, "only pending rows are ever suppressed")
}

func TestFilterIncomingWithoutApprovalKeepsEverything(t *testing.T) {
	bookID := uuid.New()
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(bookID, borrowerID, models.RequestStatusPending),
		request(bookID, borrowerID, models.RequestStatusPending),
	}

	out := FilterIncoming(in)
	assert.Len(t, out, 2)
}

func TestFilterIncomingPreservesOrderAndInput(t *testing.T) {
	shadowedBook := uuid.New()
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(uuid.New(), borrowerID, models.RequestStatusPending),
		request(shadowedBook, borrowerID, models.RequestStatusPending),
		request(uuid.New(), uuid.New(), models.RequestStatusRejected),
		request(shadowedBook, borrowerID, models.RequestStatusApproved),
		request(uuid.New(), borrowerID, models.RequestStatusPending),
	}
	original := make([]models.BorrowRequest, len(in))
	copy(original, in)

	out := FilterIncoming(in)

	require.Len(t, out, 4)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, in[2].ID, out[1].ID)
	assert.Equal(t, in[3].ID, out[2].ID)
	assert.Equal(t, in[4].ID, out[3].ID)
	assert.Equal(t, original, in, "input slice must not be mutated")
}

func TestFilterIncomingIsIdempotent(t *testing.T) {
	bookID := uuid.New()
	borrowerID := uuid.New()

	in := []models.BorrowRequest{
		request(bookID, borrowerID, models.RequestStatusPending),
		request(bookID, borrowerID, models.RequestStatusApproved),
	}

	once := FilterIncoming(in)
	twice := FilterIncoming(once)
	assert.Equal(t, once, twice)
}

func TestFilterIncomingEmpty(t *testing.T) {
	assert.Empty(t, FilterIncoming(nil))
	assert.Empty(t, FilterIncoming([]models.BorrowRequest{}))
}
