// internal/lending/engine_test.go
package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/models"
)

var allStatuses = []models.RequestStatus{
	models.RequestStatusPending,
	models.RequestStatusApproved,
	models.RequestStatusRejected,
	models.RequestStatusCancelled,
	models.RequestStatusReturned,
}

func TestDecideRejectsIllegalSourceStates(t *testing.T) {
	at := time.Now()

	cases := []struct {
		transition Transition
		validFrom  models.RequestStatus
	}{
		{TransitionApprove, models.RequestStatusPending},
		{TransitionReject, models.RequestStatusPending},
		{TransitionCancel, models.RequestStatusPending},
		{TransitionReturn, models.RequestStatusApproved},
	}

	for _, tc := range cases {
		for _, from := range allStatuses {
			if from == tc.validFrom {
				continue
			}

			_, err := Decide(from, tc.transition, at, DefaultLoanDays)
			require.Error(t, err, "%s from %s must fail", tc.transition, from)
			assert.Equal(t, apperrors.InvariantViolation, apperrors.KindOf(err),
				"%s from %s must be an invariant violation", tc.transition, from)
		}
	}
}

func TestDecideUnknownTransition(t *testing.T) {
	_, err := Decide(models.RequestStatusPending, Transition("archive"), time.Now(), 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestDecideUnknownCurrentStatus(t *testing.T) {
	_, err := Decide(models.RequestStatus("archived"), TransitionApprove, time.Now(), DefaultLoanDays)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvariantViolation, apperrors.KindOf(err))
}

func TestApproveComputesDueDate(t *testing.T) {
	at := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

	decision, err := Approve(models.RequestStatusPending, at, 14)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusApproved, decision.Status)
	require.NotNil(t, decision.ApprovalDate)
	require.NotNil(t, decision.DueDate)
	assert.Nil(t, decision.ReturnDate)
	assert.True(t, decision.ApprovalDate.Equal(at))
	assert.True(t, decision.DueDate.Equal(at.AddDate(0, 0, 14)),
		"due date must be exactly 14 whole days after approval")
}

func TestApproveCustomDuration(t *testing.T) {
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	decision, err := Approve(models.RequestStatusPending, at, 7)
	require.NoError(t, err)
	assert.True(t, decision.DueDate.Equal(at.AddDate(0, 0, 7)))
}

func TestApproveRejectsNonPositiveDuration(t *testing.T) {
	for _, days := range []int{0, -3, -365} {
		_, err := Approve(models.RequestStatusPending, time.Now(), days)
		require.Error(t, err, "duration %d must fail", days)
		assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
	}
}

func TestRejectAndCancelSetNoDerivedFields(t *testing.T) {
	rejected, err := Reject(models.RequestStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovalDate)
	assert.Nil(t, rejected.DueDate)
	assert.Nil(t, rejected.ReturnDate)

	cancelled, err := Cancel(models.RequestStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ApprovalDate)
	assert.Nil(t, cancelled.DueDate)
	assert.Nil(t, cancelled.ReturnDate)
}

func TestReturnStampsReturnDate(t *testing.T) {
	at := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)

	decision, err := Return(models.RequestStatusApproved, at)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusReturned, decision.Status)
	require.NotNil(t, decision.ReturnDate)
	assert.True(t, decision.ReturnDate.Equal(at))
	assert.Nil(t, decision.ApprovalDate)
	assert.Nil(t, decision.DueDate)
}

func TestTerminalStatesAllowNothing(t *testing.T) {
	terminal := []models.RequestStatus{
		models.RequestStatusRejected,
		models.RequestStatusCancelled,
		models.RequestStatusReturned,
	}
	transitions := []Transition{
		TransitionApprove, TransitionReject, TransitionCancel, TransitionReturn,
	}

	for _, from := range terminal {
		for _, tr := range transitions {
			_, err := Decide(from, tr, time.Now(), DefaultLoanDays)
			assert.Error(t, err, "%s from terminal %s must fail", tr, from)
		}
	}
}

func TestValidateCreate(t *testing.T) {
	owner := uuid.New()
	borrower := uuid.New()

	assert.NoError(t, ValidateCreate(borrower, owner))

	err := ValidateCreate(owner, owner)
	require.Error(t, err, "self-borrow must fail for any identity")
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	err = ValidateCreate(borrower, uuid.Nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	err = ValidateCreate(uuid.Nil, owner)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}
