// internal/lending/engine.go

// Package lending holds the borrow-request lifecycle engine: pure decision
// logic over status transitions plus the read-time shadow filter. Nothing in
// this package touches storage or the transport layer.
package lending

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/models"
)

// DefaultLoanDays is the loan duration applied when the owner approves
// without choosing one.
const DefaultLoanDays = 14

// Transition names a requested status change.
//
// Who may request which transition is enforced by the service layer before
// the engine is consulted; the engine only rules on state legality and
// derived fields. The actor contract, mirrored 1:1 by the services:
//
//	approve  pending  -> approved   book owner
//	reject   pending  -> rejected   book owner
//	cancel   pending  -> cancelled  borrower
//	return   approved -> returned   owner or borrower
type Transition string

const (
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
	TransitionCancel  Transition = "cancel"
	TransitionReturn  Transition = "return"
)

// validSource maps each transition to the only status it may start from.
var validSource = map[Transition]models.RequestStatus{
	TransitionApprove: models.RequestStatusPending,
	TransitionReject:  models.RequestStatusPending,
	TransitionCancel:  models.RequestStatusPending,
	TransitionReturn:  models.RequestStatusApproved,
}

// target maps each transition to the status it produces.
var target = map[Transition]models.RequestStatus{
	TransitionApprove: models.RequestStatusApproved,
	TransitionReject:  models.RequestStatusRejected,
	TransitionCancel:  models.RequestStatusCancelled,
	TransitionReturn:  models.RequestStatusReturned,
}

// Decision is the canonical outcome of a legal transition. Nil date fields
// mean "leave the stored value untouched".
type Decision struct {
	Status       models.RequestStatus
	ApprovalDate *time.Time
	DueDate      *time.Time
	ReturnDate   *time.Time
}

// ValidateCreate rules on the creation-time invariants that need no storage
// access: a borrower may never request their own book, and both references
// must be present.
func ValidateCreate(borrowerID, bookOwnerID uuid.UUID) error {
	if borrowerID == uuid.Nil || bookOwnerID == uuid.Nil {
		return apperrors.E(apperrors.InvalidInput, "book owner or borrower reference is missing")
	}
	if borrowerID == bookOwnerID {
		return apperrors.E(apperrors.InvalidInput, "you cannot borrow your own book")
	}
	return nil
}

// Decide rules on a transition from the current status at instant `at`.
// loanDurationDays is only consulted for approve. Callers resolve an
// unspecified duration to DefaultLoanDays before calling, so an explicit
// zero or negative reaching the engine is rejected, never clamped.
func Decide(current models.RequestStatus, t Transition, at time.Time, loanDurationDays int) (Decision, error) {
	source, ok := validSource[t]
	if !ok {
		return Decision{}, apperrors.Ef(apperrors.InvalidInput, "unknown transition %q", t)
	}
	if !current.IsValid() {
		return Decision{}, apperrors.Ef(apperrors.InvariantViolation,
			"request is in unknown status %q", current)
	}
	if current != source {
		return Decision{}, apperrors.Ef(apperrors.InvariantViolation,
			"cannot %s a request in status %q (requires %q)", t, current, source)
	}

	d := Decision{Status: target[t]}
	switch t {
	case TransitionApprove:
		if loanDurationDays <= 0 {
			return Decision{}, apperrors.E(apperrors.InvalidInput,
				"loan duration must be a positive number of days")
		}
		approval := at
		due := approval.AddDate(0, 0, loanDurationDays)
		d.ApprovalDate = &approval
		d.DueDate = &due
	case TransitionReturn:
		returned := at
		d.ReturnDate = &returned
	}
	return d, nil
}

// Approve rules on pending->approved and computes the due date as the
// approval instant plus loanDurationDays whole days.
func Approve(current models.RequestStatus, at time.Time, loanDurationDays int) (Decision, error) {
	return Decide(current, TransitionApprove, at, loanDurationDays)
}

// Reject rules on pending->rejected. No derived fields.
func Reject(current models.RequestStatus) (Decision, error) {
	return Decide(current, TransitionReject, time.Time{}, 0)
}

// Cancel rules on pending->cancelled. No derived fields.
func Cancel(current models.RequestStatus) (Decision, error) {
	return Decide(current, TransitionCancel, time.Time{}, 0)
}

// Return rules on approved->returned and stamps the return instant.
func Return(current models.RequestStatus, at time.Time) (Decision, error) {
	return Decide(current, TransitionReturn, at, 0)
}
