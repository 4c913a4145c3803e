// internal/services/borrow_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/config"
	"github.com/shelfshare/booklend-backend/internal/lending"
	"github.com/shelfshare/booklend-backend/internal/models"
)

type BorrowService struct {
	db              *gorm.DB
	defaultLoanDays int
}

type ApproveRequestInput struct {
	// Nil means "owner did not choose"; the configured default applies.
	// An explicit zero or negative value is rejected, never clamped.
	LoanDurationDays *int   `json:"loan_duration_days,omitempty"`
	OwnerNotes       string `json:"owner_notes,omitempty"`
}

type RejectRequestInput struct {
	OwnerNotes string `json:"owner_notes,omitempty"`
}

// RequestList is a fetched view of borrow requests. EnrichmentErr reports a
// failed second-phase display lookup; the rows themselves are still valid,
// with placeholder labels where a reference could not be resolved.
type RequestList struct {
	Requests      []models.BorrowRequest `json:"requests"`
	EnrichmentErr error                  `json:"-"`
}

func NewBorrowService(db *gorm.DB, cfg *config.Config) *BorrowService {
	defaultDays := lending.DefaultLoanDays
	if cfg != nil && cfg.Lending.DefaultLoanDays > 0 {
		defaultDays = cfg.Lending.DefaultLoanDays
	}
	return &BorrowService{
		db:              db,
		defaultLoanDays: defaultDays,
	}
}

// CreateRequest opens a pending borrow request for a book. The owner id is
// copied from the book row at creation time so owner-side views can filter
// on the request table alone.
func (s *BorrowService) CreateRequest(borrowerID uuid.UUID, bookID uuid.UUID) (*models.BorrowRequest, error) {
	if borrowerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated: cannot create borrow request")
	}
	if bookID == uuid.Nil {
		return nil, apperrors.E(apperrors.InvalidInput, "book reference is missing")
	}

	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "book not found")
		}
		return nil, apperrors.Upstream("fetch book", err)
	}

	if err := lending.ValidateCreate(borrowerID, book.OwnerID); err != nil {
		return nil, err
	}

	request := &models.BorrowRequest{
		BookID:      book.ID,
		BorrowerID:  borrowerID,
		OwnerID:     book.OwnerID,
		Status:      models.RequestStatusPending,
		RequestDate: time.Now(),
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, apperrors.Upstream("create borrow request", err)
	}

	return request, nil
}

// GetOutgoingRequests returns every request made by the borrower, newest
// request first, enriched with book display data. No shadow filtering
// applies on the borrower side.
func (s *BorrowService) GetOutgoingRequests(borrowerID uuid.UUID) (*RequestList, error) {
	if borrowerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}

	var requests []models.BorrowRequest
	if err := s.db.
		Where("borrower_id = ?", borrowerID).
		Order("request_date DESC").
		Find(&requests).Error; err != nil {
		return nil, apperrors.Upstream("fetch outgoing requests", err)
	}

	enrichErr := s.enrichBookInfo(requests)
	return &RequestList{Requests: requests, EnrichmentErr: enrichErr}, nil
}

// GetIncomingRequests returns requests for books the caller owns, newest
// request first, enriched with book and borrower display data and
// shadow-filtered: a stale pending row is hidden while the same
// (book, borrower) pair holds an approved loan. The projection is
// recomputed on every call; stored rows are never touched.
func (s *BorrowService) GetIncomingRequests(ownerID uuid.UUID) (*RequestList, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}

	var requests []models.BorrowRequest
	if err := s.db.
		Where("owner_id = ?", ownerID).
		Order("request_date DESC").
		Find(&requests).Error; err != nil {
		return nil, apperrors.Upstream("fetch incoming requests", err)
	}

	var enrichErr error
	if err := s.enrichBookInfo(requests); err != nil {
		enrichErr = err
	}
	if err := s.enrichBorrowerInfo(requests); err != nil && enrichErr == nil {
		enrichErr = err
	}

	return &RequestList{
		Requests:      lending.FilterIncoming(requests),
		EnrichmentErr: enrichErr,
	}, nil
}

// ApproveRequest moves a pending request to approved. Only the book owner may
// approve; the due date is the approval instant plus the chosen loan duration.
func (s *BorrowService) ApproveRequest(requestID, callerID uuid.UUID, input *ApproveRequestInput) (*models.BorrowRequest, error) {
	request, err := s.loadRequest(requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != callerID {
		return nil, apperrors.E(apperrors.Unauthorized, "only the book owner can approve this request")
	}

	days := s.defaultLoanDays
	var notes string
	if input != nil {
		notes = input.OwnerNotes
		if input.LoanDurationDays != nil {
			days = *input.LoanDurationDays
		}
	}

	decision, err := lending.Approve(request.Status, time.Now(), days)
	if err != nil {
		return nil, err
	}

	request.Status = decision.Status
	request.ApprovalDate = decision.ApprovalDate
	request.DueDate = decision.DueDate
	if notes != "" {
		request.OwnerNotes = notes
	}

	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Upstream("update borrow request", err)
	}
	return request, nil
}

// RejectRequest moves a pending request to rejected. Owner only; no derived
// fields.
func (s *BorrowService) RejectRequest(requestID, callerID uuid.UUID, input *RejectRequestInput) (*models.BorrowRequest, error) {
	request, err := s.loadRequest(requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != callerID {
		return nil, apperrors.E(apperrors.Unauthorized, "only the book owner can reject this request")
	}

	decision, err := lending.Reject(request.Status)
	if err != nil {
		return nil, err
	}

	request.Status = decision.Status
	if input != nil && input.OwnerNotes != "" {
		request.OwnerNotes = input.OwnerNotes
	}

	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Upstream("update borrow request", err)
	}
	return request, nil
}

// CancelRequest moves a pending request to cancelled. Borrower only.
func (s *BorrowService) CancelRequest(requestID, callerID uuid.UUID) (*models.BorrowRequest, error) {
	request, err := s.loadRequest(requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.BorrowerID != callerID {
		return nil, apperrors.E(apperrors.Unauthorized, "only the borrower can cancel this request")
	}

	decision, err := lending.Cancel(request.Status)
	if err != nil {
		return nil, err
	}

	request.Status = decision.Status
	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Upstream("update borrow request", err)
	}
	return request, nil
}

// MarkReturned moves an approved request to returned and stamps the return
// date. Either side of the loan may record the return.
func (s *BorrowService) MarkReturned(requestID, callerID uuid.UUID) (*models.BorrowRequest, error) {
	request, err := s.loadRequest(requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != callerID && request.BorrowerID != callerID {
		return nil, apperrors.E(apperrors.Unauthorized, "only the owner or borrower can mark this loan returned")
	}

	decision, err := lending.Return(request.Status, time.Now())
	if err != nil {
		return nil, err
	}

	request.Status = decision.Status
	request.ReturnDate = decision.ReturnDate
	if err := s.db.Save(request).Error; err != nil {
		return nil, apperrors.Upstream("update borrow request", err)
	}
	return request, nil
}

func (s *BorrowService) loadRequest(requestID, callerID uuid.UUID) (*models.BorrowRequest, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}
	var request models.BorrowRequest
	if err := s.db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "borrow request not found")
		}
		return nil, apperrors.Upstream("fetch borrow request", err)
	}
	return &request, nil
}

const (
	unknownBookTitle = "Unknown Book"
	unknownEmail     = "Unknown Email"
)

// enrichBookInfo is phase two of the read path: one batched lookup over the
// distinct book ids, merged in memory. Rows whose book cannot be resolved
// (deleted, or the lookup itself failed) get the placeholder title; the
// primary rows are never discarded because of an enrichment failure.
func (s *BorrowService) enrichBookInfo(requests []models.BorrowRequest) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(requests))
	seen := make(map[uuid.UUID]struct{}, len(requests))
	for _, r := range requests {
		if _, ok := seen[r.BookID]; !ok {
			seen[r.BookID] = struct{}{}
			ids = append(ids, r.BookID)
		}
	}

	byID := make(map[uuid.UUID]models.Book, len(ids))
	var books []models.Book
	err := s.db.Where("id IN ?", ids).Find(&books).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to enrich requests with book data")
		err = apperrors.Upstream("fetch books for enrichment", err)
	} else {
		for _, b := range books {
			byID[b.ID] = b
		}
	}

	for i := range requests {
		if b, ok := byID[requests[i].BookID]; ok {
			requests[i].BookInfo = &models.RequestBookInfo{Title: b.Title, Author: b.Author}
		} else {
			requests[i].BookInfo = &models.RequestBookInfo{Title: unknownBookTitle}
		}
	}
	return err
}

// enrichBorrowerInfo mirrors enrichBookInfo for borrower display identities.
func (s *BorrowService) enrichBorrowerInfo(requests []models.BorrowRequest) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(requests))
	seen := make(map[uuid.UUID]struct{}, len(requests))
	for _, r := range requests {
		if _, ok := seen[r.BorrowerID]; !ok {
			seen[r.BorrowerID] = struct{}{}
			ids = append(ids, r.BorrowerID)
		}
	}

	byID := make(map[uuid.UUID]models.User, len(ids))
	var users []models.User
	err := s.db.Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to enrich requests with borrower data")
		err = apperrors.Upstream("fetch borrowers for enrichment", err)
	} else {
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	for i := range requests {
		if u, ok := byID[requests[i].BorrowerID]; ok {
			requests[i].BorrowerInfo = &models.RequestBorrowerInfo{Email: u.Email, Username: u.Username}
		} else {
			requests[i].BorrowerInfo = &models.RequestBorrowerInfo{Email: unknownEmail}
		}
	}
	return err
}
