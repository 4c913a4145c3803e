// internal/models/borrow_request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// BorrowRequest tracks one borrower's intent to borrow one book. OwnerID is
// copied from the book at creation time so owner-side views filter on a
// single indexed column instead of joining through books.
type BorrowRequest struct {
	BaseModel
	BookID       uuid.UUID     `json:"book_id" gorm:"type:uuid;not null;index"`
	BorrowerID   uuid.UUID     `json:"borrower_id" gorm:"type:uuid;not null;index"`
	OwnerID      uuid.UUID     `json:"owner_id" gorm:"type:uuid;not null;index"`
	Status       RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RequestDate  time.Time     `json:"request_date" gorm:"not null;index"`
	ApprovalDate *time.Time    `json:"approval_date"`
	DueDate      *time.Time    `json:"due_date"`
	ReturnDate   *time.Time    `json:"return_date"`
	OwnerNotes   string        `json:"owner_notes,omitempty" gorm:"type:text"`

	// Read-time enrichment, populated by the borrow service's second-phase
	// lookups; never persisted on this row.
	BookInfo     *RequestBookInfo     `json:"book,omitempty" gorm:"-"`
	BorrowerInfo *RequestBorrowerInfo `json:"borrower,omitempty" gorm:"-"`

	// Relationships
	Book     Book `json:"-" gorm:"foreignKey:BookID"`
	Borrower User `json:"-" gorm:"foreignKey:BorrowerID"`
}

// RequestBookInfo is the book display data joined into a request row.
type RequestBookInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// RequestBorrowerInfo is the borrower display identity joined into a
// request row.
type RequestBorrowerInfo struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}
