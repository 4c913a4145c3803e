// internal/models/book.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Book struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Author      string         `json:"author" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	CoverURL    string         `json:"cover_url,omitempty" gorm:"size:512"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Read-time enrichment, never persisted on this row.
	OwnerInfo *BookOwnerInfo `json:"owner,omitempty" gorm:"-"`

	// Relationships
	Owner    User            `json:"-" gorm:"foreignKey:OwnerID"`
	Requests []BorrowRequest `json:"requests,omitempty" gorm:"foreignKey:BookID"`
}

// BookOwnerInfo is the owner display identity merged into a listed book.
type BookOwnerInfo struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
}
