// internal/services/book_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shelfshare/booklend-backend/internal/apperrors"
	"github.com/shelfshare/booklend-backend/internal/models"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

type BookService struct {
	db *gorm.DB
}

type AddBookInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Author      string   `json:"author" validate:"required,max=255"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// BookList is a fetched catalog view. EnrichmentErr reports a failed owner
// identity lookup; the book rows themselves are still valid.
type BookList struct {
	Books         []models.Book `json:"books"`
	EnrichmentErr error         `json:"-"`
}

func NewBookService(db *gorm.DB) *BookService {
	return &BookService{db: db}
}

// AddBook creates a book owned by the caller. The owner id is stamped from
// the authenticated identity, never taken from the request body.
func (s *BookService) AddBook(ownerID uuid.UUID, input *AddBookInput) (*models.Book, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated: cannot add book")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, apperrors.Ef(apperrors.InvalidInput, "validation failed: %v", err)
	}

	book := &models.Book{
		OwnerID:     ownerID,
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Tags:        pq.StringArray(input.Tags),
	}

	if err := s.db.Create(book).Error; err != nil {
		return nil, apperrors.Upstream("create book", err)
	}
	return book, nil
}

// ListBooks returns the whole catalog with owner display identities merged
// best-effort: a failed identity lookup logs, leaves placeholder labels and
// comes back in EnrichmentErr, but never fails the read.
func (s *BookService) ListBooks() (*BookList, error) {
	var books []models.Book
	if err := s.db.Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, apperrors.Upstream("fetch books", err)
	}

	enrichErr := s.enrichOwnerInfo(books)
	return &BookList{Books: books, EnrichmentErr: enrichErr}, nil
}

// GetBook fetches one book by id.
func (s *BookService) GetBook(bookID uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "book not found")
		}
		return nil, apperrors.Upstream("fetch book", err)
	}
	return &book, nil
}

// GetOwnerBooks returns the caller's own books, paginated.
func (s *BookService) GetOwnerBooks(ownerID uuid.UUID, params utils.PaginationParams) ([]models.Book, int64, error) {
	if ownerID == uuid.Nil {
		return nil, 0, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}

	query := s.db.Model(&models.Book{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Upstream("count books", err)
	}

	allowedSortFields := []string{"created_at", "title", "author"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, 0, apperrors.Upstream("fetch books", err)
	}

	return books, total, nil
}

// UpdateCover records the uploaded cover image URL on the caller's book.
func (s *BookService) UpdateCover(bookID, callerID uuid.UUID, coverURL string) (*models.Book, error) {
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if callerID == uuid.Nil {
		return nil, apperrors.E(apperrors.Unauthenticated, "not authenticated")
	}
	if book.OwnerID != callerID {
		return nil, apperrors.E(apperrors.Unauthorized, "only the owner can update this book")
	}

	book.CoverURL = coverURL
	if err := s.db.Save(book).Error; err != nil {
		return nil, apperrors.Upstream("update book", err)
	}
	return book, nil
}

// DeleteBook removes the caller's book. Dependent borrow requests are
// deleted first inside the same transaction so no request can dangle on a
// missing book; when that cascade step fails the book row survives and the
// failing step is reported.
func (s *BookService) DeleteBook(bookID, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return apperrors.E(apperrors.Unauthenticated, "not authenticated: cannot delete book")
	}

	var book models.Book
	if err := s.db.First(&book, "id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.NotFound, "book not found")
		}
		return apperrors.Upstream("fetch book", err)
	}

	if book.OwnerID != callerID {
		return apperrors.E(apperrors.Unauthorized, "only the owner can delete this book")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&models.BorrowRequest{}).Error; err != nil {
			return fmt.Errorf("delete dependent borrow requests: %w", err)
		}
		if err := tx.Delete(&book).Error; err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.Upstream("cascade delete book", err)
	}

	return nil
}

// enrichOwnerInfo is the two-phase owner identity merge for book listings.
func (s *BookService) enrichOwnerInfo(books []models.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(books))
	seen := make(map[uuid.UUID]struct{}, len(books))
	for _, b := range books {
		if _, ok := seen[b.OwnerID]; !ok {
			seen[b.OwnerID] = struct{}{}
			ids = append(ids, b.OwnerID)
		}
	}

	byID := make(map[uuid.UUID]models.User, len(ids))
	var owners []models.User
	err := s.db.Where("id IN ?", ids).Find(&owners).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to enrich books with owner data")
		err = apperrors.Upstream("fetch owners for enrichment", err)
	} else {
		for _, u := range owners {
			byID[u.ID] = u
		}
	}

	for i := range books {
		if u, ok := byID[books[i].OwnerID]; ok {
			books[i].OwnerInfo = &models.BookOwnerInfo{Username: u.Username, Email: u.Email}
		} else {
			books[i].OwnerInfo = &models.BookOwnerInfo{Email: unknownEmail}
		}
	}
	return err
}
