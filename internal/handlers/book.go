// internal/handlers/book.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shelfshare/booklend-backend/internal/i18n"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/services"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

type BookHandler struct {
	bookService    *services.BookService
	storageService *services.StorageService
}

func NewBookHandler(bookService *services.BookService, storageService *services.StorageService) *BookHandler {
	return &BookHandler{
		bookService:    bookService,
		storageService: storageService,
	}
}

// GET /books
func (h *BookHandler) GetBooks(c *gin.Context) {
	list, err := h.bookService.ListBooks()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if list.EnrichmentErr != nil {
		// Partial result: book rows are complete, owner labels may be
		// placeholders. Clients see the rows plus the reason.
		utils.SuccessResponseWithMeta(c, gin.H{"books": list.Books}, gin.H{
			"enrichment_error": list.EnrichmentErr.Error(),
		})
		return
	}

	utils.SuccessResponse(c, gin.H{"books": list.Books})
}

// GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	book, err := h.bookService.GetBook(bookID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"book": book})
}

// GET /books/mine
func (h *BookHandler) GetMyBooks(c *gin.Context) {
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	books, total, err := h.bookService.GetOwnerBooks(who.UserID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(books, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /books
func (h *BookHandler) CreateBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.AddBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	book, err := h.bookService.AddBook(who.UserID, &input)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookCreated),
		"book":    book,
	})
}

// DELETE /books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	book, err := h.bookService.GetBook(bookID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if err := h.bookService.DeleteBook(bookID, who.UserID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	h.removeCoverObject(book.CoverURL)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookDeleted),
	})
}

// POST /books/:id/cover
func (h *BookHandler) UploadCover(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	previous, err := h.bookService.GetBook(bookID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	file, header, err := c.Request.FormFile("cover")
	if err != nil {
		utils.BadRequestResponse(c, "Cover file is required", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.CoverUploadOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	book, err := h.bookService.UpdateCover(bookID, who.UserID, result.URL)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	// The replaced cover object is dead weight once the row points at the
	// new one.
	h.removeCoverObject(previous.CoverURL)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookCoverUpload),
		"book":    book,
		"upload":  result,
	})
}

// removeCoverObject deletes a stored cover image best-effort; the row update
// or delete has already committed, so a storage failure only logs.
func (h *BookHandler) removeCoverObject(coverURL string) {
	if coverURL == "" {
		return
	}
	key := h.storageService.KeyFromURL(coverURL)
	if key == "" {
		return
	}
	if err := h.storageService.DeleteFile(key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to delete cover object")
	}
}
