// internal/handlers/borrow.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shelfshare/booklend-backend/internal/i18n"
	"github.com/shelfshare/booklend-backend/internal/identity"
	"github.com/shelfshare/booklend-backend/internal/services"
	"github.com/shelfshare/booklend-backend/internal/utils"
)

type BorrowHandler struct {
	borrowService *services.BorrowService
}

func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{
		borrowService: borrowService,
	}
}

type createBorrowRequestInput struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

// POST /borrow-requests
func (h *BorrowHandler) CreateRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input createBorrowRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.borrowService.CreateRequest(who.UserID, input.BookID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestCreated),
		"request": request,
	})
}

// GET /borrow-requests/outgoing
func (h *BorrowHandler) GetOutgoingRequests(c *gin.Context) {
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	list, err := h.borrowService.GetOutgoingRequests(who.UserID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	respondWithRequestList(c, list)
}

// GET /borrow-requests/incoming
func (h *BorrowHandler) GetIncomingRequests(c *gin.Context) {
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	list, err := h.borrowService.GetIncomingRequests(who.UserID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	respondWithRequestList(c, list)
}

// POST /borrow-requests/:id/approve
func (h *BorrowHandler) ApproveRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	var input services.ApproveRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		// A malformed or non-numeric duration fails here rather than being
		// clamped downstream; an empty body means "use the default".
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyRequestBadDuration), err.Error())
		return
	}

	request, err := h.borrowService.ApproveRequest(requestID, who.UserID, &input)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestApproved),
		"request": request,
	})
}

// POST /borrow-requests/:id/reject
func (h *BorrowHandler) RejectRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	var input services.RejectRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.borrowService.RejectRequest(requestID, who.UserID, &input)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestRejected),
		"request": request,
	})
}

// POST /borrow-requests/:id/cancel
func (h *BorrowHandler) CancelRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	request, err := h.borrowService.CancelRequest(requestID, who.UserID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestCancelled),
		"request": request,
	})
}

// POST /borrow-requests/:id/return
func (h *BorrowHandler) MarkReturned(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	who := identity.FromContext(c)
	if !who.Authenticated() {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	request, err := h.borrowService.MarkReturned(requestID, who.UserID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestReturned),
		"request": request,
	})
}

func respondWithRequestList(c *gin.Context, list *services.RequestList) {
	if list.EnrichmentErr != nil {
		utils.SuccessResponseWithMeta(c, gin.H{"requests": list.Requests}, gin.H{
			"enrichment_error": list.EnrichmentErr.Error(),
		})
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": list.Requests})
}
