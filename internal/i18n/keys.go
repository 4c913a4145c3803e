// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Books
	KeyBookCreated      = "book.created"
	KeyBookDeleted      = "book.deleted"
	KeyBookNotFound     = "book.not_found"
	KeyBookDeleteDenied = "book.delete_denied"
	KeyBookCoverUpload  = "book.cover_uploaded"

	// Borrow requests
	KeyRequestCreated     = "request.created"
	KeyRequestApproved    = "request.approved"
	KeyRequestRejected    = "request.rejected"
	KeyRequestCancelled   = "request.cancelled"
	KeyRequestReturned    = "request.returned"
	KeyRequestNotFound    = "request.not_found"
	KeyRequestSelfBorrow  = "request.self_borrow"
	KeyRequestBadDuration = "request.bad_duration"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Errors
	KeyErrorInternal  = "error.internal"
	KeyErrorForbidden = "error.forbidden"
	KeyErrorConflict  = "error.conflict"
)
