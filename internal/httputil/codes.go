package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeUsernameAlreadyExists = "USERNAME_ALREADY_EXISTS"
	CodeEmailAlreadyExists    = "EMAIL_ALREADY_EXISTS"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeInvalidUserID         = "INVALID_USER_ID"

	CodeIdentifierRequired = "IDENTIFIER_REQUIRED"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	CodeMissingAuth  = "MISSING_AUTH"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeForbidden    = "FORBIDDEN"
)
