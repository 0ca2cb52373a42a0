package errors

import (
	"errors"
	"net/http"
)

// Error codes returned to clients next to the human readable message.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
)

// Kind errors. Every domain error below wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	// ErrMissingFields is returned when a required request field is empty.
	ErrMissingFields = newKind(ErrValidation, "Todos os campos devem ser preenchidos.")
	// ErrInvalidRole is returned when a role name is not part of the role policy.
	ErrInvalidRole = newKind(ErrValidation, "Cargo inválido.")
	// ErrInvalidPicture is returned when a profile picture is not an image data URI.
	ErrInvalidPicture = newKind(ErrValidation, "Formato de imagem inválido ou dados incompletos.")
	// ErrIncompletePost is returned when a post is missing a required field.
	ErrIncompletePost = newKind(ErrValidation, "Dados incompletos.")
	// ErrVerseUnavailable is returned when the verse API gave no usable verse.
	ErrVerseUnavailable = newKind(ErrValidation, "Failed to generate verse.")

	// ErrInvalidPassword is returned when the password does not match the stored hash.
	ErrInvalidPassword = newKind(ErrUnauthorized, "Senha inválida.")
	// ErrMissingToken is returned when no session token accompanies the request.
	ErrMissingToken = newKind(ErrUnauthorized, "Token não fornecido.")
	// ErrInvalidToken is returned for malformed, forged, expired or revoked tokens.
	ErrInvalidToken = newKind(ErrUnauthorized, "Token inválido ou expirado.")

	// ErrPermissionDenied is returned when the actor lacks the required role rank.
	ErrPermissionDenied = newKind(ErrForbidden, "Usuário sem permissão.")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = newKind(ErrNotFound, "Usuário não encontrado.")
	// ErrPostNotFound is returned when no post matches the id.
	ErrPostNotFound = newKind(ErrNotFound, "Post não encontrado.")

	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = newKind(ErrConflict, "Usuário já existente.")
)

// kindError is a domain error carrying a client-safe message and its kind.
type kindError struct {
	kind error
	msg  string
}

func newKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Success: false,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// known domain error becomes a generic 500 so internals never reach clients.
func MapErrorToHTTP(err error) *HTTPError {
	var ke *kindError
	if !errors.As(err, &ke) {
		return NewHTTPError(http.StatusInternalServerError, "Erro interno no servidor.", CodeInternal)
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, ke.msg, CodeValidation)
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ke.msg, CodeUnauthorized)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ke.msg, CodeForbidden)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ke.msg, CodeNotFound)
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, ke.msg, CodeConflict)
	default:
		return NewHTTPError(http.StatusInternalServerError, "Erro interno no servidor.", CodeInternal)
	}
}

// IsInternal reports whether err would be rendered as a 500.
func IsInternal(err error) bool {
	return MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError
}

// Validation wraps a request-specific validation message as ErrValidation.
func Validation(msg string) error {
	return newKind(ErrValidation, msg)
}
