package cars

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/JaimeStill/webcarros/internal/accounts"
)

// Domain errors for listing operations.
var (
	ErrNotFound         = errors.New("car not found")
	ErrForbidden        = errors.New("listing belongs to another user")
	ErrValidation       = errors.New("validation failed")
	ErrNoImages         = errors.New("no images")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds maximum upload size")
	ErrRemote           = errors.New("backend request failed")
	ErrMalformedRequest = errors.New("malformed multipart request")
)

// ValidationError lists form field messages. It unwraps to ErrValidation and,
// when the image checks failed, to ErrNoImages or ErrUnsupportedImage.
type ValidationError struct {
	fields map[string]string
	causes []error
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: map[string]string{}}
}

func (e *ValidationError) add(field, msg string, cause error) {
	if _, ok := e.fields[field]; !ok {
		e.fields[field] = msg
	}
	if cause != nil {
		e.causes = append(e.causes, cause)
	}
}

func (e *ValidationError) empty() bool {
	return len(e.fields) == 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return ErrValidation.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrValidation}, e.causes...)
}

// Fields returns the message for each invalid field.
func (e *ValidationError) Fields() map[string]string {
	return e.fields
}

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, accounts.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
