package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/371050/study-pwa/internal/api/shared"
	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/auth"
	"github.com/371050/study-pwa/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrFormat):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrReviewUnitMismatch):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidReference):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// safeMessages pairs errors with the message shown to clients. The first
// match wins, so specific errors precede the kinds they wrap.
var safeMessages = []struct {
	err error
	msg string
}{
	{auth.ErrExpiredToken, "Token expired"},
	{auth.ErrInvalidToken, "Invalid token"},
	{auth.ErrTokenNotYetValid, "Invalid token"},
	{auth.ErrMissingToken, "Authorization required"},
	{domain.ErrSubjectNameEmpty, "Subject name cannot be empty"},
	{domain.ErrUnitCodeInvalid, "Unit code must look like 1-1"},
	{domain.ErrReviewNoInvalid, "Review number must be a positive integer"},
	{domain.ErrDoneDateInvalid, "Done date must be a YYYY-MM-DD date"},
	{domain.ErrIDInvalid, "Invalid id"},
	{domain.ErrDirectionInvalid, "Direction must be -1 or 1"},
	{service.ErrReviewUnitMismatch, "Review does not belong to the unit"},
	{store.ErrSubjectNotFound, "Subject not found"},
	{store.ErrUnitNotFound, "Unit not found"},
	{store.ErrReviewNotFound, "Review not found"},
	{store.ErrSubjectNameExists, "A subject with this name already exists"},
	{store.ErrUnitCodeExists, "A unit with this code already exists"},
	{store.ErrReviewNoExists, "This review number is already recorded for the unit"},
	{store.ErrReviewDateExists, "A review is already recorded for the unit on this date"},
	{store.ErrInvalidReference, "Referenced record is missing or still in use"},
	{domain.ErrValidation, "Validation error"},
	{store.ErrNotFound, "Not found"},
	{store.ErrDuplicate, "Already exists"},
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var fe *domain.FormatError
	if errors.As(err, &fe) {
		return "Invalid snapshot: " + strings.TrimPrefix(fe.Error(), domain.ErrFormat.Error()+": ")
	}
	if errors.Is(err, domain.ErrFormat) {
		return "Invalid snapshot"
	}

	for _, m := range safeMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	default:
		return "validation failed"
	}
}

// ErrorKind classifies err for the kind field of error responses.
func ErrorKind(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusBadRequest:
		return shared.KindValidation
	case http.StatusConflict:
		return shared.KindConflict
	case http.StatusNotFound:
		return shared.KindNotFound
	case http.StatusUnprocessableEntity:
		return shared.KindFormat
	case http.StatusUnauthorized:
		return shared.KindAuth
	default:
		return shared.KindInternal
	}
}

// HandleAPIError writes the status, kind and safe message for err. fallback
// replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}

	opts := []shared.ResponseOption{shared.WithKind(ErrorKind(err))}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
