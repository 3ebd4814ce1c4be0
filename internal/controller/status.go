package controller

import (
	"errors"
	"net/http"

	"github.com/lshigami/Margay/internal/service"
)

// StatusFor maps the service error taxonomy to HTTP status codes. Anything
// outside the taxonomy is an unexpected failure and surfaces as a 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCandidateNotFound),
		errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrLoginExists),
		errors.Is(err, service.ErrJobNameExists),
		errors.Is(err, service.ErrQuestionInUse),
		errors.Is(err, service.ErrCandidateHasAttempts),
		errors.Is(err, service.ErrJobInUse),
		errors.Is(err, service.ErrAttemptFinished):
		return http.StatusConflict
	case errors.Is(err, service.ErrCandidateInactive),
		errors.Is(err, service.ErrNoQuestionsForProfession),
		errors.Is(err, service.ErrAttemptLimitExceeded),
		errors.Is(err, service.ErrExactlyOneCorrectOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
