package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartcram/smartcram-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondValidationError rejects malformed or out-of-range input before any
// pipeline runs.
func RespondValidationError(c *gin.Context, msg string) {
	RespondError(c, http.StatusUnprocessableEntity, "validation_error", errors.New(msg))
}

// RespondServiceError maps service sentinel errors onto HTTP statuses.
// Anything unrecognized becomes a generic 500 with no internal detail.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrEmailTaken):
		RespondError(c, http.StatusBadRequest, "email_taken", err)
	case errors.Is(err, services.ErrWrongPassword):
		RespondError(c, http.StatusBadRequest, "wrong_password", err)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveUser),
		errors.Is(err, services.ErrInvalidToken):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrEmptyImport):
		RespondError(c, http.StatusBadRequest, "invalid_import", err)
	case errors.Is(err, services.ErrAnswerCountMismatch):
		RespondError(c, http.StatusBadRequest, "answer_count_mismatch", err)
	case errors.Is(err, services.ErrGenerationFailed):
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}
}
