package error

import (
	"errors"
	"net/http"

	"booking-service/domain"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func ReturnJSON(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func ReturnJSONError(c *gin.Context, errorMessage string, statusCode int) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Errors:  []string{errorMessage},
	})
}

// ReturnDomainError maps the error taxonomy onto HTTP statuses.
func ReturnDomainError(c *gin.Context, err error) {
	var (
		validationErr domain.ValidationError
		conflictErr   domain.ConflictError
		transitionErr domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		ReturnJSONError(c, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &conflictErr):
		ReturnJSONError(c, conflictErr.Message, http.StatusConflict)
	case errors.As(err, &transitionErr):
		ReturnJSONError(c, transitionErr.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAvailabilityNotFound),
		errors.Is(err, domain.ErrReservationNotFound):
		ReturnJSONError(c, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAvailabilityExists):
		ReturnJSONError(c, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInsufficientInventory):
		ReturnJSONError(c, err.Error(), http.StatusConflict)
	default:
		ReturnJSONError(c, err.Error(), http.StatusInternalServerError)
	}
}
