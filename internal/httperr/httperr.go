package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// conflictCodes are business codes that describe the current state of a row
// rather than the request itself.
var conflictCodes = map[string]bool{
	"invalid_state":           true,
	"invalid_transition":      true,
	"kennel_occupied":         true,
	"kennel_number_taken":     true,
	"appointment_in_kennel":   true,
	"usage_limit_reached":     true,
	"client_has_active_visit": true,
	"pet_has_active_visit":    true,
	"invitation_exists":       true,
	"email_already_exists":    true,
	"last_owner":              true,
}

// forbiddenCodes are business codes about who is asking.
var forbiddenCodes = map[string]bool{
	"insufficient_role": true,
}

// FromError writes the response matching err's kind.
func FromError(c *gin.Context, err error) {
	var (
		be BusinessError
		nf NotFoundError
	)

	switch {
	case errors.As(err, &nf):
		NotFound(c, nf.Code, "Resource not found.")
	case errors.As(err, &be):
		if forbiddenCodes[be.Code] {
			Forbidden(c, be.Code, "Your role does not allow this operation.")
			return
		}
		if conflictCodes[be.Code] {
			Conflict(c, be.Code, "Operation not allowed in the current state.")
			return
		}
		BadRequest(c, be.Code, "Invalid request.")
	default:
		Internal(c, "internal_error", "Unexpected error.")
	}
}
