package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/gin-gonic/gin"
)

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

func SendSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, CreateSuccessResponse(data))
}

func SendMessage(c *gin.Context, status int, message string) {
	c.JSON(status, CreateSuccessResponse(gin.H{"message": message}))
}

func SendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, CreateErrorResponse(code, message))
}

// SendServiceError writes the response for an error returned below the
// handler layer. Unclassified errors are reported as a generic 500.
func SendServiceError(c *gin.Context, err error) {
	status := StatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	SendError(c, status, ErrorCode(err), message)
}

// StatusFromError maps the error kinds of the models package onto HTTP
// statuses. A conflict is a client error like any other bad request.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{models.ErrMissingToken, "MISSING_TOKEN"},
	{models.ErrTokenExpired, "TOKEN_EXPIRED"},
	{models.ErrTokenInvalid, "INVALID_TOKEN"},
	{models.ErrSessionNotFound, "SESSION_EXPIRED"},
	{models.ErrBadCredentials, "INVALID_CREDENTIALS"},
	{models.ErrAccountDisabled, "ACCOUNT_DISABLED"},
	{models.ErrInsufficientRole, "INSUFFICIENT_ROLE"},
	{models.ErrInsufficientPerm, "INSUFFICIENT_PERMISSION"},
	{models.ErrCaptchaExpired, "CAPTCHA_EXPIRED"},
	{models.ErrCaptchaMismatch, "CAPTCHA_INVALID"},
	{models.ErrEmailTaken, "EMAIL_TAKEN"},
	{models.ErrPermTaken, "PERMISSION_TAKEN"},
	{models.ErrMenuCycle, "MENU_CYCLE"},
	{models.ErrUnauthenticated, "UNAUTHENTICATED"},
	{models.ErrForbidden, "FORBIDDEN"},
	{models.ErrNotFound, "NOT_FOUND"},
	{models.ErrConflict, "CONFLICT"},
	{models.ErrBadRequest, "BAD_REQUEST"},
}

// ErrorCode returns the most specific machine-readable code for err.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL_ERROR"
}
