// Package response формирует единый JSON-конверт ошибок API
package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// Коды ошибок, не входящие в apperrors.Kind
const (
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeOAuthNotConfigured = "OAUTH_NOT_CONFIGURED"
)

// ErrorBody — тело ошибки
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// Envelope — конверт ошибки {"error": {...}}
type Envelope struct {
	Error ErrorBody `json:"error"`
}

// Abort прерывает обработку запроса и пишет конверт ошибки
func Abort(c *gin.Context, status int, code, message string, details ...apperrors.FieldError) {
	c.AbortWithStatusJSON(status, Envelope{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// Error переводит ошибку приложения в HTTP-ответ.
// Каждый apperrors.Kind обрабатывается явно; внутренние ошибки логируются,
// а клиенту отдается общее сообщение.
func Error(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("unexpected error", err)
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		Abort(c, http.StatusBadRequest, appErr.Kind.String(), appErr.Message, appErr.Fields...)
	case apperrors.KindNotFound:
		Abort(c, http.StatusNotFound, appErr.Kind.String(), appErr.Message)
	case apperrors.KindForbidden:
		Abort(c, http.StatusForbidden, appErr.Kind.String(), appErr.Message)
	case apperrors.KindUnauthorized:
		Abort(c, http.StatusUnauthorized, appErr.Kind.String(), appErr.Message)
	case apperrors.KindInternal:
		log.Printf("[API] Внутренняя ошибка %s %s (user=%v): %v",
			c.Request.Method, c.Request.URL.Path, c.Value("user_id"), err)
		Abort(c, http.StatusInternalServerError, appErr.Kind.String(), "Internal server error")
	default:
		log.Printf("[API] Неизвестный вид ошибки %d: %v", appErr.Kind, err)
		Abort(c, http.StatusInternalServerError, apperrors.KindInternal.String(), "Internal server error")
	}
}
