package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
	"github.com/yourusername/updrill-api/internal/pkg/response"
)

// ExtractUUIDParam создает middleware для извлечения и валидации UUID-параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractUUIDParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := uuid.Parse(raw)
		if err != nil {
			abortInvalidParam(c, paramName)
			return
		}
		c.Set(contextKey, id.String())
		c.Next()
	}
}

// ExtractSlugParam проверяет, что параметр URL является slug (ID дрилла)
func ExtractSlugParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		if len(raw) > 64 || !slug.IsSlug(raw) {
			abortInvalidParam(c, paramName)
			return
		}
		c.Set(contextKey, raw)
		c.Next()
	}
}

func abortInvalidParam(c *gin.Context, paramName string) {
	response.Abort(c, http.StatusBadRequest, apperrors.KindValidation.String(), "Validation failed",
		apperrors.FieldError{Field: paramName, Message: fmt.Sprintf("Invalid %s", paramName)})
}
