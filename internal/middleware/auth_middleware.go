package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/updrill-api/internal/pkg/response"
	"github.com/yourusername/updrill-api/pkg/auth"
	"github.com/yourusername/updrill-api/pkg/auth/manager"
)

// Ключи контекста Gin
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	tokenManager *manager.TokenManager
}

// NewAuthMiddlewareWithManager создает новый middleware с использованием TokenManager
func NewAuthMiddlewareWithManager(jwtService *auth.JWTService, tokenManager *manager.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		tokenManager: tokenManager,
	}
}

// RequireAuth пропускает только запросы с действительной сессией
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		c.Next()
	}
}

// OptionalAuth заполняет пользователя в контексте, если сессия есть, но не требует ее
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c)
		c.Next()
	}
}

// authenticate проверяет токены по порядку: cookie сессии, затем Authorization: Bearer.
// Недействительная cookie не мешает аутентификации по заголовку.
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	for _, token := range m.candidateTokens(c) {
		claims, err := m.jwtService.ParseToken(c, token)
		if err != nil {
			continue
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		return true
	}
	return false
}

func (m *AuthMiddleware) candidateTokens(c *gin.Context) []string {
	tokens := make([]string, 0, 2)
	if m.tokenManager != nil {
		if token, err := m.tokenManager.GetSessionTokenFromCookie(c.Request); err == nil {
			tokens = append(tokens, token)
		}
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		if token := strings.TrimSpace(parts[1]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// UserID возвращает ID аутентифицированного пользователя из контекста
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
