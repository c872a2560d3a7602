package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/updrill-api/internal/handler/dto"
	"github.com/yourusername/updrill-api/internal/middleware"
	"github.com/yourusername/updrill-api/internal/pkg/response"
	"github.com/yourusername/updrill-api/internal/service"
	"github.com/yourusername/updrill-api/pkg/auth/manager"
)

// AuthHandler обрабатывает вход через Google и состояние сессии
type AuthHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	tokenManager *manager.TokenManager
	frontendURL  string
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	tokenManager *manager.TokenManager,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		tokenManager: tokenManager,
		frontendURL:  frontendURL,
	}
}

const oauthNotConfiguredMessage = "Google OAuth is not properly configured. Please set up Google OAuth credentials in your environment variables."

// GoogleLogin перенаправляет на страницу согласия Google
// GET /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if !h.authService.Configured() {
		response.Abort(c, http.StatusInternalServerError, response.CodeOAuthNotConfigured, oauthNotConfiguredMessage)
		return
	}

	state := h.tokenManager.IssueState(c.Writer)
	authURL, err := h.authService.AuthCodeURL(state)
	if err != nil {
		response.Abort(c, http.StatusInternalServerError, response.CodeOAuthNotConfigured, oauthNotConfiguredMessage)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback завершает вход, выставляет cookie сессии и возвращает на фронтенд
// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		log.Printf("[AuthHandler] Google вернул ошибку: %s", providerErr)
		h.redirectLoginFailure(c, "access_denied")
		return
	}

	if err := h.tokenManager.VerifyState(c.Writer, c.Request, c.Query("state")); err != nil {
		log.Printf("[AuthHandler] Неверный OAuth state с IP %s: %v", c.ClientIP(), err)
		h.redirectLoginFailure(c, "invalid_state")
		return
	}

	user, token, err := h.authService.CompleteLogin(c.Request.Context(), c.Query("code"))
	if err != nil {
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			response.Abort(c, http.StatusInternalServerError, response.CodeOAuthNotConfigured, oauthNotConfiguredMessage)
			return
		}
		log.Printf("[AuthHandler] Ошибка завершения входа через Google: %v", err)
		h.redirectLoginFailure(c, "oauth_failed")
		return
	}

	h.tokenManager.SetSessionCookie(c.Writer, token)
	log.Printf("[AuthHandler] Пользователь %s вошел через Google", user.ID)
	c.Redirect(http.StatusFound, h.frontendURL)
}

// Logout удаляет cookie сессии
// GET /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.tokenManager.ClearSessionCookie(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Status сообщает, аутентифицирован ли запрос
// GET /auth/status
func (h *AuthHandler) Status(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		// Токен действителен, но пользователь недоступен: считаем сессию недействительной
		log.Printf("[AuthHandler] Не удалось загрузить пользователя %s для статуса: %v", userID, err)
		c.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: true, User: dto.NewUserSummary(user)})
}

// Config сообщает, настроен ли вход через Google
// GET /auth/config
func (h *AuthHandler) Config(c *gin.Context) {
	configured := h.authService.Configured()
	message := "OAuth is not configured"
	if configured {
		message = "OAuth is properly configured"
	}
	c.JSON(http.StatusOK, dto.AuthConfigResponse{OAuthConfigured: configured, Message: message})
}

func (h *AuthHandler) redirectLoginFailure(c *gin.Context, reason string) {
	target := h.frontendURL + "/login?error=" + url.QueryEscape(reason)
	c.Redirect(http.StatusFound, target)
}
