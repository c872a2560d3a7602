package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/updrill-api/internal/handler/dto"
	"github.com/yourusername/updrill-api/internal/middleware"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
	"github.com/yourusername/updrill-api/internal/pkg/response"
	"github.com/yourusername/updrill-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe возвращает профиль текущего пользователя
// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		// Пользователь из токена больше не существует
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			err = apperrors.Unauthorized()
		}
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserProfileResponse(user))
}
