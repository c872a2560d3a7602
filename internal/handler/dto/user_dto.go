package dto

import (
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// UserSummary — краткие данные пользователя для /auth/status
type UserSummary struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// UserProfileResponse — ответ GET /api/me
type UserProfileResponse struct {
	UserSummary
	Providers entity.Providers `json:"providers"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewUserSummary создает краткое представление пользователя
func NewUserSummary(u *entity.User) *UserSummary {
	return &UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Picture}
}

// NewUserProfileResponse создает профиль пользователя
func NewUserProfileResponse(u *entity.User) UserProfileResponse {
	providers := u.Providers
	if providers == nil {
		providers = entity.Providers{}
	}
	return UserProfileResponse{
		UserSummary: *NewUserSummary(u),
		Providers:   providers,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthStatusResponse — ответ GET /auth/status
type AuthStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *UserSummary `json:"user"`
}

// AuthConfigResponse — ответ GET /auth/config
type AuthConfigResponse struct {
	OAuthConfigured bool   `json:"oauthConfigured"`
	Message         string `json:"message"`
}
