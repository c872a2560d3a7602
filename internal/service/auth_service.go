package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yourusername/updrill-api/internal/config"
	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// GoogleUserInfoURL — endpoint профиля пользователя Google
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrOAuthNotConfigured возвращается, если не заданы учетные данные Google
var ErrOAuthNotConfigured = errors.New("google oauth is not configured")

// GoogleUserInfo — ответ userinfo
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// SessionIssuer выдает токен сессии
type SessionIssuer interface {
	GenerateToken(user *entity.User) (string, error)
}

// AuthService выполняет вход через Google OAuth и выдает сессию
type AuthService struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	configured  bool
	users       *UserService
	sessions    SessionIssuer
}

// NewAuthService создает сервис аутентификации
func NewAuthService(cfg config.GoogleOAuthConfig, users *UserService, sessions SessionIssuer) *AuthService {
	return &AuthService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: GoogleUserInfoURL,
		configured:  cfg.Configured(),
		users:       users,
		sessions:    sessions,
	}
}

// Configured сообщает, доступен ли вход через Google
func (s *AuthService) Configured() bool {
	return s.configured
}

// AuthCodeURL возвращает адрес страницы согласия Google
func (s *AuthService) AuthCodeURL(state string) (string, error) {
	if !s.configured {
		return "", ErrOAuthNotConfigured
	}
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// CompleteLogin обменивает code на токен, получает профиль и выдает сессию
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*entity.User, string, error) {
	if !s.configured {
		return nil, "", ErrOAuthNotConfigured
	}
	if code == "" {
		return nil, "", fmt.Errorf("authorization code is empty")
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.FindOrCreateFromProvider(ctx, ProviderProfile{
		Provider:   entity.ProviderGoogle,
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
		Picture:    info.Picture,
	})
	if err != nil {
		return nil, "", err
	}

	session, err := s.sessions.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	return user, session, nil
}

func (s *AuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := s.oauthConfig.Client(reqCtx, token)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo has no email")
	}
	return &info, nil
}
