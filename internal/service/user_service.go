package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// ProviderProfile — профиль пользователя, полученный от внешнего провайдера
type ProviderProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Picture    string
}

// UserService управляет пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, apperrors.Unauthorized()
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

// FindOrCreateFromProvider ищет пользователя по email и привязывает провайдера.
// Если пользователя нет, он создается. Гонка двух одновременных входов
// разрешается уникальным индексом по email: проигравший перечитывает запись.
func (s *UserService) FindOrCreateFromProvider(ctx context.Context, p ProviderProfile) (*entity.User, error) {
	email := entity.NormalizeEmail(p.Email)
	if email == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "email", Message: "Provider did not return an email"})
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.linkProvider(ctx, user, p)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, apperrors.Internal("failed to load user", err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &entity.User{
		Email:     email,
		Name:      name,
		Picture:   p.Picture,
		Providers: entity.Providers{{Provider: p.Provider, ProviderID: p.ProviderID}},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			existing, getErr := s.userRepo.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, apperrors.Internal("failed to load user after conflict", getErr)
			}
			return s.linkProvider(ctx, existing, p)
		}
		log.Printf("[UserService] Ошибка создания пользователя %s: %v", email, err)
		return nil, apperrors.Internal("failed to create user", err)
	}

	log.Printf("[UserService] Создан пользователь %s (%s) через %s", user.ID, email, p.Provider)
	return user, nil
}

func (s *UserService) linkProvider(ctx context.Context, user *entity.User, p ProviderProfile) (*entity.User, error) {
	changed := user.AddProvider(p.Provider, p.ProviderID)
	if p.Picture != "" && user.Picture == "" {
		user.Picture = p.Picture
		changed = true
	}
	if !changed {
		return user, nil
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Printf("[UserService] Ошибка привязки провайдера %s к пользователю %s: %v", p.Provider, user.ID, err)
		return nil, apperrors.Internal("failed to link provider", err)
	}
	log.Printf("[UserService] Провайдер %s привязан к пользователю %s", p.Provider, user.ID)
	return user, nil
}
