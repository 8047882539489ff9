package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"
	"github.com/Askiater/speak-to-me/internal/postgres"
	"github.com/Askiater/speak-to-me/internal/security"
)

type AuthService struct {
	users  *postgres.UserRepository
	signer *security.TokenSigner
}

func NewAuthService(users *postgres.UserRepository, signer *security.TokenSigner) *AuthService {
	return &AuthService{users: users, signer: signer}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.signer.TTL()
}

// Login проверяет пару username/password и выпускает токен.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := security.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.signer.Sign(*user, time.Now())
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return user, token, nil
}

// Authenticate строго валидирует токен (HTTP-путь).
func (s *AuthService) Authenticate(token string) (domain.Identity, error) {
	claims, err := s.signer.ParseAndValidate(token)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	uid := claims.UserID

	return domain.Identity{
		UserID:   &uid,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	}, nil
}

// ResolveIdentity — мягкий резолв для сигналинга: любой невалидный или
// отсутствующий credential деградирует до гостя, подключение не отклоняется.
func (s *AuthService) ResolveIdentity(token string) domain.Identity {
	if strings.TrimSpace(token) == "" {
		return domain.Guest()
	}
	id, err := s.Authenticate(token)
	if err != nil {
		return domain.Guest()
	}
	return id
}

func (s *AuthService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, username, hash, isAdmin)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) UpdateUser(ctx context.Context, id int64, username, password string) error {
	var hash string
	if password != "" {
		var err error
		hash, err = security.HashPassword(password)
		if err != nil {
			return err
		}
	}
	return s.users.Update(ctx, id, username, hash)
}

func (s *AuthService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return domain.ErrSelfDelete
	}
	return s.users.Delete(ctx, id)
}

// EnsureAdmin создаёт административный аккаунт при первом старте.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	if _, err := s.CreateUser(ctx, username, password, true); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
