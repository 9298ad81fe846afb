// Package auth содержит бизнес-логику входа, регистрации и выхода:
// вызов бэкенда, подстановка идентификатора установки и атомарное
// установление либо сброс сессии.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kinoteka/subscription-client/internal/api"
	"github.com/kinoteka/subscription-client/internal/models"
)

// BackendClient вызовы бэкенда аутентификации.
type BackendClient interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
}

// DeviceVault источник стабильного идентификатора установки.
type DeviceVault interface {
	DeviceID() (string, error)
}

// Sessions операции хранилища сессии, нужные аутентификации.
type Sessions interface {
	Establish(token string, profile *models.Profile) error
	Clear()
}

// AuthService сервис аутентификации клиента.
type AuthService struct {
	api      BackendClient
	vault    DeviceVault
	sessions Sessions
	log      *slog.Logger
}

// New создает новый экземпляр AuthService.
func New(api BackendClient, vault DeviceVault, sessions Sessions, log *slog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		vault:    vault,
		sessions: sessions,
		log:      log,
	}
}

// Login выполняет вход и устанавливает сессию.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	const op = "auth.Login"

	deviceID, err := s.vault.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{
		Email:    email,
		Password: password,
		DeviceID: deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Establish(resp.Token, &resp.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user logged in", slog.String("op", op), slog.String("user_id", resp.User.ID))
	return &resp.User, nil
}

// Register регистрирует пользователя и сразу устанавливает сессию.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	const op = "auth.Register"

	deviceID, err := s.vault.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.api.Register(ctx, api.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		DeviceID: deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Establish(resp.Token, &resp.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout сбрасывает сессию. Идемпотентен.
func (s *AuthService) Logout() {
	s.sessions.Clear()
}
