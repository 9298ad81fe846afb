// Package session реализует хранилище сессии клиента — единственный
// источник истины о том, аутентифицирован ли пользователь и активна ли
// его подписка. Учётные данные и профиль выставляются и сбрасываются
// только атомарно: «полузаполненной» сессии не бывает.
//
// Любая ошибка получения профиля трактуется как недействительные
// учётные данные и деградирует к состоянию «не вошёл в систему»,
// никогда — к блокирующей ошибке.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kinoteka/subscription-client/internal/lib/sl"
	"github.com/kinoteka/subscription-client/internal/metrics"
	"github.com/kinoteka/subscription-client/internal/models"
)

// ProfileFetcher описывает вызов бэкенда за профилем владельца токена.
type ProfileFetcher interface {
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// CredentialVault описывает долговременный слот для bearer-учётных данных.
type CredentialVault interface {
	Credential() (string, bool, error)
	SetCredential(token string) error
	ClearCredential() error
}

// Snapshot неизменяемый срез состояния сессии для слоя допуска и UI.
type Snapshot struct {
	Hydrating           bool       // Первичная гидратация ещё не завершилась
	Authenticated       bool       // Учётные данные и профиль установлены
	Admin               bool       // Пользователь — администратор
	Subscribed          bool       // Подписка активна
	SubscriptionPlan    string     // Название тарифного плана
	SubscriptionEndDate *time.Time // Дата окончания подписки
	UserID              string
	FullName            string
	Email               string
}

// Store хранилище сессии. Все операции сериализуются мьютексом;
// счётчик поколений gen отменяет результаты отставших Restore/Refresh:
// успех, пришедший после Clear, состояние не перезаписывает.
type Store struct {
	api   ProfileFetcher
	vault CredentialVault
	log   *slog.Logger

	mu        sync.Mutex
	token     string
	user      *models.Profile
	hydrating bool
	gen       uint64
}

// New создаёт Store. До первого завершившегося Restore сессия
// находится в состоянии гидратации.
func New(api ProfileFetcher, vault CredentialVault, log *slog.Logger) *Store {
	return &Store{
		api:       api,
		vault:     vault,
		log:       log,
		hydrating: true,
	}
}

// Restore пытается гидратировать сессию из сохранённых учётных данных.
// Отсутствие учётных данных или любая ошибка запроса профиля приводят
// к состоянию «не вошёл», а не к ошибке. Повторный вызов при
// неизменном состоянии даёт тот же результат.
func (s *Store) Restore(ctx context.Context) *Snapshot {
	const op = "session.Restore"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	token, found, err := s.vault.Credential()
	if err != nil || !found || token == "" {
		if err != nil {
			log.Error("failed to read stored credential", sl.Err(err))
		}
		s.settleClearedLocked()
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	profile, err := s.api.Profile(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// состояние уже перезаписано более поздней операцией
		log.Debug("stale restore result discarded")
		return s.snapshotLocked()
	}
	if err != nil {
		log.Info("profile fetch failed, settling to logged out", sl.Err(err))
		metrics.SessionRefreshTotal.WithLabelValues("failure").Inc()
		s.clearLocked()
		return nil
	}

	metrics.SessionRefreshTotal.WithLabelValues("success").Inc()
	s.gen++
	s.token = token
	s.user = profile
	s.hydrating = false
	log.Info("session restored", slog.String("user_id", profile.ID), sl.Secret("token", token))
	return s.snapshotLocked()
}

// Establish атомарно устанавливает учётные данные и профиль
// и сохраняет учётные данные для будущего Restore.
func (s *Store) Establish(token string, profile *models.Profile) error {
	const op = "session.Establish"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.token = token
	s.user = profile
	s.hydrating = false

	if err := s.vault.SetCredential(token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("session established",
		slog.String("op", op),
		slog.String("user_id", profile.ID),
		sl.Secret("token", token))
	return nil
}

// Clear атомарно сбрасывает сессию и стирает сохранённые учётные данные.
// Идемпотентна.
func (s *Store) Clear() {
	const op = "session.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.log.Info("session cleared", slog.String("op", op))
}

// Refresh повторно запрашивает профиль по текущим учётным данным
// и заменяет поля пользователя; при ошибке ведёт себя как Clear.
// Именно через Refresh успешный платёж становится виден без повторного входа.
func (s *Store) Refresh(ctx context.Context) error {
	const op = "session.Refresh"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	token := s.token
	gen := s.gen
	s.mu.Unlock()

	if token == "" {
		s.Clear()
		return fmt.Errorf("%s: no active session", op)
	}

	profile, err := s.api.Profile(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		log.Debug("stale refresh result discarded")
		return nil
	}
	if err != nil {
		log.Info("profile refresh failed, settling to logged out", sl.Err(err))
		metrics.SessionRefreshTotal.WithLabelValues("failure").Inc()
		s.clearLocked()
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.SessionRefreshTotal.WithLabelValues("success").Inc()
	s.gen++
	s.user = profile
	log.Info("session refreshed",
		slog.String("user_id", profile.ID),
		slog.Bool("subscribed", profile.IsSubscribed))
	return nil
}

// Snapshot возвращает текущий срез состояния сессии.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token возвращает текущие bearer-учётные данные (пустая строка,
// если сессии нет).
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) clearLocked() {
	s.gen++
	s.token = ""
	s.user = nil
	s.hydrating = false
	if err := s.vault.ClearCredential(); err != nil {
		s.log.Error("failed to erase stored credential", sl.Err(err))
	}
}

// settleClearedLocked переводит сессию в «не вошёл» без инкремента
// поколения: сбрасывать нечего, важно лишь завершить гидратацию.
func (s *Store) settleClearedLocked() {
	s.token = ""
	s.user = nil
	s.hydrating = false
}

func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Hydrating:     s.hydrating,
		Authenticated: s.token != "" && s.user != nil,
	}
	if s.user != nil {
		snap.Admin = s.user.IsAdmin
		snap.Subscribed = s.user.IsSubscribed
		snap.SubscriptionPlan = s.user.SubscriptionPlan
		snap.SubscriptionEndDate = s.user.SubscriptionEndDate
		snap.UserID = s.user.ID
		snap.FullName = s.user.FullName
		snap.Email = s.user.Email
	}
	return snap
}
