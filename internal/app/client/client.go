package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/kinoteka/subscription-client/internal/api"
	"github.com/kinoteka/subscription-client/internal/catalog"
	"github.com/kinoteka/subscription-client/internal/config"
	"github.com/kinoteka/subscription-client/internal/metrics"
	"github.com/kinoteka/subscription-client/internal/payment"
	"github.com/kinoteka/subscription-client/internal/session"
	"github.com/kinoteka/subscription-client/internal/storage/vault"

	authservice "github.com/kinoteka/subscription-client/internal/services/auth"
)

// App клиентское приложение: локальный HTTP-сервер, сессия и
// платёжный оркестратор одной установки.
type App struct {
	server       *http.Server
	logger       *slog.Logger
	store        *session.Store
	orchestrator *payment.Orchestrator
}

// New собирает приложение из конфига.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	metrics.InitMetrics()

	v := vault.New(cfg.StateDir)
	backend := api.NewClient(cfg.BaseURL, cfg.TimeoutBackend)

	store := session.New(backend, v, logger)
	authService := authservice.New(backend, v, store, logger)
	catalogService := catalog.New(backend, logger)

	orchestrator := payment.New(backend, store, catalogService, payment.Options{
		GatewayTokenParam: cfg.GatewayTokenParam,
		CancelFlagKey:     cfg.CancelFlagKey,
		CancelFlagValue:   cfg.CancelFlagValue,
		Currency:          cfg.Currency,
		RedirectURL:       cfg.PublicBaseURL + cfg.ReturnPath,
		BackURL:           cfg.PublicBaseURL + cfg.CancelPath,
		ContentPath:       moviesPath,
		ConfirmationDelay: cfg.ConfirmationDelay,
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, store, authService, catalogService, orchestrator, RouteConfig{
		ReturnPath: cfg.ReturnPath,
		CancelPath: cfg.CancelPath,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:       srv,
		logger:       logger,
		store:        store,
		orchestrator: orchestrator,
	}, nil
}

// Run запускает приложение и блокируется до отмены контекста.
// Гидратация сессии идёт параллельно старту сервера: пока она
// не завершилась, слой допуска не отдаёт ни контент, ни редиректы.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if snap := a.store.Restore(ctx); snap != nil {
			a.logger.Info("session hydrated from stored credential",
				slog.String("user_id", snap.UserID),
				slog.Bool("subscribed", snap.Subscribed))
		} else {
			a.logger.Info("no stored session, starting logged out")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.orchestrator.Close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		// отложенный автопереход снимается до остановки сервера,
		// чтобы таймер не сработал по разобранному состоянию
		a.orchestrator.Close()
		return a.server.Shutdown(timeoutCtx)
	}
}
