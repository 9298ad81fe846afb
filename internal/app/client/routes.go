// Package client собирает клиентское приложение: маршруты локального
// сервера, слой допуска и платёжный круг.
package client

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/kinoteka/subscription-client/internal/guard"
	"github.com/kinoteka/subscription-client/internal/http/handlers/auth/login"
	"github.com/kinoteka/subscription-client/internal/http/handlers/auth/logout"
	"github.com/kinoteka/subscription-client/internal/http/handlers/auth/register"
	"github.com/kinoteka/subscription-client/internal/http/handlers/catalog/list"
	"github.com/kinoteka/subscription-client/internal/http/handlers/payment/checkout"
	"github.com/kinoteka/subscription-client/internal/http/handlers/payment/gatewayreturn"
	"github.com/kinoteka/subscription-client/internal/http/handlers/view"
	"github.com/kinoteka/subscription-client/internal/http/middlewarectx"
	"github.com/kinoteka/subscription-client/internal/payment"
	"github.com/kinoteka/subscription-client/internal/session"

	authservice "github.com/kinoteka/subscription-client/internal/services/auth"
	catalogservice "github.com/kinoteka/subscription-client/internal/catalog"
)

// Адреса перенаправлений слоя допуска.
const (
	loginPath     = "/login"
	subscribePath = "/subscription"
	moviesPath    = "/movies"
	adminPath     = "/admin"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	store *session.Store,
	authService *authservice.AuthService,
	catalogService *catalogservice.Service,
	orchestrator *payment.Orchestrator,
	cfg RouteConfig,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	gate := guard.NewGate(store, guard.Targets{
		Login:     loginPath,
		Subscribe: subscribePath,
	}, logger)

	viewHandler := view.New(logger, store)
	checkoutHandler := checkout.New(logger, orchestrator)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/logout", logout.New(logger, authService).ServeHTTP)
		r.Get("/plans", list.New(logger, catalogService).ServeHTTP)
		r.Get("/session", viewHandler.Session)

		// Чекаут доступен только аутентифицированным
		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware(guard.Requirement{
				Need: []guard.Capability{guard.Authenticated},
			}))
			r.Get("/checkout", checkoutHandler.View)
			r.With(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(1, 3))).
				Post("/checkout", checkoutHandler.Submit)
		})
	})

	// Обратные редиректы платёжного шлюза — без допуска: на них
	// браузер приходит извне, намерение восстанавливается из query
	returnHandler := gatewayreturn.New(logger, orchestrator)
	r.Get(cfg.ReturnPath, returnHandler.ServeHTTP)
	r.Get(cfg.CancelPath, returnHandler.ServeHTTP)

	// Страница подписки открыта: на неё же ведёт upsell-редирект
	r.Get(subscribePath, list.New(logger, catalogService).ServeHTTP)

	// Защищённые разделы
	r.With(gate.Middleware(guard.Requirement{
		Need: []guard.Capability{guard.Authenticated, guard.Subscribed},
	})).Get(moviesPath, viewHandler.Movies)

	r.With(gate.Middleware(guard.Requirement{
		Need:     []guard.Capability{guard.Authenticated, guard.Admin},
		Fallback: moviesPath,
	})).Get(adminPath, viewHandler.Admin)

	r.Handle("/metrics", promhttp.Handler())
}

// RouteConfig пути обратных редиректов шлюза.
type RouteConfig struct {
	ReturnPath string
	CancelPath string
}
