// Package list реализует HTTP-обработчик каталога тарифных планов.
// Каталог публичный: в нём только активные планы, отсортированные
// по порядку показа.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kinoteka/subscription-client/internal/http/response"
	"github.com/kinoteka/subscription-client/internal/lib/sl"
	"github.com/kinoteka/subscription-client/internal/models"
)

// Service описывает интерфейс каталога планов.
type Service interface {
	ActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error)
}

// Handler обрабатывает запросы списка планов.
type Handler struct {
	log     *slog.Logger
	catalog Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, catalog Service) *Handler {
	return &Handler{log: log, catalog: catalog}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.catalog.ActivePlans(r.Context())
	if err != nil {
		// некритичное чтение: деградирует к ошибке в ответе, не к падению
		log.Error("failed to load plans", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load subscription plans"))
		return
	}

	log.Info("plans loaded", slog.Int("count", len(plans)))
	render.JSON(w, r, response.StatusOKWithData(plans))
}
