// Package checkout реализует HTTP-обработчики чекаута:
// отправку подтверждённой покупки оркестратору и открытие формы.
//
// Повторное открытие формы возвращает машину оркестратора в исходное
// состояние — это локальный эквивалент свежей загрузки страницы
// после ухода на шлюз и возврата вручную.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kinoteka/subscription-client/internal/api"
	"github.com/kinoteka/subscription-client/internal/http/response"
	"github.com/kinoteka/subscription-client/internal/lib/sl"
	"github.com/kinoteka/subscription-client/internal/models"
	"github.com/kinoteka/subscription-client/internal/payment"
)

// Orchestrator операции платёжного оркестратора, нужные чекауту.
type Orchestrator interface {
	Checkout(ctx context.Context, req models.CheckoutRequest) (*payment.Initiation, error)
	Reset()
	State() payment.State
	Transaction() *models.PaymentTransaction
}

// Handler обрабатывает запросы чекаута.
type Handler struct {
	log          *slog.Logger
	orchestrator Orchestrator
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, orchestrator Orchestrator) *Handler {
	return &Handler{log: log, orchestrator: orchestrator}
}

// Submit обрабатывает подтверждение покупки. Валидация выполняется
// оркестратором до сети; ответ содержит адрес шлюза для полного
// редиректа браузера.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	init, err := h.orchestrator.Checkout(r.Context(), req)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			log.Error("checkout validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
		case errors.Is(err, payment.ErrCheckoutInProgress):
			log.Info("duplicate checkout submit suppressed")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("checkout already in progress"))
		default:
			log.Error("payment initiation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(api.UserMessage(err)))
		}
		return
	}

	log.Info("checkout accepted, redirecting to gateway",
		slog.String("plan_id", init.Transaction.PlanID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"redirect_url": init.RedirectURL,
		"transaction":  init.Transaction,
	}))
}

// View открывает форму чекаута и возвращает текущее состояние машины.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Reset()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"state":       h.orchestrator.State(),
		"transaction": h.orchestrator.Transaction(),
	}))
}
