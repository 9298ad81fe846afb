// Package gatewayreturn реализует HTTP-обработчик обратных редиректов
// платёжного шлюза. На эти маршруты шлюз возвращает браузер после
// оплаты или отмены; намерение восстанавливается исключительно
// из query-параметров запроса — к моменту возврата исходное
// состояние процесса могло не сохраниться.
package gatewayreturn

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kinoteka/subscription-client/internal/http/response"
	"github.com/kinoteka/subscription-client/internal/payment"
)

// Orchestrator операция разбора возврата со шлюза.
type Orchestrator interface {
	HandleReturn(ctx context.Context, query url.Values) *payment.ReturnResult
}

// Handler обрабатывает возвраты со шлюза.
type Handler struct {
	log          *slog.Logger
	orchestrator Orchestrator
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, orchestrator Orchestrator) *Handler {
	return &Handler{log: log, orchestrator: orchestrator}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.gatewayreturn"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res := h.orchestrator.HandleReturn(r.Context(), r.URL.Query())
	log.Info("gateway return processed", slog.String("outcome", string(res.Outcome)))

	// clean_query возвращается всегда: UI обязан заменить адресную
	// строку, чтобы повторный рендер не запускал сверку заново
	switch res.Outcome {
	case payment.OutcomeSuccessful:
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"outcome":                res.Outcome,
			"message":                res.Message,
			"transaction":            res.Transaction,
			"redirect_to":            res.RedirectTo,
			"redirect_after_seconds": int(res.RedirectAfter.Seconds()),
			"clean_query":            res.CleanQuery.Encode(),
		}))
	case payment.OutcomeFailed:
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  res.Message,
			Data: map[string]any{
				"outcome":     res.Outcome,
				"clean_query": res.CleanQuery.Encode(),
			},
		})
	case payment.OutcomeCancelled:
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"outcome":     res.Outcome,
			"message":     res.Message,
			"clean_query": res.CleanQuery.Encode(),
		}))
	default:
		// none или duplicate: сверять нечего, действий не требуется
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"outcome":     res.Outcome,
			"clean_query": res.CleanQuery.Encode(),
		}))
	}
}
