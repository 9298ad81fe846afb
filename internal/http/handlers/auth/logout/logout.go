// Package logout реализует HTTP-обработчик выхода из системы.
// Выход сбрасывает сессию и стирает сохранённые учётные данные; операция
// идемпотентна — повторный вызов без сессии также отвечает успехом.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kinoteka/subscription-client/internal/http/response"
)

// Service описывает операцию выхода.
type Service interface {
	Logout()
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.auth.Logout()
	h.log.Info("user logged out",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
