// Package view содержит обработчики защищённых разделов приложения.
// Сами разделы — проекции состояния сессии; содержимое экранов
// (вёрстка каталога фильмов, админские таблицы) живёт на стороне UI
// и этим клиентом не рендерится.
package view

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/kinoteka/subscription-client/internal/http/response"
	"github.com/kinoteka/subscription-client/internal/session"
)

// SnapshotSource источник текущего снимка сессии.
type SnapshotSource interface {
	Snapshot() *session.Snapshot
}

// Handler отдаёт данные защищённых разделов.
type Handler struct {
	log   *slog.Logger
	store SnapshotSource
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, store SnapshotSource) *Handler {
	return &Handler{log: log, store: store}
}

// Movies раздел загрузки фильмов, доступен подписчикам.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"section":           "movies",
		"subscription_plan": snap.SubscriptionPlan,
		"subscription_ends": snap.SubscriptionEndDate,
	}))
}

// Admin административный раздел.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"section": "admin",
		"user_id": snap.UserID,
	}))
}

// Session текущий снимок сессии для UI.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.store.Snapshot()))
}
