// Package guard реализует слой допуска к защищённым маршрутам.
// Это чистая проекция над срезом сессии: собственного состояния нет,
// решение целиком определяется снимком и набором требуемых возможностей.
//
// Порядок проверок фиксирован: аутентификация → администратор → подписка.
// Поэтому подписчик без прав администратора на админском маршруте
// отправляется на админский fallback, а не на страницу подписки.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/kinoteka/subscription-client/internal/session"
)

// Capability требуемая возможность для допуска к маршруту.
type Capability string

// Набор возможностей, из которых собираются требования маршрутов.
const (
	Authenticated Capability = "authenticated"
	Admin         Capability = "admin"
	Subscribed    Capability = "subscribed"
)

// Action вид решения слоя допуска.
type Action int

const (
	// Wait сессия ещё гидратируется: не показывать ни контент, ни редирект.
	Wait Action = iota
	// Render допуск разрешён.
	Render
	// Redirect допуск запрещён, перенаправить на Target.
	Redirect
)

// Decision решение по одному запросу.
type Decision struct {
	Action Action
	Target string // Адрес перенаправления при Action == Redirect
}

// Requirement требования маршрута: набор возможностей и fallback
// для случая «аутентифицирован, но не администратор».
type Requirement struct {
	Need     []Capability
	Fallback string
}

// Targets адреса перенаправлений, общие для всех маршрутов.
type Targets struct {
	Login     string // Куда отправлять неаутентифицированных
	Subscribe string // Куда отправлять без активной подписки
}

// checkOrder канонический порядок проверок; порядок перечисления
// возможностей в Requirement.Need на решение не влияет.
var checkOrder = []Capability{Authenticated, Admin, Subscribed}

// Evaluate выносит решение по снимку сессии. Чистая функция.
func Evaluate(snap *session.Snapshot, req Requirement, targets Targets) Decision {
	if snap == nil || snap.Hydrating {
		return Decision{Action: Wait}
	}

	need := make(map[Capability]bool, len(req.Need))
	for _, c := range req.Need {
		need[c] = true
	}

	for _, c := range checkOrder {
		if !need[c] {
			continue
		}
		switch c {
		case Authenticated:
			if !snap.Authenticated {
				return Decision{Action: Redirect, Target: targets.Login}
			}
		case Admin:
			if !snap.Authenticated || !snap.Admin {
				return Decision{Action: Redirect, Target: req.Fallback}
			}
		case Subscribed:
			if snap.Authenticated && !snap.Subscribed {
				return Decision{Action: Redirect, Target: targets.Subscribe}
			}
			if !snap.Authenticated {
				return Decision{Action: Redirect, Target: targets.Login}
			}
		}
	}
	return Decision{Action: Render}
}

// SnapshotSource источник текущего снимка сессии.
type SnapshotSource interface {
	Snapshot() *session.Snapshot
}

// Gate адаптер слоя допуска для локального HTTP-сервера.
type Gate struct {
	store   SnapshotSource
	targets Targets
	log     *slog.Logger
}

// NewGate создаёт Gate с общими адресами перенаправлений.
func NewGate(store SnapshotSource, targets Targets, log *slog.Logger) *Gate {
	return &Gate{store: store, targets: targets, log: log}
}

// Middleware возвращает HTTP middleware, применяющий решение Evaluate.
// Пока сессия гидратируется, отвечает 503 с Retry-After,
// чтобы не мигать редиректом поверх ещё не восстановленной сессии.
func (g *Gate) Middleware(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Evaluate(g.store.Snapshot(), req, g.targets)
			switch decision.Action {
			case Wait:
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
			case Redirect:
				g.log.Info("access denied",
					slog.String("path", r.URL.Path),
					slog.String("redirect", decision.Target))
				http.Redirect(w, r, decision.Target, http.StatusFound)
			case Render:
				next.ServeHTTP(w, r)
			}
		})
	}
}
