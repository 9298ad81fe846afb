// Package middlewarectx содержит HTTP middleware локального сервера:
// ограничение частоты отправки чекаута и сбор метрик запросов.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/kinoteka/subscription-client/internal/http/response"
)

// RateLimitMiddleware ограничивает частоту запросов к маршруту.
// Вешается на отправку чекаута как второй рубеж защиты от двойного
// списания; первый — защёлка оркестратора.
func RateLimitMiddleware(log *slog.Logger, limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests", slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
