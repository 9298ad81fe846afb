package guard

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinoteka/subscription-client/internal/session"
)

var testTargets = Targets{
	Login:     "/login",
	Subscribe: "/subscription",
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		snap       *session.Snapshot
		req        Requirement
		wantAction Action
		wantTarget string
	}{
		{
			name:       "hydrating renders nothing",
			snap:       &session.Snapshot{Hydrating: true},
			req:        Requirement{Need: []Capability{Authenticated}},
			wantAction: Wait,
		},
		{
			name:       "nil snapshot treated as hydrating",
			snap:       nil,
			req:        Requirement{Need: []Capability{Authenticated}},
			wantAction: Wait,
		},
		{
			name:       "unauthenticated user redirected to login",
			snap:       &session.Snapshot{},
			req:        Requirement{Need: []Capability{Authenticated}},
			wantAction: Redirect,
			wantTarget: "/login",
		},
		{
			name:       "authenticated user allowed",
			snap:       &session.Snapshot{Authenticated: true},
			req:        Requirement{Need: []Capability{Authenticated}},
			wantAction: Render,
		},
		{
			name: "non-admin subscriber bounced to admin fallback, not upsell",
			snap: &session.Snapshot{Authenticated: true, Subscribed: true},
			req: Requirement{
				Need:     []Capability{Authenticated, Admin, Subscribed},
				Fallback: "/movies",
			},
			wantAction: Redirect,
			wantTarget: "/movies",
		},
		{
			name:       "authenticated non-subscriber redirected to subscription",
			snap:       &session.Snapshot{Authenticated: true},
			req:        Requirement{Need: []Capability{Authenticated, Subscribed}},
			wantAction: Redirect,
			wantTarget: "/subscription",
		},
		{
			name:       "admin with subscription allowed on admin route",
			snap:       &session.Snapshot{Authenticated: true, Admin: true},
			req:        Requirement{Need: []Capability{Authenticated, Admin}, Fallback: "/movies"},
			wantAction: Render,
		},
		{
			name:       "unauthenticated user on admin-only route goes to fallback",
			snap:       &session.Snapshot{},
			req:        Requirement{Need: []Capability{Admin}, Fallback: "/movies"},
			wantAction: Redirect,
			wantTarget: "/movies",
		},
		{
			name:       "subscribed admin passes subscription gate",
			snap:       &session.Snapshot{Authenticated: true, Admin: true, Subscribed: true},
			req:        Requirement{Need: []Capability{Authenticated, Subscribed}},
			wantAction: Render,
		},
		{
			name: "check order does not depend on Need order",
			snap: &session.Snapshot{Authenticated: true},
			req: Requirement{
				Need:     []Capability{Subscribed, Admin, Authenticated},
				Fallback: "/movies",
			},
			wantAction: Redirect,
			wantTarget: "/movies",
		},
		{
			name:       "unauthenticated with reversed Need still goes to login",
			snap:       &session.Snapshot{},
			req:        Requirement{Need: []Capability{Subscribed, Authenticated}},
			wantAction: Redirect,
			wantTarget: "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.snap, tt.req, testTargets)
			assert.Equal(t, tt.wantAction, got.Action)
			assert.Equal(t, tt.wantTarget, got.Target)
		})
	}
}

type snapshotSourceStub struct {
	snap *session.Snapshot
}

func (s *snapshotSourceStub) Snapshot() *session.Snapshot { return s.snap }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestGate_Middleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected"))
	})

	t.Run("redirects unauthenticated to login", func(t *testing.T) {
		gate := NewGate(&snapshotSourceStub{snap: &session.Snapshot{}}, testTargets, newNoopLogger())
		handler := gate.Middleware(Requirement{Need: []Capability{Authenticated}})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("serves content when allowed", func(t *testing.T) {
		gate := NewGate(&snapshotSourceStub{snap: &session.Snapshot{Authenticated: true, Subscribed: true}},
			testTargets, newNoopLogger())
		handler := gate.Middleware(Requirement{Need: []Capability{Authenticated, Subscribed}})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "protected", rec.Body.String())
	})

	t.Run("waits while hydrating", func(t *testing.T) {
		gate := NewGate(&snapshotSourceStub{snap: &session.Snapshot{Hydrating: true}}, testTargets, newNoopLogger())
		handler := gate.Middleware(Requirement{Need: []Capability{Authenticated}})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "protected")
	})
}
