package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinoteka/subscription-client/internal/api"
	"github.com/kinoteka/subscription-client/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, email, password, fullName string) (*models.Profile, error) {
	args := m.Called(ctx, email, password, fullName)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockProfile    *models.Profile
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name: "valid registration",
			requestBody: Request{
				Email:    "new@example.com",
				Password: "password123",
				FullName: "New User",
			},
			mockProfile: &models.Profile{
				ID:       "u2",
				Email:    "new@example.com",
				FullName: "New User",
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing full name",
			requestBody:    Request{Email: "new@example.com", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field FullName is a required field",
		},
		{
			name:           "validation error - malformed email",
			requestBody:    Request{Email: "not-an-email", Password: "password123", FullName: "New User"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Email must be a valid email",
		},
		{
			name: "backend rejects duplicate email",
			requestBody: Request{
				Email:    "new@example.com",
				Password: "password123",
				FullName: "New User",
			},
			mockErr:        &api.Error{StatusCode: 422, Message: "email already registered"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "email already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			if tt.mockProfile != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Register", mock.Anything, req.Email, req.Password, req.FullName).
					Return(tt.mockProfile, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), authMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			if tt.mockProfile != nil {
				data := resp["data"].(map[string]any)
				assert.Equal(t, "u2", data["user_id"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
