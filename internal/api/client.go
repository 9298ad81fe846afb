// Package api реализует типизированный клиент REST-бэкенда платформы.
// Каждой конечной точке соответствует метод с явными структурами
// запроса и ответа; нетипизированные payload'ы за границу пакета не выходят.
// Ошибки бэкенда несут человекочитаемое сообщение из тела ответа,
// при его отсутствии — общий текст.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kinoteka/subscription-client/internal/metrics"
	"github.com/kinoteka/subscription-client/internal/models"
)

// ErrUnauthorized возвращается, когда бэкенд отверг bearer-токен.
var ErrUnauthorized = errors.New("unauthorized")

// Error ошибка бэкенда с HTTP-статусом и сообщением из тела ответа.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// UserMessage возвращает человекочитаемое сообщение для показа пользователю.
// Если бэкенд сообщения не прислал, используется общий текст.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "something went wrong, please try again"
}

// Client клиент REST-бэкенда.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт новый клиент бэкенда с таймаутом на запрос.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login выполняет вход пользователя.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	const endpoint = "/auth/login"
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует нового пользователя.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	const endpoint = "/auth/register"
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile запрашивает профиль владельца токена.
func (c *Client) Profile(ctx context.Context, token string) (*models.Profile, error) {
	const endpoint = "/auth/profile"
	var resp models.Profile
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubscriptionPlans возвращает публичный список активных тарифных планов.
func (c *Client) SubscriptionPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	const endpoint = "/users/subscription-plans"
	var resp []models.SubscriptionPlan
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// InitiatePayment отправляет запрос на инициацию платежа.
func (c *Client) InitiatePayment(ctx context.Context, token string, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	const endpoint = "/payments/initiate"
	var resp InitiatePaymentResponse
	if err := c.do(ctx, http.MethodPost, endpoint, token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyPayment проверяет результат платежа по корреляционному токену шлюза.
func (c *Client) VerifyPayment(ctx context.Context, token, gatewayToken string) (*VerifyPaymentResponse, error) {
	endpoint := "/payments/verify?token=" + url.QueryEscape(gatewayToken)
	var resp VerifyPaymentResponse
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// в метки метрик и тексты ошибок уходит только путь: query несёт
	// корреляционный токен шлюза и наружу попадать не должен
	path, _, _ := strings.Cut(endpoint, "?")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(path, "transport_error").Inc()
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	metrics.BackendRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("call %s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &Error{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
