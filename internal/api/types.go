package api

import "github.com/kinoteka/subscription-client/internal/models"

// LoginRequest запрос на вход пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// RegisterRequest запрос на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	DeviceID string `json:"deviceId"`
}

// AuthResponse ответ бэкенда на вход или регистрацию:
// bearer-токен и профиль пользователя.
type AuthResponse struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// InitiatePaymentRequest запрос на инициацию платежа.
type InitiatePaymentRequest struct {
	PlanID            string `json:"planId"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Description       string `json:"description"`
	ClientRedirectURL string `json:"clientRedirectUrl"`
	ClientBackURL     string `json:"clientBackUrl"`
}

// InitiatePaymentResponse ответ на инициацию: адрес шлюза для полного
// редиректа и корреляционный токен, по которому платёж опознаётся
// после возврата.
type InitiatePaymentResponse struct {
	RedirectURL   string `json:"redirectUrl"`
	TransactionID string `json:"transactionId"`
	GatewayToken  string `json:"gatewayToken"`
}

// VerifyPaymentResponse ответ на проверку платежа по токену шлюза.
// Status принимает значения "successful" или "failed".
type VerifyPaymentResponse struct {
	Status string `json:"status"`
}

// errorEnvelope формат тела ошибки бэкенда.
type errorEnvelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}
