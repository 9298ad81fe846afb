package models

// PaymentStatus статус платёжной транзакции с точки зрения клиента.
type PaymentStatus string

// Статусы транзакции. Successful и Failed выставляются только
// по результату явного вызова verify; Cancelled — по флагу
// в redirect'е отмены, без обращения к verify.
const (
	PaymentPending    PaymentStatus = "pending"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

// PaymentTransaction клиентская проекция одной попытки покупки.
// До подтверждения инициации шлюзом транзакция не имеет
// устойчивой идентичности; после — однозначно определяется GatewayToken.
type PaymentTransaction struct {
	PlanID       string        `json:"plan_id"`       // Идентификатор покупаемого плана
	Amount       string        `json:"amount"`        // Сумма в десятичном виде
	Currency     string        `json:"currency"`      // Валюта платежа
	Description  string        `json:"description"`   // Описание для шлюза
	RedirectURL  string        `json:"redirect_url"`  // Куда шлюз вернёт при успехе
	BackURL      string        `json:"back_url"`      // Куда шлюз вернёт при отмене
	GatewayToken string        `json:"gateway_token"` // Корреляционный токен шлюза
	Status       PaymentStatus `json:"status"`
}

// CheckoutRequest данные, которые пользователь подтверждает на чекауте.
// Все три персональных поля обязательны: отсутствие любого из них —
// локальная ошибка валидации, сетевой вызов не выполняется.
type CheckoutRequest struct {
	PlanID   string `json:"plan_id" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
}
