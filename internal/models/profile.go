// Package models содержит доменные структуры клиента:
// профиль пользователя, тарифные планы и платёжные транзакции.
// Структуры описывают контракты REST-бэкенда и используются
// в бизнес-логике, никакие «сырые» payload'ы за границу пакета api не выходят.
package models

import "time"

// Profile представляет профиль пользователя, возвращаемый бэкендом.
// Поле SubscriptionEndDate может быть nil — подписка не оформлена
// или дата окончания не назначена.
type Profile struct {
	ID                  string     `json:"id"`                  // Идентификатор пользователя
	Email               string     `json:"email"`               // Электронная почта
	FullName            string     `json:"fullName"`            // Полное имя для отображения
	Phone               string     `json:"phone"`               // Телефон
	IsAdmin             bool       `json:"isAdmin"`             // Признак администратора
	IsSubscribed        bool       `json:"isSubscribed"`        // Активна ли подписка
	SubscriptionPlan    string     `json:"subscriptionPlan"`    // Название тарифного плана
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate"` // Дата окончания подписки
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
