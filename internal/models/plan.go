package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DurationUnit единица измерения срока действия тарифного плана.
type DurationUnit string

// Допустимые единицы срока действия плана.
const (
	UnitDay   DurationUnit = "day"
	UnitWeek  DurationUnit = "week"
	UnitMonth DurationUnit = "month"
	UnitYear  DurationUnit = "year"
)

// Valid сообщает, входит ли единица в число четырёх допустимых.
func (u DurationUnit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// PlanDuration срок действия тарифного плана: количество и единица.
// Count всегда положительное целое.
type PlanDuration struct {
	Count int          `json:"count"`
	Unit  DurationUnit `json:"unit"`
}

// SubscriptionPlan представляет покупаемый тарифный план.
// Цена приходит строкой в десятичном виде (без плавающей точки),
// чтобы исключить ошибки округления.
type SubscriptionPlan struct {
	ID           string       `json:"id"`           // Идентификатор плана
	Name         string       `json:"name"`         // Отображаемое название
	Price        string       `json:"price"`        // Цена, например "200.00"
	Duration     PlanDuration `json:"duration"`     // Срок действия
	Features     []string     `json:"features"`     // Список возможностей, порядок значим
	IsActive     bool         `json:"isActive"`     // Доступен ли план для покупки
	DisplayOrder int          `json:"displayOrder"` // Порядок показа в каталоге
}

// PriceDecimal разбирает цену плана в decimal.Decimal.
func (p *SubscriptionPlan) PriceDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid plan price %q: %w", p.Price, err)
	}
	return d, nil
}

// Validate проверяет инварианты плана: положительный срок действия,
// допустимая единица, разбираемая неотрицательная цена.
func (p *SubscriptionPlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("plan has empty id")
	}
	if p.Duration.Count <= 0 {
		return fmt.Errorf("plan %s: duration count must be positive, got %d", p.ID, p.Duration.Count)
	}
	if !p.Duration.Unit.Valid() {
		return fmt.Errorf("plan %s: unknown duration unit %q", p.ID, p.Duration.Unit)
	}
	price, err := p.PriceDecimal()
	if err != nil {
		return fmt.Errorf("plan %s: %w", p.ID, err)
	}
	if price.IsNegative() {
		return fmt.Errorf("plan %s: price must not be negative", p.ID)
	}
	return nil
}
