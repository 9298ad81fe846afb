// Package catalog содержит бизнес-логику каталога тарифных планов:
// загрузку публичного списка, фильтрацию неактивных планов и
// устойчивую сортировку по порядку показа.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kinoteka/subscription-client/internal/lib/sl"
	"github.com/kinoteka/subscription-client/internal/models"
)

// PlanFetcher описывает вызов бэкенда за списком планов.
type PlanFetcher interface {
	SubscriptionPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
}

// Service сервис каталога планов.
type Service struct {
	api PlanFetcher
	log *slog.Logger
}

// New создает новый экземпляр Service.
func New(api PlanFetcher, log *slog.Logger) *Service {
	return &Service{api: api, log: log}
}

// ActivePlans возвращает активные планы, отсортированные по DisplayOrder.
// Сортировка устойчивая: при равном порядке сохраняется порядок,
// в котором планы пришли от бэкенда. Планы с нарушенными инвариантами
// (нулевой срок, неразбираемая цена) в каталог не попадают.
func (s *Service) ActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	const op = "catalog.ActivePlans"

	plans, err := s.api.SubscriptionPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.SubscriptionPlan, 0, len(plans))
	for _, plan := range plans {
		if !plan.IsActive {
			continue
		}
		if err := plan.Validate(); err != nil {
			s.log.Warn("skipping malformed plan", slog.String("op", op), sl.Err(err))
			continue
		}
		result = append(result, plan)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

// FindPlan возвращает активный план по идентификатору.
func (s *Service) FindPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error) {
	const op = "catalog.FindPlan"

	plans, err := s.ActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range plans {
		if plans[i].ID == planID {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("%s: plan %q not found", op, planID)
}
