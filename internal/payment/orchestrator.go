// Package payment реализует оркестратор платёжного круга:
// инициация платежа, передача управления внешнему шлюзу полным
// редиректом, разбор обратного редиректа, проверка результата
// и обновление сессии.
//
// Редирект на шлюз — жёсткая граница процесса: оркестратор не ждёт
// шлюз в памяти. Обратная ветка восстанавливает намерение исключительно
// из query-параметров возврата; проверка по одному корреляционному
// токену выполняется не более одного раза (защёлка по значению токена).
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"github.com/kinoteka/subscription-client/internal/api"
	"github.com/kinoteka/subscription-client/internal/lib/sl"
	"github.com/kinoteka/subscription-client/internal/metrics"
	"github.com/kinoteka/subscription-client/internal/models"
)

// State состояние машины оркестратора для одной транзакции.
type State string

// Состояния платёжного круга.
const (
	StateIdle            State = "idle"
	StateInitiating      State = "initiating"
	StateAwaitingGateway State = "awaiting_gateway"
	StateVerifying       State = "verifying"
	StateResolved        State = "resolved"
	StateCancelled       State = "cancelled"
)

// ErrCheckoutInProgress возвращается при повторной отправке чекаута,
// пока инициация или ожидание шлюза ещё не завершились.
// Один клик пользователя — не более одного вызова инициации.
var ErrCheckoutInProgress = errors.New("checkout already in progress")

// ReturnOutcome результат разбора обратного редиректа шлюза.
type ReturnOutcome string

// Исходы обратной ветки.
const (
	// OutcomeNone в URL нет ни токена, ни флага отмены — сверять нечего.
	OutcomeNone ReturnOutcome = "none"
	// OutcomeDuplicate проверка для этого токена уже запускалась, no-op.
	OutcomeDuplicate ReturnOutcome = "duplicate"
	OutcomeSuccessful ReturnOutcome = "successful"
	OutcomeFailed     ReturnOutcome = "failed"
	OutcomeCancelled  ReturnOutcome = "cancelled"
)

// ReturnResult итог обработки возврата со шлюза.
// CleanQuery — query-параметры без токена и флага отмены:
// повторный рендер той же страницы не должен перезапускать проверку.
type ReturnResult struct {
	Outcome       ReturnOutcome
	Message       string
	Transaction   *models.PaymentTransaction
	RedirectTo    string
	RedirectAfter time.Duration
	CleanQuery    url.Values
}

// Initiation результат успешной инициации: адрес шлюза для полного
// редиректа и проекция транзакции.
type Initiation struct {
	RedirectURL string
	Transaction models.PaymentTransaction
}

// BackendClient вызовы бэкенда, нужные оркестратору.
type BackendClient interface {
	InitiatePayment(ctx context.Context, token string, req api.InitiatePaymentRequest) (*api.InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, token, gatewayToken string) (*api.VerifyPaymentResponse, error)
}

// SessionStore операции сессии, нужные оркестратору.
type SessionStore interface {
	Token() string
	Refresh(ctx context.Context) error
}

// PlanFinder поиск выбранного плана в каталоге.
type PlanFinder interface {
	FindPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error)
}

// Options интеграционные константы платёжного круга.
type Options struct {
	GatewayTokenParam string        // Имя query-параметра с токеном шлюза
	CancelFlagKey     string        // Ключ флага отмены на back URL
	CancelFlagValue   string        // Значение флага отмены
	Currency          string        // Валюта платежа
	RedirectURL       string        // Клиентский URL возврата при успехе
	BackURL           string        // Клиентский URL возврата при отмене
	ContentPath       string        // Куда вести после подтверждения
	ConfirmationDelay time.Duration // Пауза перед автопереходом
}

// Orchestrator платёжный оркестратор. Владеет состоянием не более
// одной транзакции; проверки по токенам учитываются в защёлке verified
// на весь срок жизни процесса.
type Orchestrator struct {
	backend  BackendClient
	sessions SessionStore
	plans    PlanFinder
	opts     Options
	validate *validator.Validate
	log      *slog.Logger

	mu       sync.Mutex
	state    State
	tx       *models.PaymentTransaction
	verified map[string]bool
	timer    *time.Timer
}

// New создает новый Orchestrator в состоянии Idle.
func New(backend BackendClient, sessions SessionStore, plans PlanFinder, opts Options, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		sessions: sessions,
		plans:    plans,
		opts:     opts,
		validate: validator.New(),
		log:      log,
		state:    StateIdle,
		verified: make(map[string]bool),
	}
}

// State возвращает текущее состояние машины.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transaction возвращает копию текущей транзакции, если она есть.
func (o *Orchestrator) Transaction() *models.PaymentTransaction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tx == nil {
		return nil
	}
	tx := *o.tx
	return &tx
}

// Checkout обрабатывает подтверждение чекаута. Локальная валидация
// выполняется до любого сетевого вызова: не заполнено любое из полей —
// ошибка валидации, сеть не трогается. На один вызов приходится
// не более одного запроса инициации.
func (o *Orchestrator) Checkout(ctx context.Context, req models.CheckoutRequest) (*Initiation, error) {
	const op = "payment.Checkout"
	log := o.log.With(slog.String("op", op))

	if err := o.validate.Struct(req); err != nil {
		return nil, err
	}

	o.mu.Lock()
	switch o.state {
	case StateInitiating, StateAwaitingGateway, StateVerifying:
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	o.state = StateInitiating
	o.tx = nil
	o.mu.Unlock()

	plan, err := o.plans.FindPlan(ctx, req.PlanID)
	if err != nil {
		o.resolveFailed()
		metrics.PaymentInitiationsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx := models.PaymentTransaction{
		PlanID:      plan.ID,
		Amount:      plan.Price,
		Currency:    o.opts.Currency,
		Description: fmt.Sprintf("Subscription plan %q", plan.Name),
		RedirectURL: o.opts.RedirectURL,
		BackURL:     o.opts.BackURL,
	}

	resp, err := o.backend.InitiatePayment(ctx, o.sessions.Token(), api.InitiatePaymentRequest{
		PlanID:            tx.PlanID,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Description:       tx.Description,
		ClientRedirectURL: tx.RedirectURL,
		ClientBackURL:     tx.BackURL,
	})
	if err != nil {
		// транзакция отбрасывается, повторная отправка безопасна
		log.Error("payment initiation rejected", sl.Err(err))
		o.resolveFailed()
		metrics.PaymentInitiationsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx.GatewayToken = resp.GatewayToken
	tx.Status = models.PaymentPending

	o.mu.Lock()
	o.state = StateAwaitingGateway
	o.tx = &tx
	o.mu.Unlock()

	metrics.PaymentInitiationsTotal.WithLabelValues("success").Inc()
	log.Info("payment initiated, handing off to gateway",
		slog.String("plan_id", tx.PlanID),
		sl.Secret("gateway_token", tx.GatewayToken))

	return &Initiation{RedirectURL: resp.RedirectURL, Transaction: tx}, nil
}

// HandleReturn разбирает query-параметры обратного редиректа шлюза.
// Флаг отмены обрабатывается чисто локально, без вызова verify.
// Токен шлюза запускает ровно одну проверку: повторное срабатывание
// для того же токена — no-op.
func (o *Orchestrator) HandleReturn(ctx context.Context, query url.Values) *ReturnResult {
	const op = "payment.HandleReturn"
	log := o.log.With(slog.String("op", op))

	if query.Get(o.opts.CancelFlagKey) == o.opts.CancelFlagValue {
		return o.handleCancel(log, query)
	}

	gatewayToken := query.Get(o.opts.GatewayTokenParam)
	if gatewayToken == "" {
		// ни токена, ни флага отмены: это не ошибка, сверять нечего
		return &ReturnResult{Outcome: OutcomeNone, CleanQuery: cloneQuery(query)}
	}

	o.mu.Lock()
	if o.verified[gatewayToken] {
		o.mu.Unlock()
		log.Debug("duplicate verification suppressed", sl.Secret("gateway_token", gatewayToken))
		return &ReturnResult{Outcome: OutcomeDuplicate, CleanQuery: o.stripQuery(query)}
	}
	o.verified[gatewayToken] = true
	o.state = StateVerifying
	if o.tx == nil {
		// процесс перезапускался между уходом на шлюз и возвратом:
		// намерение восстанавливается только из URL
		o.tx = &models.PaymentTransaction{Status: models.PaymentPending}
	}
	o.tx.GatewayToken = gatewayToken
	o.mu.Unlock()

	resp, err := o.backend.VerifyPayment(ctx, o.sessions.Token(), gatewayToken)
	if err != nil || resp.Status != string(models.PaymentSuccessful) {
		// и явный failed, и ошибка самого вызова — отказ;
		// оптимистичного успеха не бывает
		if err != nil {
			log.Error("verification call failed", sl.Err(err))
		} else {
			log.Info("payment verified as failed", sl.Secret("gateway_token", gatewayToken))
		}
		metrics.PaymentVerificationsTotal.WithLabelValues("failure").Inc()
		tx := o.setStatus(StateResolved, models.PaymentFailed)
		return &ReturnResult{
			Outcome:     OutcomeFailed,
			Message:     failureMessage(err),
			Transaction: tx,
			CleanQuery:  o.stripQuery(query),
		}
	}

	// сессия обновляется до объявления успеха: последующая навигация
	// в закрытый раздел обязана видеть активную подписку
	if err := o.sessions.Refresh(ctx); err != nil {
		log.Error("session refresh after successful payment failed", sl.Err(err))
	}

	metrics.PaymentVerificationsTotal.WithLabelValues("success").Inc()
	tx := o.setStatus(StateResolved, models.PaymentSuccessful)
	log.Info("payment verified as successful", sl.Secret("gateway_token", gatewayToken))

	o.scheduleAutoAdvance()

	return &ReturnResult{
		Outcome:       OutcomeSuccessful,
		Message:       "payment successful, subscription activated",
		Transaction:   tx,
		RedirectTo:    o.opts.ContentPath,
		RedirectAfter: o.opts.ConfirmationDelay,
		CleanQuery:    o.stripQuery(query),
	}
}

// Reset возвращает машину в Idle при открытии чекаута заново.
// Во время выполняющихся сетевых вызовов (Initiating, Verifying) — no-op.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateInitiating, StateVerifying:
		return
	}
	o.stopTimerLocked()
	o.state = StateIdle
	o.tx = nil
}

// Close останавливает отложенный автопереход при завершении процесса,
// чтобы таймер не сработал по уже разобранному состоянию.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopTimerLocked()
}

func (o *Orchestrator) handleCancel(log *slog.Logger, query url.Values) *ReturnResult {
	o.mu.Lock()
	o.state = StateCancelled
	if o.tx != nil {
		o.tx.Status = models.PaymentCancelled
	}
	tx := o.txCopyLocked()
	o.mu.Unlock()

	metrics.PaymentCancellationsTotal.Inc()
	log.Info("payment cancelled by gateway return")

	clean := cloneQuery(query)
	clean.Del(o.opts.CancelFlagKey)
	return &ReturnResult{
		Outcome:     OutcomeCancelled,
		Message:     "payment cancelled",
		Transaction: tx,
		CleanQuery:  clean,
	}
}

// scheduleAutoAdvance взводит ограниченную паузу перед автоматическим
// переходом к контенту: подтверждение должно успеть показаться.
func (o *Orchestrator) scheduleAutoAdvance() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopTimerLocked()
	o.timer = time.AfterFunc(o.opts.ConfirmationDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.state == StateResolved {
			o.state = StateIdle
			o.tx = nil
		}
	})
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) resolveFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateResolved
	if o.tx != nil {
		o.tx.Status = models.PaymentFailed
	}
}

func (o *Orchestrator) setStatus(state State, status models.PaymentStatus) *models.PaymentTransaction {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
	if o.tx != nil {
		o.tx.Status = status
	}
	return o.txCopyLocked()
}

func (o *Orchestrator) txCopyLocked() *models.PaymentTransaction {
	if o.tx == nil {
		return nil
	}
	tx := *o.tx
	return &tx
}

// stripQuery удаляет из query токен шлюза и флаг отмены.
func (o *Orchestrator) stripQuery(query url.Values) url.Values {
	clean := cloneQuery(query)
	clean.Del(o.opts.GatewayTokenParam)
	clean.Del(o.opts.CancelFlagKey)
	return clean
}

func cloneQuery(query url.Values) url.Values {
	clean := make(url.Values, len(query))
	for k, vs := range query {
		clean[k] = append([]string(nil), vs...)
	}
	return clean
}

func failureMessage(err error) string {
	if err == nil {
		return "payment was not completed, please try again"
	}
	return api.UserMessage(err)
}
