package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/denmor86/bankify/internal/composer"
	"github.com/denmor86/bankify/internal/logger"
	"github.com/denmor86/bankify/internal/models"
	"github.com/denmor86/bankify/internal/services"
	"github.com/denmor86/bankify/internal/session"
)

// Состояния движка сценариев.
// Authenticating и Transacting переходные, наружу всегда
// возвращается ближайшее стабильное состояние.
const (
	StateAnonymous      = "anonymous"
	StateRegistering    = "registering"
	StateAuthenticating = "authenticating"
	StateAuthenticated  = "authenticated"
	StateTransacting    = "transacting"
)

var (
	ErrIllegalState             = errors.New("operation is not allowed in current state")
	ErrNotAuthenticated         = errors.New("session is not authenticated")
	ErrMissingAccountIdentifier = errors.New("account number missing in response")
	ErrBusy                     = errors.New("previous operation is still in progress")
)

// FieldErrors - ошибки валидации формы регистрации по именам полей
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return "registration form has invalid fields"
}

// Engine - движок сценариев сессии.
// Единственный владелец сессии и черновиков, все изменения проходят через него.
type Engine struct {
	Banking      services.BankingService
	Session      *session.Store
	Composer     *composer.Composer
	Registration *composer.RegistrationForm

	mu    sync.Mutex
	busy  bool
	state string
}

// Создание движка
func NewEngine(banking services.BankingService, store *session.Store) *Engine {
	return &Engine{
		Banking:      banking,
		Session:      store,
		Composer:     composer.NewComposer(),
		Registration: composer.NewRegistrationForm(),
		state:        StateAnonymous,
	}
}

// State - текущее состояние движка
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(state string) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// acquire - защита от повторной отправки, пока удалённый вызов не завершён
func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// StartRegistration - переход с экрана входа на экран регистрации
func (e *Engine) StartRegistration() error {
	if e.State() != StateAnonymous {
		return ErrIllegalState
	}
	e.setState(StateRegistering)
	e.Session.SetRegistering()
	return nil
}

// CancelRegistration - возврат к входу, черновик регистрации забывается
func (e *Engine) CancelRegistration() {
	e.Registration.Clear()
	e.setState(StateAnonymous)
	e.Session.Reset()
}

// SubmitRegistration - отправка формы регистрации.
// При любой ошибке форма остаётся на экране, поля сохраняются для исправления.
func (e *Engine) SubmitRegistration(ctx context.Context) (string, error) {
	if err := e.acquire(); err != nil {
		return "", err
	}
	defer e.release()

	if e.State() != StateRegistering {
		return "", ErrIllegalState
	}

	// локальная валидация формата, до обращения к сервису
	if fields := e.Registration.Validate(); len(fields) > 0 {
		logger.Warn("Registration rejected by local validation")
		return "", FieldErrors(fields)
	}

	response, err := e.Banking.Register(ctx, e.Registration.Draft())
	if err != nil {
		logger.Warn("Registration rejected:", err)
		return "", err
	}

	logger.Info("Account registered:", response.AccountNumber)
	e.Registration.Clear()
	e.setState(StateAnonymous)
	e.Session.Reset()
	return response.Message, nil
}

// SubmitLogin - аутентификация и загрузка снимка счёта.
// Авторизованным движок становится только после успеха обоих шагов.
func (e *Engine) SubmitLogin(ctx context.Context, username string, password string) (string, error) {
	if err := e.acquire(); err != nil {
		return "", err
	}
	defer e.release()

	if e.State() != StateAnonymous {
		return "", ErrIllegalState
	}
	e.setState(StateAuthenticating)

	response, err := e.Banking.Login(ctx, username, password)
	if err != nil {
		logger.Warn("Login failed:", err)
		e.setState(StateAnonymous)
		return "", err
	}

	// успешный вход без номера счёта - нарушение протокола, молча не продолжаем
	if response.AccountNumber == "" {
		logger.Error("Login succeeded without account number")
		e.setState(StateAnonymous)
		return "", ErrMissingAccountIdentifier
	}

	snapshot, err := e.Banking.FetchSnapshot(ctx, response.AccountNumber)
	if err != nil {
		logger.Warn("Failed to fetch account snapshot:", err)
		e.setState(StateAnonymous)
		return "", err
	}

	if err := e.Session.BeginAuthenticated(response.AccountNumber, snapshot); err != nil {
		logger.Error("Invalid account snapshot:", err)
		e.setState(StateAnonymous)
		return "", err
	}

	logger.Info("User authenticated, account:", response.AccountNumber)
	e.setState(StateAuthenticated)
	return response.Message, nil
}

// SetTransactionKind - выбор типа операции на панели счёта
func (e *Engine) SetTransactionKind(kind string) {
	e.Composer.SetKind(kind)
}

// SetTransactionAmount - ввод суммы операции
func (e *Engine) SetTransactionAmount(raw string) {
	e.Composer.SetAmount(raw)
}

// SetTransactionRecipient - ввод получателя перевода
func (e *Engine) SetTransactionRecipient(name string) {
	e.Composer.SetRecipientName(name)
}

// SubmitTransaction - отправка денежной операции с последующей сверкой.
// Черновик сбрасывается после каждой попытки, баланс берётся только с сервера.
func (e *Engine) SubmitTransaction(ctx context.Context) (string, error) {
	if err := e.acquire(); err != nil {
		return "", err
	}
	defer e.release()

	if e.State() != StateAuthenticated {
		return "", ErrNotAuthenticated
	}
	defer e.Composer.Clear()

	current := e.Session.Current()
	data, err := e.Composer.ValidateForSubmit(current.Balance)
	if err != nil {
		logger.Warn("Transaction rejected by local validation:", err)
		return "", err
	}

	e.setState(StateTransacting)
	response, err := e.submit(ctx, current.AccountNumber, data)
	if err != nil {
		logger.Warn("Transaction failed:", err)
		e.setState(StateAuthenticated)
		return "", err
	}

	// сверка: баланс не досчитывается локально, а забирается с сервера,
	// строго после ответа на операцию
	snapshot, err := e.Banking.FetchSnapshot(ctx, current.AccountNumber)
	e.setState(StateAuthenticated)
	if err != nil {
		logger.Warn("Failed to reconcile account snapshot:", err)
		return "", err
	}
	if err := e.Session.UpdateBalance(snapshot); err != nil {
		return "", err
	}

	logger.Info("Transaction completed:", data.Kind)
	return response.Message, nil
}

// submit - вызов нужной операции сервиса по типу черновика.
// Перевод всегда уходит с номером счёта из сессии, не из пользовательского ввода.
func (e *Engine) submit(ctx context.Context, accountNumber string, data *composer.SubmitData) (*models.MessageResponse, error) {
	switch data.Kind {
	case models.TransactionDeposit:
		return e.Banking.Deposit(ctx, accountNumber, data.Amount)
	case models.TransactionWithdraw:
		return e.Banking.Withdraw(ctx, accountNumber, data.Amount)
	case models.TransactionTransfer:
		return e.Banking.Transfer(ctx, accountNumber, data.RecipientName, data.Amount)
	}
	return nil, composer.ErrKindNotSet
}

// FetchHistory - строки журнала операций текущего счёта
func (e *Engine) FetchHistory(ctx context.Context) ([]string, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if e.State() != StateAuthenticated {
		return nil, ErrNotAuthenticated
	}
	return e.Banking.Transactions(ctx, e.Session.Current().AccountNumber)
}

// Logout - немедленный локальный выход, без обращения к сервису
func (e *Engine) Logout() {
	e.Composer.Clear()
	e.Registration.Clear()
	e.setState(StateAnonymous)
	e.Session.Reset()
	logger.Info("User logged out")
}
