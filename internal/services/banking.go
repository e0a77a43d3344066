package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/denmor86/bankify/internal/client"
	"github.com/denmor86/bankify/internal/config"
	"github.com/denmor86/bankify/internal/logger"
	"github.com/denmor86/bankify/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// BankingService - операции банковского сервиса, используется движком сценариев
type BankingService interface {
	Login(ctx context.Context, username string, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, draft models.RegistrationDraft) (*models.RegisterResponse, error)
	FetchSnapshot(ctx context.Context, accountNumber string) (*models.SnapshotResponse, error)
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.MessageResponse, error)
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.MessageResponse, error)
	Transfer(ctx context.Context, sourceAccountNumber string, recipientName string, amount decimal.Decimal) (*models.MessageResponse, error)
	Transactions(ctx context.Context, accountNumber string) ([]string, error)
}

// Banking - реализация поверх HTTP клиента с предохранителем и ограничителем темпа
type Banking struct {
	Client  *client.Client
	Limiter *client.RateLimiter
	Breaker *gobreaker.CircuitBreaker
}

func InitCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "banking-service",
		Timeout: 30 * time.Second, // через 30 сек пробуем подключиться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 5 попыток достучатся до сервиса
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// явный отказ сервиса не считается сбоем доступности
			var remote *client.RemoteError
			return err == nil || errors.As(err, &remote)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit Breaker state change", name, from.String(), to.String())
		},
	})
}

// Создание сервиса
func NewBanking(cfg config.Config) BankingService {
	return &Banking{
		Client:  client.NewClient(cfg.ServiceAddr, &http.Client{Timeout: cfg.RequestTimeout}),
		Limiter: client.NewRateLimiter(),
		Breaker: InitCircuitBreaker(),
	}
}

func (s *Banking) Login(ctx context.Context, username string, password string) (*models.LoginResponse, error) {
	var response *models.LoginResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Login(ctx, models.LoginRequest{Username: username, Password: password})
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) Register(ctx context.Context, draft models.RegistrationDraft) (*models.RegisterResponse, error) {
	request := models.RegisterRequest{
		Username:       draft.Username,
		Password:       draft.Password,
		Name:           draft.Name,
		Surname:        draft.Surname,
		PhoneNumber:    draft.PhoneNumber,
		IdentityNumber: draft.IdentityNumber,
	}
	var response *models.RegisterResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Register(ctx, request)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) FetchSnapshot(ctx context.Context, accountNumber string) (*models.SnapshotResponse, error) {
	var response *models.SnapshotResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.FetchSnapshot(ctx, accountNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.MessageResponse, error) {
	var response *models.MessageResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Deposit(ctx, models.AmountRequest{AccountNumber: accountNumber, Amount: amount})
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*models.MessageResponse, error) {
	var response *models.MessageResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Withdraw(ctx, models.AmountRequest{AccountNumber: accountNumber, Amount: amount})
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) Transfer(ctx context.Context, sourceAccountNumber string, recipientName string, amount decimal.Decimal) (*models.MessageResponse, error) {
	request := models.TransferRequest{
		SourceAccountNumber: sourceAccountNumber,
		RecipientName:       recipientName,
		Amount:              amount,
	}
	var response *models.MessageResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Transfer(ctx, request)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Banking) Transactions(ctx context.Context, accountNumber string) ([]string, error) {
	var response *models.TransactionsResponse
	err := s.execute(ctx, func() error {
		var err error
		response, err = s.Client.Transactions(ctx, accountNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response.Transactions, nil
}

// execute - общая обвязка запроса: ограничитель темпа и предохранитель
func (s *Banking) execute(ctx context.Context, call func() error) error {
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.Breaker.Execute(func() (interface{}, error) {
		return nil, call()
	})
	if err != nil {
		// проверка большого количеста запросов
		if rateLimitErr, ok := err.(*client.RateLimitError); ok {
			logger.Warn("Too many requests to banking service")
			s.Limiter.BlockFor(rateLimitErr.RetryAfter)
			return client.ErrServiceUnavailable
		}
		// предохранитель разомкнут, сервис недоступен
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return client.ErrServiceUnavailable
		}
		return err
	}
	return nil
}
