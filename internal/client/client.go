package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/denmor86/bankify/internal/logger"
	"github.com/denmor86/bankify/internal/models"
	"github.com/google/uuid"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client - клиент банковского сервиса, по методу на операцию протокола
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

func NewClient(baseURL string, client HTTPClient) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Login - аутентификация пользователя по логину и паролю
func (c *Client) Login(ctx context.Context, request models.LoginRequest) (*models.LoginResponse, error) {
	var result models.LoginResponse
	if err := c.post(ctx, "/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register - регистрация нового счёта
func (c *Client) Register(ctx context.Context, request models.RegisterRequest) (*models.RegisterResponse, error) {
	var result models.RegisterResponse
	if err := c.post(ctx, "/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchSnapshot - получение авторитетного состояния счёта
func (c *Client) FetchSnapshot(ctx context.Context, accountNumber string) (*models.SnapshotResponse, error) {
	var result models.SnapshotResponse
	if err := c.get(ctx, "/dashboard/"+accountNumber, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Deposit - пополнение счёта
func (c *Client) Deposit(ctx context.Context, request models.AmountRequest) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.post(ctx, "/deposit", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Withdraw - снятие средств со счёта
func (c *Client) Withdraw(ctx context.Context, request models.AmountRequest) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.post(ctx, "/withdraw", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Transfer - перевод средств получателю по имени
func (c *Client) Transfer(ctx context.Context, request models.TransferRequest) (*models.MessageResponse, error) {
	var result models.MessageResponse
	if err := c.post(ctx, "/transfer", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Transactions - получение строк журнала операций по счёту
func (c *Client) Transactions(ctx context.Context, accountNumber string) (*models.TransactionsResponse, error) {
	var result models.TransactionsResponse
	if err := c.get(ctx, "/transactions/"+accountNumber, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, request any, result any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Banking service request failed:", err)
		return ErrServiceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return HandleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		logger.Warn("Banking service malformed response:", err)
		return ErrServiceUnavailable
	}

	return nil
}

// HandleErrorResponse - разбор ответа об ошибке.
// Структурный отказ сервиса показывается как есть, всё прочее - недоступность.
func HandleErrorResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(resp.Header)
	}

	var remote models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err == nil && remote.Error != "" {
		return &RemoteError{Message: remote.Error}
	}

	return ErrServiceUnavailable
}
