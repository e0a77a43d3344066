// Package bankstub - банковский сервис в памяти для интеграционных тестов.
// Повторяет протокол реального сервиса: JSON, snake_case, ошибки {"error": ...}.
package bankstub

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/denmor86/bankify/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Account - счёт пользователя внутри заглушки
type Account struct {
	HolderID       string
	Username       string
	PasswordHash   []byte
	Name           string
	Surname        string
	PhoneNumber    string
	IdentityNumber string
	AccountNumber  string
	Balance        decimal.Decimal
	Transactions   []string
}

// Server - состояние заглушки, счета по имени пользователя
type Server struct {
	mu       sync.Mutex
	accounts map[string]*Account
	rand     *rand.Rand
	now      func() time.Time
}

func New() *Server {
	return &Server{
		accounts: make(map[string]*Account),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// Handler - маршрутизатор с конечными точками протокола
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", s.RegisterHandler)
	r.Post("/login", s.LoginHandler)
	r.Get("/dashboard/{accountNumber}", s.DashboardHandler)
	r.Post("/deposit", s.DepositHandler)
	r.Post("/withdraw", s.WithdrawHandler)
	r.Post("/transfer", s.TransferHandler)
	r.Get("/transactions/{accountNumber}", s.TransactionsHandler)
	return r
}

// RegisterHandler — создание нового счёта
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var request models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[request.Username]; exists {
		writeError(w, http.StatusBadRequest, "Account already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	account := &Account{
		HolderID:       uuid.NewString(),
		Username:       request.Username,
		PasswordHash:   hash,
		Name:           request.Name,
		Surname:        request.Surname,
		PhoneNumber:    request.PhoneNumber,
		IdentityNumber: request.IdentityNumber,
		AccountNumber:  fmt.Sprintf("%d", s.rand.Intn(900000)+100000),
		Balance:        decimal.Zero,
	}
	s.accounts[request.Username] = account

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message:       "Account created successfully",
		AccountNumber: account.AccountNumber,
	})
}

// LoginHandler — проверка логина и пароля
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var request models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[request.Username]
	if !exists || bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(request.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message:       "Login successful",
		AccountNumber: account.AccountNumber,
	})
}

// DashboardHandler — авторитетное состояние счёта
func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.findByNumber(chi.URLParam(r, "accountNumber"))
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	balance := account.Balance
	writeJSON(w, http.StatusOK, models.SnapshotResponse{
		Balance:      &balance,
		Transactions: append([]string{}, account.Transactions...),
	})
}

// DepositHandler — пополнение счёта
func (s *Server) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var request models.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.findByNumber(request.AccountNumber)
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	account.Balance = account.Balance.Add(request.Amount)
	s.logTransaction(account, "Deposit", request.Amount)

	writeJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Deposited %s successfully", request.Amount.String()),
	})
}

// WithdrawHandler — снятие средств, баланс перепроверяется на стороне сервиса
func (s *Server) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var request models.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.findByNumber(request.AccountNumber)
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	if account.Balance.LessThan(request.Amount) {
		writeError(w, http.StatusBadRequest, "Insufficient funds")
		return
	}

	account.Balance = account.Balance.Sub(request.Amount)
	s.logTransaction(account, "Withdrawal", request.Amount)

	writeJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Withdrew %s successfully", request.Amount.String()),
	})
}

// TransferHandler — перевод средств получателю, поиск по имени
func (s *Server) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var request models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := s.findByNumber(request.SourceAccountNumber)
	if source == nil {
		writeError(w, http.StatusNotFound, "Source account not found")
		return
	}

	var destination *Account
	for _, account := range s.accounts {
		if account.Name == request.RecipientName && account != source {
			destination = account
			break
		}
	}
	if destination == nil {
		writeError(w, http.StatusNotFound, "Recipient account not found")
		return
	}

	if source.Balance.LessThan(request.Amount) {
		writeError(w, http.StatusBadRequest, "Insufficient funds")
		return
	}

	source.Balance = source.Balance.Sub(request.Amount)
	destination.Balance = destination.Balance.Add(request.Amount)
	s.logTransaction(source, "Transfer Out", request.Amount)
	s.logTransaction(destination, "Transfer In", request.Amount)

	writeJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Transferred %s to %s successfully", request.Amount.String(), request.RecipientName),
	})
}

// TransactionsHandler — журнал операций по счёту
func (s *Server) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.findByNumber(chi.URLParam(r, "accountNumber"))
	if account == nil {
		writeJSON(w, http.StatusOK, models.TransactionsResponse{Transactions: []string{}})
		return
	}

	writeJSON(w, http.StatusOK, models.TransactionsResponse{
		Transactions: append([]string{}, account.Transactions...),
	})
}

// Seed - заведение счёта с балансом напрямую, для подготовки тестов
func (s *Server) Seed(username string, password string, name string, balance decimal.Decimal) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	account := &Account{
		HolderID:      uuid.NewString(),
		Username:      username,
		PasswordHash:  hash,
		Name:          name,
		AccountNumber: fmt.Sprintf("%d", s.rand.Intn(900000)+100000),
		Balance:       balance,
	}
	s.accounts[username] = account
	return account
}

// Account - счёт по имени пользователя, для проверок в тестах
func (s *Server) Account(username string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[username]
}

func (s *Server) findByNumber(accountNumber string) *Account {
	for _, account := range s.accounts {
		if account.AccountNumber == accountNumber {
			return account
		}
	}
	return nil
}

func (s *Server) logTransaction(account *Account, kind string, amount decimal.Decimal) {
	line := fmt.Sprintf("%s | %s | %s", s.now().Format("2006-01-02 15:04:05"), kind, amount.String())
	account.Transactions = append(account.Transactions, line)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
