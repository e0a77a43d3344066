package models

import "github.com/shopspring/decimal"

// Типы денежных операций, совпадают с именами конечных точек сервиса
const (
	TransactionDeposit  = "deposit"
	TransactionWithdraw = "withdraw"
	TransactionTransfer = "transfer"
)

// LoginRequest - модель запроса аутентификации пользователя
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse - модель ответа сервиса на аутентификацию
type LoginResponse struct {
	Message       string `json:"message"`
	AccountNumber string `json:"account_number"`
}

// RegisterRequest - модель запроса регистрации нового счёта.
// Имена полей телефона и документа в camelCase, исторический формат сервиса.
type RegisterRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	PhoneNumber    string `json:"phoneNumber"`
	IdentityNumber string `json:"identityNumber"`
}

// RegisterResponse - модель ответа сервиса на регистрацию
type RegisterResponse struct {
	Message       string `json:"message"`
	AccountNumber string `json:"account_number"`
}

// SnapshotResponse - авторитетное состояние счёта с сервера.
// Balance указатель: отсутствие поля в ответе отличимо от нулевого баланса.
type SnapshotResponse struct {
	Balance      *decimal.Decimal `json:"balance"`
	Transactions []string         `json:"transactions"`
}

// AmountRequest - модель запроса пополнения или снятия средств
type AmountRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferRequest - модель запроса перевода средств получателю по имени
type TransferRequest struct {
	SourceAccountNumber string          `json:"source_account_number"`
	RecipientName       string          `json:"recipient_name"`
	Amount              decimal.Decimal `json:"amount"`
}

// MessageResponse - модель ответа сервиса на денежную операцию
type MessageResponse struct {
	Message string `json:"message"`
}

// TransactionsResponse - модель ответа сервиса со строками журнала операций
type TransactionsResponse struct {
	Transactions []string `json:"transactions"`
}

// ErrorResponse - модель ответа сервиса об ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}
