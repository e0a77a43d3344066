package models

// RegistrationDraft - черновик регистрации, живёт только на экране регистрации
type RegistrationDraft struct {
	Username       string
	Password       string
	Name           string
	Surname        string
	PhoneNumber    string
	IdentityNumber string
}

// TransactionDraft - черновик денежной операции до отправки.
// Amount хранится строкой как введено, разбор выполняется при отправке.
type TransactionDraft struct {
	Kind          string
	Amount        string
	RecipientName string
}
