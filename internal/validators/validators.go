package validators

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotNumeric  = errors.New("amount is not a number")
	ErrAmountNotPositive = errors.New("amount must be a positive number")
	ErrInsufficientFunds = errors.New("insufficient balance for this withdrawal")
)

// CheckDigits проверяет, что строка состоит ровно из count десятичных цифр
func CheckDigits(value string, count int) bool {
	if len(value) != count {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValidPhoneNumber - телефонный номер, ровно 10 цифр
func IsValidPhoneNumber(phone string) bool {
	return CheckDigits(phone, 10)
}

// IsValidIdentityNumber - номер документа, ровно 13 цифр
func IsValidIdentityNumber(identity string) bool {
	return CheckDigits(identity, 13)
}

// ParseAmount разбирает введённую сумму, отклоняет нечисловые и неположительные
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountNotNumeric
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	return amount, nil
}

// CheckWithdrawal - проверка суммы снятия по известному балансу.
// Снятие всего баланса допустимо, отклоняется только превышение.
func CheckWithdrawal(amount decimal.Decimal, balance decimal.Decimal) error {
	if amount.GreaterThan(balance) {
		return ErrInsufficientFunds
	}
	return nil
}
