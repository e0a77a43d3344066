package composer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/denmor86/bankify/internal/models"
	"github.com/denmor86/bankify/internal/validators"
	"github.com/shopspring/decimal"
)

var (
	ErrKindNotSet       = errors.New("transaction kind is not set")
	ErrRecipientMissing = errors.New("recipient name is required for transfer")
)

// FieldError - локальная ошибка валидации с именем первого невалидного поля
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmitData - проверенные данные операции, готовые к отправке
type SubmitData struct {
	Kind          string
	Amount        decimal.Decimal
	RecipientName string
}

// Composer - держатель черновика денежной операции
type Composer struct {
	draft models.TransactionDraft
}

// NewComposer - создание держателя с пустым черновиком
func NewComposer() *Composer {
	return &Composer{}
}

// Draft - текущий черновик
func (c *Composer) Draft() models.TransactionDraft {
	return c.draft
}

// SetKind - выбор типа операции.
// Частично введённая сумма при смене типа намеренно сохраняется.
func (c *Composer) SetKind(kind string) {
	c.draft.Kind = kind
}

// SetAmount - ввод суммы, без валидации до момента отправки
func (c *Composer) SetAmount(raw string) {
	c.draft.Amount = raw
}

// SetRecipientName - ввод имени получателя перевода
func (c *Composer) SetRecipientName(name string) {
	c.draft.RecipientName = name
}

// Clear - сброс черновика, вызывается после каждой попытки отправки
func (c *Composer) Clear() {
	c.draft = models.TransactionDraft{}
}

// ValidateForSubmit - проверки черновика перед отправкой.
// Возвращает либо готовые данные, либо ошибку по первому невалидному полю.
func (c *Composer) ValidateForSubmit(currentBalance decimal.Decimal) (*SubmitData, error) {
	if c.draft.Kind == "" {
		return nil, ErrKindNotSet
	}

	amount, err := validators.ParseAmount(c.draft.Amount)
	if err != nil {
		return nil, &FieldError{Field: "amount", Message: err.Error()}
	}

	// снятие дополнительно ограничено известным балансом
	if c.draft.Kind == models.TransactionWithdraw {
		if err := validators.CheckWithdrawal(amount, currentBalance); err != nil {
			return nil, &FieldError{Field: "amount", Message: err.Error()}
		}
	}

	recipient := strings.TrimSpace(c.draft.RecipientName)
	if c.draft.Kind == models.TransactionTransfer && recipient == "" {
		return nil, &FieldError{Field: "recipientName", Message: ErrRecipientMissing.Error()}
	}

	return &SubmitData{
		Kind:          c.draft.Kind,
		Amount:        amount,
		RecipientName: recipient,
	}, nil
}
