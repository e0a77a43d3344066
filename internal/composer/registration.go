package composer

import (
	"github.com/denmor86/bankify/internal/models"
	"github.com/denmor86/bankify/internal/validators"
)

// Сообщения об ошибках полей регистрации, показываются пользователю как есть
const (
	PhoneNumberErrorMessage    = "Phone number must be exactly 10 digits"
	IdentityNumberErrorMessage = "ID number must be exactly 13 digits"
)

// RegistrationForm - держатель черновика регистрации
type RegistrationForm struct {
	draft models.RegistrationDraft
}

// NewRegistrationForm - создание формы с пустым черновиком
func NewRegistrationForm() *RegistrationForm {
	return &RegistrationForm{}
}

// Draft - текущий черновик регистрации
func (f *RegistrationForm) Draft() models.RegistrationDraft {
	return f.draft
}

// SetUsername - ввод имени пользователя
func (f *RegistrationForm) SetUsername(username string) {
	f.draft.Username = username
}

// SetPassword - ввод пароля
func (f *RegistrationForm) SetPassword(password string) {
	f.draft.Password = password
}

// SetName - ввод имени
func (f *RegistrationForm) SetName(name string) {
	f.draft.Name = name
}

// SetSurname - ввод фамилии
func (f *RegistrationForm) SetSurname(surname string) {
	f.draft.Surname = surname
}

// SetPhoneNumber - ввод телефонного номера
func (f *RegistrationForm) SetPhoneNumber(phone string) {
	f.draft.PhoneNumber = phone
}

// SetIdentityNumber - ввод номера документа
func (f *RegistrationForm) SetIdentityNumber(identity string) {
	f.draft.IdentityNumber = identity
}

// Validate - проверка формата полей перед отправкой.
// Возвращает ошибки по полям, поля при ошибке не очищаются.
func (f *RegistrationForm) Validate() map[string]string {
	errors := make(map[string]string)
	if !validators.IsValidPhoneNumber(f.draft.PhoneNumber) {
		errors["phoneNumber"] = PhoneNumberErrorMessage
	}
	if !validators.IsValidIdentityNumber(f.draft.IdentityNumber) {
		errors["identityNumber"] = IdentityNumberErrorMessage
	}
	return errors
}

// Clear - сброс черновика, вызывается при успехе или возврате к входу
func (f *RegistrationForm) Clear() {
	f.draft = models.RegistrationDraft{}
}
