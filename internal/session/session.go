package session

import (
	"errors"

	"github.com/denmor86/bankify/internal/models"
)

var (
	ErrInvalidSnapshot = errors.New("snapshot has no balance")
	ErrStaleSession    = errors.New("session is not authenticated")
)

// Store - хранилище текущей сессии пользователя.
// Меняется только движком сценариев, по одной операции за раз.
type Store struct {
	session  models.Session
	onChange func(models.Session)
}

// NewStore - создание хранилища с анонимной сессией
func NewStore() *Store {
	return &Store{session: models.NewSession()}
}

// OnChange - подписка слоя отображения на изменения сессии
func (s *Store) OnChange(callback func(models.Session)) {
	s.onChange = callback
}

// Current - текущее состояние сессии
func (s *Store) Current() models.Session {
	return s.session
}

// BeginAuthenticated - перевод сессии в авторизованный режим.
// Снимок без баланса отклоняется, сессия остаётся как была.
func (s *Store) BeginAuthenticated(accountNumber string, snapshot *models.SnapshotResponse) error {
	if snapshot == nil || snapshot.Balance == nil {
		return ErrInvalidSnapshot
	}
	s.session = models.Session{
		Mode:          models.SessionModeAuthenticated,
		AccountNumber: accountNumber,
		Balance:       *snapshot.Balance,
	}
	s.notify()
	return nil
}

// UpdateBalance - обновление баланса из более позднего снимка
func (s *Store) UpdateBalance(snapshot *models.SnapshotResponse) error {
	if s.session.Mode != models.SessionModeAuthenticated {
		return ErrStaleSession
	}
	if snapshot == nil || snapshot.Balance == nil {
		return ErrInvalidSnapshot
	}
	s.session.Balance = *snapshot.Balance
	s.notify()
	return nil
}

// SetRegistering - пометка сессии на время экрана регистрации
func (s *Store) SetRegistering() {
	s.session = models.Session{Mode: models.SessionModeRegistering}
	s.notify()
}

// Reset - возврат в анонимный режим, данные счёта забываются
func (s *Store) Reset() {
	s.session = models.NewSession()
	s.notify()
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange(s.session)
	}
}
