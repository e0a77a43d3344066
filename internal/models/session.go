package models

import "github.com/shopspring/decimal"

// Режимы пользовательской сессии
const (
	SessionModeAnonymous     = "anonymous"
	SessionModeRegistering   = "registering"
	SessionModeAuthenticated = "authenticated"
)

// Session - модель текущей сессии пользователя.
// AccountNumber и Balance заполнены только в режиме authenticated,
// Balance всегда копия последнего подтверждённого сервером значения.
type Session struct {
	Mode          string
	AccountNumber string
	Balance       decimal.Decimal
}

// NewSession - создаёт сессию в анонимном режиме
func NewSession() Session {
	return Session{Mode: SessionModeAnonymous}
}
