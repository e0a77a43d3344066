package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/denmor86/bankify/internal/composer"
	"github.com/denmor86/bankify/internal/config"
	"github.com/denmor86/bankify/internal/logger"
	"github.com/denmor86/bankify/internal/models"
	"github.com/denmor86/bankify/internal/services/mocks"
	"github.com/denmor86/bankify/internal/session"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func initLogger() {
	config := config.DefaultConfig()
	if err := logger.Initialize(config.LogLevel); err != nil {
		logger.Panic(err)
	}
}

func snapshot(balance int64) *models.SnapshotResponse {
	value := decimal.NewFromInt(balance)
	return &models.SnapshotResponse{Balance: &value}
}

// authenticate - доведение движка до авторизованного состояния
func authenticate(t *testing.T, engine *Engine, banking *mocks.MockBankingService, balance int64) {
	t.Helper()
	banking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
		&models.LoginResponse{Message: "Login successful", AccountNumber: "123"}, nil)
	banking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(snapshot(balance), nil)

	if _, err := engine.SubmitLogin(context.Background(), "mda", "test_pass"); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
}

func TestSubmitLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockBanking := mocks.NewMockBankingService(ctrl)
	initLogger()

	testCases := []struct {
		Name            string
		SetupMocks      func()
		ExpectedError   error
		ExpectedState   string
		ExpectedSession models.Session
	}{
		{
			Name: "Success. Login and snapshot #1",
			SetupMocks: func() {
				mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
					&models.LoginResponse{Message: "ok", AccountNumber: "123"}, nil)
				mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(snapshot(500), nil)
			},
			ExpectedState: StateAuthenticated,
			ExpectedSession: models.Session{
				Mode:          models.SessionModeAuthenticated,
				AccountNumber: "123",
				Balance:       decimal.NewFromInt(500),
			},
		},
		{
			Name: "Error. Invalid credentials #2",
			SetupMocks: func() {
				mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
					nil, errors.New("Invalid username or password"))
			},
			ExpectedError:   errors.New("Invalid username or password"),
			ExpectedState:   StateAnonymous,
			ExpectedSession: models.NewSession(),
		},
		{
			// успешный вход без номера счёта - нарушение протокола
			Name: "Error. Login without account number #3",
			SetupMocks: func() {
				mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
					&models.LoginResponse{Message: "ok"}, nil)
			},
			ExpectedError:   ErrMissingAccountIdentifier,
			ExpectedState:   StateAnonymous,
			ExpectedSession: models.NewSession(),
		},
		{
			Name: "Error. Snapshot fetch failed #4",
			SetupMocks: func() {
				mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
					&models.LoginResponse{Message: "ok", AccountNumber: "123"}, nil)
				mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(
					nil, errors.New("account not found"))
			},
			ExpectedError:   errors.New("account not found"),
			ExpectedState:   StateAnonymous,
			ExpectedSession: models.NewSession(),
		},
		{
			Name: "Error. Snapshot without balance #5",
			SetupMocks: func() {
				mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").Return(
					&models.LoginResponse{Message: "ok", AccountNumber: "123"}, nil)
				mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(
					&models.SnapshotResponse{}, nil)
			},
			ExpectedError:   session.ErrInvalidSnapshot,
			ExpectedState:   StateAnonymous,
			ExpectedSession: models.NewSession(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tc.SetupMocks()

			store := session.NewStore()
			engine := NewEngine(mockBanking, store)

			_, err := engine.SubmitLogin(context.Background(), "mda", "test_pass")

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && err.Error() != tc.ExpectedError.Error() {
				t.Errorf("Expected error: '%v', got: '%v'", tc.ExpectedError, err)
			}
			if engine.State() != tc.ExpectedState {
				t.Errorf("Expected state %s, got %s", tc.ExpectedState, engine.State())
			}
			if diff := cmp.Diff(tc.ExpectedSession, store.Current()); diff != "" {
				t.Errorf("Session mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubmitTransaction(t *testing.T) {
	initLogger()

	t.Run("Success. Deposit reconciled from server #1", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		amount := decimal.NewFromInt(100)
		gomock.InOrder(
			mockBanking.EXPECT().Deposit(gomock.Any(), "123", gomock.Cond(amount.Equal)).Return(
				&models.MessageResponse{Message: "Deposited 100 successfully"}, nil),
			// сверка строго после ответа на операцию, сервер вернул 600, не 500+100
			mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(snapshot(600), nil),
		)

		engine.SetTransactionKind(models.TransactionDeposit)
		engine.SetTransactionAmount("100")

		message, err := engine.SubmitTransaction(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		if message != "Deposited 100 successfully" {
			t.Errorf("Expected service message, got %q", message)
		}
		if !store.Current().Balance.Equal(decimal.NewFromInt(600)) {
			t.Errorf("Expected balance 600, got %s", store.Current().Balance)
		}
		if engine.Composer.Draft() != (models.TransactionDraft{}) {
			t.Errorf("Expected draft to be cleared, got %+v", engine.Composer.Draft())
		}
	})

	t.Run("Error. Withdrawal above balance rejected locally #2", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		// ни одного обращения к сервису не ожидается
		engine.SetTransactionKind(models.TransactionWithdraw)
		engine.SetTransactionAmount("1000")

		_, err := engine.SubmitTransaction(context.Background())
		var fieldErr *composer.FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("Expected FieldError, got: '%v'", err)
		}
		if fieldErr.Field != "amount" {
			t.Errorf("Expected failing field amount, got %q", fieldErr.Field)
		}
		if !store.Current().Balance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("Expected balance to stay 500, got %s", store.Current().Balance)
		}
		if engine.Composer.Draft() != (models.TransactionDraft{}) {
			t.Errorf("Expected draft to be cleared, got %+v", engine.Composer.Draft())
		}
		if engine.State() != StateAuthenticated {
			t.Errorf("Expected authenticated state, got %s", engine.State())
		}
	})

	t.Run("Error. Transfer without recipient rejected locally #3", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		engine.SetTransactionKind(models.TransactionTransfer)
		engine.SetTransactionAmount("100")

		_, err := engine.SubmitTransaction(context.Background())
		var fieldErr *composer.FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("Expected FieldError, got: '%v'", err)
		}
		if fieldErr.Field != "recipientName" {
			t.Errorf("Expected failing field recipientName, got %q", fieldErr.Field)
		}
	})

	t.Run("Success. Transfer uses session account as source #4", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		amount := decimal.NewFromInt(100)
		gomock.InOrder(
			mockBanking.EXPECT().Transfer(gomock.Any(), "123", "John", gomock.Cond(amount.Equal)).Return(
				&models.MessageResponse{Message: "Transferred 100 to John successfully"}, nil),
			mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(snapshot(400), nil),
		)

		engine.SetTransactionKind(models.TransactionTransfer)
		engine.SetTransactionAmount("100")
		engine.SetTransactionRecipient("John")

		if _, err := engine.SubmitTransaction(context.Background()); err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		if !store.Current().Balance.Equal(decimal.NewFromInt(400)) {
			t.Errorf("Expected balance 400, got %s", store.Current().Balance)
		}
	})

	t.Run("Error. Remote rejection keeps last confirmed balance #5", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		// сервис перепроверяет баланс и отказывает, сверка не выполняется
		mockBanking.EXPECT().Withdraw(gomock.Any(), "123", gomock.Any()).Return(
			nil, errors.New("Insufficient funds"))

		engine.SetTransactionKind(models.TransactionWithdraw)
		engine.SetTransactionAmount("400")

		if _, err := engine.SubmitTransaction(context.Background()); err == nil {
			t.Fatal("Expected error, got none")
		}
		if !store.Current().Balance.Equal(decimal.NewFromInt(500)) {
			t.Errorf("Expected balance to stay 500, got %s", store.Current().Balance)
		}
		if engine.State() != StateAuthenticated {
			t.Errorf("Expected authenticated state, got %s", engine.State())
		}
		if engine.Composer.Draft() != (models.TransactionDraft{}) {
			t.Errorf("Expected draft to be cleared, got %+v", engine.Composer.Draft())
		}
	})

	t.Run("Error. Not authenticated #6", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		engine := NewEngine(mockBanking, session.NewStore())
		engine.SetTransactionKind(models.TransactionDeposit)
		engine.SetTransactionAmount("100")

		if _, err := engine.SubmitTransaction(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("Expected ErrNotAuthenticated, got: '%v'", err)
		}
	})
}

func TestSubmitRegistration(t *testing.T) {
	initLogger()

	t.Run("Error. Invalid fields rejected locally #1", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		engine := NewEngine(mockBanking, session.NewStore())
		if err := engine.StartRegistration(); err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		engine.Registration.SetUsername("mda")
		engine.Registration.SetPassword("test_pass")
		engine.Registration.SetPhoneNumber("123")
		engine.Registration.SetIdentityNumber("0123456789012")

		_, err := engine.SubmitRegistration(context.Background())
		var fields FieldErrors
		if !errors.As(err, &fields) {
			t.Fatalf("Expected FieldErrors, got: '%v'", err)
		}
		if _, ok := fields["phoneNumber"]; !ok {
			t.Errorf("Expected phoneNumber error, got %v", fields)
		}
		// форма остаётся на экране, поля сохранены для исправления
		if engine.State() != StateRegistering {
			t.Errorf("Expected registering state, got %s", engine.State())
		}
		if engine.Registration.Draft().Username != "mda" {
			t.Errorf("Expected fields to be retained, got %+v", engine.Registration.Draft())
		}
	})

	t.Run("Success. Registration returns to login #2", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		engine := NewEngine(mockBanking, session.NewStore())
		if err := engine.StartRegistration(); err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		engine.Registration.SetUsername("mda")
		engine.Registration.SetPassword("test_pass")
		engine.Registration.SetName("Ivan")
		engine.Registration.SetSurname("Ivanov")
		engine.Registration.SetPhoneNumber("0123456789")
		engine.Registration.SetIdentityNumber("0123456789012")

		mockBanking.EXPECT().Register(gomock.Any(), engine.Registration.Draft()).Return(
			&models.RegisterResponse{Message: "Account created successfully", AccountNumber: "123"}, nil)

		message, err := engine.SubmitRegistration(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		if message != "Account created successfully" {
			t.Errorf("Expected service message, got %q", message)
		}
		if engine.State() != StateAnonymous {
			t.Errorf("Expected anonymous state, got %s", engine.State())
		}
		if engine.Registration.Draft() != (models.RegistrationDraft{}) {
			t.Errorf("Expected draft to be cleared, got %+v", engine.Registration.Draft())
		}
	})

	t.Run("Error. Remote rejection keeps form #3", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockBanking := mocks.NewMockBankingService(ctrl)

		engine := NewEngine(mockBanking, session.NewStore())
		if err := engine.StartRegistration(); err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		engine.Registration.SetUsername("mda")
		engine.Registration.SetPhoneNumber("0123456789")
		engine.Registration.SetIdentityNumber("0123456789012")

		mockBanking.EXPECT().Register(gomock.Any(), gomock.Any()).Return(
			nil, errors.New("Account already exists"))

		if _, err := engine.SubmitRegistration(context.Background()); err == nil {
			t.Fatal("Expected error, got none")
		}
		if engine.State() != StateRegistering {
			t.Errorf("Expected registering state, got %s", engine.State())
		}
		if engine.Registration.Draft().Username != "mda" {
			t.Errorf("Expected fields to be retained, got %+v", engine.Registration.Draft())
		}
	})
}

func TestReentrantSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockBanking := mocks.NewMockBankingService(ctrl)
	initLogger()

	store := session.NewStore()
	engine := NewEngine(mockBanking, store)

	// повторная отправка, пока удалённый вызов не завершён, отклоняется
	mockBanking.EXPECT().Login(gomock.Any(), "mda", "test_pass").DoAndReturn(
		func(ctx context.Context, username string, password string) (*models.LoginResponse, error) {
			if _, err := engine.SubmitLogin(ctx, "mda", "test_pass"); !errors.Is(err, ErrBusy) {
				t.Errorf("Expected ErrBusy, got: '%v'", err)
			}
			return &models.LoginResponse{Message: "ok", AccountNumber: "123"}, nil
		})
	mockBanking.EXPECT().FetchSnapshot(gomock.Any(), "123").Return(snapshot(500), nil)

	if _, err := engine.SubmitLogin(context.Background(), "mda", "test_pass"); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
}

func TestLogout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockBanking := mocks.NewMockBankingService(ctrl)
	initLogger()

	store := session.NewStore()
	engine := NewEngine(mockBanking, store)
	authenticate(t, engine, mockBanking, 500)

	engine.SetTransactionKind(models.TransactionDeposit)
	engine.SetTransactionAmount("100")

	// выход локальный, обращений к сервису не ожидается
	engine.Logout()

	if engine.State() != StateAnonymous {
		t.Errorf("Expected anonymous state, got %s", engine.State())
	}
	if diff := cmp.Diff(models.NewSession(), store.Current()); diff != "" {
		t.Errorf("Session mismatch (-want +got):\n%s", diff)
	}
	if engine.Composer.Draft() != (models.TransactionDraft{}) {
		t.Errorf("Expected draft to be cleared, got %+v", engine.Composer.Draft())
	}
}

func TestFetchHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockBanking := mocks.NewMockBankingService(ctrl)
	initLogger()

	t.Run("Error. Not authenticated #1", func(t *testing.T) {
		engine := NewEngine(mockBanking, session.NewStore())
		if _, err := engine.FetchHistory(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("Expected ErrNotAuthenticated, got: '%v'", err)
		}
	})

	t.Run("Success. History lines #2", func(t *testing.T) {
		store := session.NewStore()
		engine := NewEngine(mockBanking, store)
		authenticate(t, engine, mockBanking, 500)

		expected := []string{"2024-01-01 10:00:00 | Deposit | 500"}
		mockBanking.EXPECT().Transactions(gomock.Any(), "123").Return(expected, nil)

		history, err := engine.FetchHistory(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got: '%v'", err)
		}
		if diff := cmp.Diff(expected, history); diff != "" {
			t.Errorf("History mismatch (-want +got):\n%s", diff)
		}
	})
}
