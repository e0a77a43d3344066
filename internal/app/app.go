package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/denmor86/bankify/internal/client"
	"github.com/denmor86/bankify/internal/config"
	"github.com/denmor86/bankify/internal/models"
	"github.com/denmor86/bankify/internal/services"
	"github.com/denmor86/bankify/internal/session"
	"github.com/denmor86/bankify/internal/workflow"
)

// App - терминальная оболочка над движком сценариев.
// Только отрисовка и ввод, вся логика в движке.
type App struct {
	Engine *workflow.Engine
	in     *bufio.Scanner
	out    io.Writer
}

func Run(cfg config.Config) {
	store := session.NewStore()
	engine := workflow.NewEngine(services.NewBanking(cfg), store)

	app := &App{
		Engine: engine,
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
	}
	// перерисовка строки баланса на каждое изменение сессии
	store.OnChange(app.renderSession)

	app.Loop(context.Background())
}

// Loop - основной цикл: экран по текущему состоянию движка
func (a *App) Loop(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Bankify")
	for {
		switch a.Engine.State() {
		case workflow.StateAnonymous:
			if !a.loginScreen(ctx) {
				return
			}
		case workflow.StateRegistering:
			a.registerScreen(ctx)
		case workflow.StateAuthenticated:
			if !a.dashboardScreen(ctx) {
				return
			}
		}
	}
}

func (a *App) loginScreen(ctx context.Context) bool {
	fmt.Fprintln(a.out, "\n[1] Login  [2] Register  [q] Quit")
	switch a.prompt("> ") {
	case "1":
		username := a.prompt("Username: ")
		password := a.prompt("Password: ")
		message, err := a.Engine.SubmitLogin(ctx, username, password)
		a.report(message, err)
	case "2":
		if err := a.Engine.StartRegistration(); err != nil {
			a.report("", err)
		}
	case "q":
		return false
	}
	return true
}

func (a *App) registerScreen(ctx context.Context) {
	form := a.Engine.Registration
	form.SetUsername(a.prompt("Username: "))
	form.SetPassword(a.prompt("Password: "))
	form.SetName(a.prompt("Name: "))
	form.SetSurname(a.prompt("Surname: "))
	form.SetPhoneNumber(a.prompt("Phone Number: "))
	form.SetIdentityNumber(a.prompt("Identity Number: "))

	message, err := a.Engine.SubmitRegistration(ctx)
	var fields workflow.FieldErrors
	if errors.As(err, &fields) {
		for _, text := range fields {
			fmt.Fprintln(a.out, text)
		}
		// поля сохранены, пользователь может исправить или вернуться к входу
		if a.prompt("Try again? [y/n]: ") != "y" {
			a.Engine.CancelRegistration()
		}
		return
	}
	a.report(message, err)
	if err != nil && a.prompt("Try again? [y/n]: ") != "y" {
		a.Engine.CancelRegistration()
	}
}

func (a *App) dashboardScreen(ctx context.Context) bool {
	fmt.Fprintln(a.out, "\n[1] Deposit  [2] Withdraw  [3] Transfer  [4] History  [5] Logout  [q] Quit")
	choice := a.prompt("> ")
	switch choice {
	case "1", "2", "3":
		kinds := map[string]string{
			"1": models.TransactionDeposit,
			"2": models.TransactionWithdraw,
			"3": models.TransactionTransfer,
		}
		a.Engine.SetTransactionKind(kinds[choice])
		a.Engine.SetTransactionAmount(a.prompt("Amount: "))
		if kinds[choice] == models.TransactionTransfer {
			a.Engine.SetTransactionRecipient(a.prompt("Recipient Name: "))
		}
		message, err := a.Engine.SubmitTransaction(ctx)
		a.report(message, err)
	case "4":
		history, err := a.Engine.FetchHistory(ctx)
		if err != nil {
			a.report("", err)
			break
		}
		if len(history) == 0 {
			fmt.Fprintln(a.out, "No transactions yet.")
		}
		for _, line := range history {
			fmt.Fprintln(a.out, line)
		}
	case "5":
		a.Engine.Logout()
	case "q":
		return false
	}
	return true
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return ""
	}
	return a.in.Text()
}

func (a *App) renderSession(s models.Session) {
	if s.Mode == models.SessionModeAuthenticated {
		fmt.Fprintf(a.out, "Account %s, balance: R %s\n", s.AccountNumber, s.Balance.String())
	}
}

// report - вывод результата операции, для недоступности сервиса общий текст
func (a *App) report(message string, err error) {
	if err == nil {
		if message != "" {
			fmt.Fprintln(a.out, message)
		}
		return
	}
	if errors.Is(err, client.ErrServiceUnavailable) {
		fmt.Fprintln(a.out, "An error occurred, please try again later")
		return
	}
	fmt.Fprintln(a.out, err.Error())
}
