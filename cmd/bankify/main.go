package main

import (
	"fmt"

	"github.com/denmor86/bankify/internal/app"
	"github.com/denmor86/bankify/internal/config"
	"github.com/denmor86/bankify/internal/logger"
)

func main() {
	// загрузка конфига
	config := config.NewConfig()
	// инициализация логгера
	if err := logger.Initialize(config.LogLevel); err != nil {
		panic(fmt.Sprintf("can't initialize logger: %s ", err.Error()))
	}
	defer logger.Sync()
	// запуск терминального клиента
	app.Run(config)
}
