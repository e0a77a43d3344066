package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/spf13/pflag"
)

type Arguments struct {
	ServiceAddr    string `env:"BANKING_SERVICE_ADDRESS" envDefault:"http://localhost:5000"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout string `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// Config модель настроек клиента
type Config struct {
	ServiceAddr    string
	LogLevel       string
	RequestTimeout time.Duration
}

func NewConfig() Config {

	var args Arguments
	if err := env.Parse(&args); err != nil {
		panic(fmt.Sprintf("Failed to parse enviroment var: %s", err.Error()))
	}

	var (
		service  = pflag.StringP("service", "b", args.ServiceAddr, "Banking service address in a form http://host:port.")
		logLevel = pflag.StringP("log_level", "l", args.LogLevel, "Log level.")
		timeout  = pflag.StringP("timeout", "t", args.RequestTimeout, "Request timeout to banking service.")
	)
	pflag.Parse()

	duration, err := time.ParseDuration(*timeout)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse request timeout: %s", err.Error()))
	}

	return Config{
		ServiceAddr:    *service,
		LogLevel:       *logLevel,
		RequestTimeout: duration,
	}
}

func DefaultConfig() Config {
	return Config{
		ServiceAddr:    "http://localhost:5000",
		LogLevel:       "info",
		RequestTimeout: 15 * time.Second,
	}
}
