package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/google/uuid"
)

const defaultUserID = "120338e1-bd44-4ee3-9258-01f57c2c5a5c"

type Config struct {
	ServerAddr       string        `env:"RUN_ADDRESS"`
	LogLevel         string        `env:"LOG_LEVEL"`
	APIBaseURL       string        `env:"API_BASE_URL"`
	UserID           string        `env:"USER_ID"`
	PollInterval     time.Duration `env:"POLL_INTERVAL"`
	PollMaxAttempts  int           `env:"POLL_MAX_ATTEMPTS"`
	OrderAmount      float64       `env:"ORDER_AMOUNT"`
	OrderDescription string        `env:"ORDER_DESCRIPTION"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT"`
}

func NewConfig() (Config, error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}

	fs.StringVar(&cfg.ServerAddr, "a", "0.0.0.0:3000", "dashboard listening address [env:RUN_ADDRESS]")
	fs.StringVar(&cfg.LogLevel, "l", "info", "log output level [env:LOG_LEVEL]")
	fs.StringVar(&cfg.APIBaseURL, "b", "http://localhost:8080", "account and order services base URL [env:API_BASE_URL]")
	fs.StringVar(&cfg.UserID, "u", defaultUserID, "user identifier [env:USER_ID]")
	fs.DurationVar(&cfg.PollInterval, "i", 2*time.Second, "order settlement poll interval [env:POLL_INTERVAL]")
	fs.IntVar(&cfg.PollMaxAttempts, "m", 150, "order settlement max status checks, 0 disables the limit [env:POLL_MAX_ATTEMPTS]")
	fs.Float64Var(&cfg.OrderAmount, "o", 50.0, "amount of a placed order [env:ORDER_AMOUNT]")
	fs.StringVar(&cfg.OrderDescription, "D", "test order", "description of a placed order [env:ORDER_DESCRIPTION]")
	fs.DurationVar(&cfg.HTTPTimeout, "t", 10*time.Second, "upstream request timeout [env:HTTP_TIMEOUT]")

	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("fs.Parse: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env.Parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if _, err := uuid.Parse(c.UserID); err != nil {
		return fmt.Errorf("invalid user id %q: %w", c.UserID, err)
	}

	if c.APIBaseURL == "" {
		return errors.New("api base url is empty")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}

	if c.PollMaxAttempts < 0 {
		return fmt.Errorf("poll max attempts must not be negative, got %d", c.PollMaxAttempts)
	}

	if c.OrderAmount <= 0 {
		return fmt.Errorf("order amount must be positive, got %v", c.OrderAmount)
	}

	return nil
}
