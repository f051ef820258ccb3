package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/app/setup"
	"github.com/LavaJover/shvark-exchange-service/internal/config"
	botdto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/bot"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const usage = `usage: exchange-admin <command> [flags]

commands:
  add-bot       -owner -name -code -to -from [-limit-user -limit-global]
  update-rates  -code -to -from
  verify-user   -code -user
  show-rates
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	cfg := config.MustLoad()
	if err := requirePersistentStore(cfg); err != nil {
		log.Fatal(err)
	}

	deps, err := setup.InitializeDependencies(cfg, prometheus.NewRegistry())
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()
	useCases := setup.InitializeUseCases(deps)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, useCases, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// requirePersistentStore refuses to run against the in-memory ledger: every
// admin write would be lost when the process exits.
func requirePersistentStore(cfg *config.ExchangeConfig) error {
	if strings.TrimSpace(cfg.ExchangeDB.Dsn) == "" {
		return errors.New("exchange_db.dsn is empty: admin commands need postgres (set EXCHANGE_DB_DSN)")
	}
	return nil
}

func run(ctx context.Context, useCases *setup.UseCases, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	owner := fs.String("owner", "", "bot owner id")
	name := fs.String("name", "", "bot name")
	code := fs.String("code", "", "currency code")
	to := fs.String("to", "", "rate into Discoin")
	from := fs.String("from", "", "rate out of Discoin")
	limitUser := fs.String("limit-user", "", "per-user daily limit in Discoin")
	limitGlobal := fs.String("limit-global", "", "total daily limit in Discoin")
	user := fs.String("user", "", "requester id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch command {
	case "add-bot":
		toDiscoin, fromDiscoin, err := parseRates(*to, *from)
		if err != nil {
			return err
		}
		input := &botdto.CreateBotInput{
			Owner:        *owner,
			Name:         *name,
			CurrencyCode: *code,
			ToDiscoin:    toDiscoin,
			FromDiscoin:  fromDiscoin,
		}
		if input.LimitUser, err = parseOptional(*limitUser); err != nil {
			return err
		}
		if input.LimitGlobal, err = parseOptional(*limitGlobal); err != nil {
			return err
		}
		bot, err := useCases.BotUsecase.CreateBot(ctx, input)
		if err != nil {
			return err
		}
		fmt.Printf("%s registered (%s)\nAPI key: %s\n", bot.Name, bot.CurrencyCode, bot.APIKey)
	case "update-rates":
		toDiscoin, fromDiscoin, err := parseRates(*to, *from)
		if err != nil {
			return err
		}
		if err := useCases.BotUsecase.UpdateRates(ctx, &botdto.UpdateRatesInput{
			CurrencyCode: *code,
			ToDiscoin:    toDiscoin,
			FromDiscoin:  fromDiscoin,
		}); err != nil {
			return err
		}
		fmt.Println("rates updated")
	case "verify-user":
		if err := useCases.BotUsecase.VerifyRequester(ctx, *code, *user); err != nil {
			return err
		}
		fmt.Println("requester verified")
	case "show-rates":
		rates, err := useCases.BotUsecase.ShowRates(ctx)
		if err != nil {
			return err
		}
		fmt.Println(rates)
	default:
		return fmt.Errorf("unknown command\n%s", usage)
	}
	return nil
}

func parseRates(to, from string) (decimal.Decimal, decimal.Decimal, error) {
	toDiscoin, err := decimal.NewFromString(to)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("invalid -to: %w", err)
	}
	fromDiscoin, err := decimal.NewFromString(from)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("invalid -from: %w", err)
	}
	return toDiscoin, fromDiscoin, nil
}

func parseOptional(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(raw)
}
