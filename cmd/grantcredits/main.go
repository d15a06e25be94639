// Command grantcredits credits an account from the command line, for support
// workflows and local testing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"fashionmuse/internal/adapter/repo"
	"fashionmuse/internal/domain"
	"fashionmuse/internal/infra"
)

func main() {
	var (
		accountFlag     string
		amountFlag      int
		kindFlag        string
		descriptionFlag string
	)

	flag.StringVar(&accountFlag, "account", "", "account ID to credit")
	flag.IntVar(&amountFlag, "amount", 0, "number of credits to grant (must be positive)")
	flag.StringVar(&kindFlag, "kind", "bonus", "ledger entry kind (purchase, subscription, bonus)")
	flag.StringVar(&descriptionFlag, "description", "", "optional description recorded on the entry")
	flag.Parse()

	_ = godotenv.Load()

	accountID := strings.TrimSpace(accountFlag)
	if accountID == "" {
		exitWithError(errors.New("-account is required"))
	}
	if amountFlag <= 0 {
		exitWithError(errors.New("-amount must be positive"))
	}
	kind := domain.EntryKind(strings.TrimSpace(strings.ToLower(kindFlag)))
	switch kind {
	case domain.EntryKindPurchase, domain.EntryKindSubscription, domain.EntryKindBonus:
	default:
		exitWithError(fmt.Errorf("unsupported kind %q", kindFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantcredits").Logger()
	ledger := repo.NewLedgerRepository(infra.NewSQLRunner(pool, logger))

	entry, err := ledger.Credit(ctx, accountID, amountFlag, kind, strings.TrimSpace(descriptionFlag), "")
	if err != nil {
		exitWithError(fmt.Errorf("failed to credit account: %w", err))
	}

	fmt.Printf("Account %s credited %d (%s)\n", entry.AccountID, entry.Amount, entry.Kind)
	fmt.Printf("balance_after=%d entry_id=%s\n", entry.BalanceAfter, entry.ID)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
