package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fashionmuse/internal/domain"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("no row handler")
	}
	return r.scan(dest...)
}

type stubExecutor struct {
	exec     func(query string, args ...any) (pgconn.CommandTag, error)
	queryRow func(query string, args ...any) pgx.Row
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.exec == nil {
		return pgconn.CommandTag{}, fmt.Errorf("unsupported exec: %s", query)
	}
	return s.exec(query, args...)
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRow == nil {
		return stubRow{}
	}
	return s.queryRow(query, args...)
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unsupported query: %s", query)
}

func entryScan(entry domain.LedgerEntry) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = entry.ID
		*dest[1].(*string) = entry.AccountID
		*dest[2].(*int) = entry.Amount
		*dest[3].(*string) = string(entry.Kind)
		*dest[4].(*string) = entry.Description
		*dest[5].(*string) = entry.RelatedJobID
		*dest[6].(*int) = entry.BalanceAfter
		*dest[7].(*time.Time) = entry.CreatedAt
		return nil
	}
}

func TestReserveMapsNoRowsToInsufficientCredits(t *testing.T) {
	db := &stubExecutor{
		queryRow: func(query string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	ledger := NewLedgerRepository(db)
	_, err := ledger.Reserve(context.Background(), "acct-1", 4, "job-1")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
}

func TestReserveScansEntryAndPassesDescription(t *testing.T) {
	var gotArgs []any
	want := domain.LedgerEntry{
		ID:           "entry-1",
		AccountID:    "acct-1",
		Amount:       -3,
		Kind:         domain.EntryKindGeneration,
		Description:  "Generated 3 image(s)",
		RelatedJobID: "job-1",
		BalanceAfter: 7,
		CreatedAt:    time.Now(),
	}
	db := &stubExecutor{
		queryRow: func(query string, args ...any) pgx.Row {
			gotArgs = args
			return stubRow{scan: entryScan(want)}
		},
	}
	ledger := NewLedgerRepository(db)
	entry, err := ledger.Reserve(context.Background(), "acct-1", 3, "job-1")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if entry.Amount != -3 || entry.Kind != domain.EntryKindGeneration || entry.RelatedJobID != "job-1" {
		t.Fatalf("entry = %+v", entry)
	}
	if len(gotArgs) != 4 {
		t.Fatalf("args = %v", gotArgs)
	}
	if desc, ok := gotArgs[2].(string); !ok || !strings.Contains(desc, "3 image(s)") {
		t.Fatalf("description arg = %v", gotArgs[2])
	}
}

func TestReserveRejectsNonPositiveAmount(t *testing.T) {
	ledger := NewLedgerRepository(&stubExecutor{})
	for _, amount := range []int{0, -1} {
		if _, err := ledger.Reserve(context.Background(), "acct-1", amount, "job-1"); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("amount %d: err = %v, want ErrValidation", amount, err)
		}
	}
}

func TestCreditValidation(t *testing.T) {
	ledger := NewLedgerRepository(&stubExecutor{})
	if _, err := ledger.Credit(context.Background(), "acct-1", 0, domain.EntryKindBonus, "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero amount err = %v, want ErrValidation", err)
	}
	if _, err := ledger.Credit(context.Background(), "acct-1", 5, domain.EntryKind("chargeback"), "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad kind err = %v, want ErrValidation", err)
	}
}

func TestRefundJobMapsDuplicatesToAlreadyRefunded(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"no rows from guard", pgx.ErrNoRows},
		{"unique index violation", &pgconn.PgError{Code: "23505"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &stubExecutor{
				queryRow: func(query string, args ...any) pgx.Row {
					return stubRow{scan: func(dest ...any) error { return tc.err }}
				},
			}
			ledger := NewLedgerRepository(db)
			if _, err := ledger.RefundJob(context.Background(), "job-1"); !errors.Is(err, domain.ErrAlreadyRefunded) {
				t.Fatalf("err = %v, want ErrAlreadyRefunded", err)
			}
		})
	}
}

func TestBalanceUnknownAccountIsZero(t *testing.T) {
	db := &stubExecutor{
		queryRow: func(query string, args ...any) pgx.Row {
			return stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	ledger := NewLedgerRepository(db)
	balance, err := ledger.Balance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}
