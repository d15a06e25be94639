package repo

import (
	"context"
	"fmt"

	"fashionmuse/internal/domain"
	"fashionmuse/internal/infra"
	"fashionmuse/internal/sqlinline"
)

// LedgerRepositoryPG implements domain.LedgerStore on PostgreSQL. Every
// balance mutation is a single statement, so the check-and-decrement in
// Reserve and the refund guard in RefundJob are atomic without explicit
// transactions.
type LedgerRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewLedgerRepository(sql infra.SQLExecutor) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{sql: sql}
}

func (r *LedgerRepositoryPG) Balance(ctx context.Context, accountID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectBalance, accountID)
	var credits int
	if err := row.Scan(&credits); err != nil {
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ledger: balance: %w", err)
	}
	return credits, nil
}

func (r *LedgerRepositoryPG) Reserve(ctx context.Context, accountID string, amount int, jobID string) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: reservation amount must be positive", domain.ErrValidation)
	}
	description := fmt.Sprintf("Generated %d image(s)", amount)
	row := r.sql.QueryRow(ctx, sqlinline.QReserveCredits, accountID, amount, description, jobID)
	entry, err := scanEntry(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrInsufficientCredits
		}
		return nil, fmt.Errorf("ledger: reserve: %w", err)
	}
	return entry, nil
}

func (r *LedgerRepositoryPG) Credit(ctx context.Context, accountID string, amount int, kind domain.EntryKind, description, relatedJobID string) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", domain.ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, kind)
	}
	if description == "" {
		description = fmt.Sprintf("Added %d credits", amount)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QCreditAccount, accountID, amount, string(kind), description, relatedJobID)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("ledger: credit: %w", err)
	}
	return entry, nil
}

func (r *LedgerRepositoryPG) RefundJob(ctx context.Context, jobID string) (*domain.LedgerEntry, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QRefundJob, jobID, "Refund for failed generation")
	entry, err := scanEntry(row)
	if err != nil {
		if infra.IsNoRows(err) || infra.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyRefunded
		}
		return nil, fmt.Errorf("ledger: refund job %s: %w", jobID, err)
	}
	return entry, nil
}

func (r *LedgerRepositoryPG) EntriesForAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSelectEntriesByAccount, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ledger: scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var kind string
	if err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Amount,
		&kind,
		&e.Description,
		&e.RelatedJobID,
		&e.BalanceAfter,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Kind = domain.EntryKind(kind)
	return &e, nil
}

var _ domain.LedgerStore = (*LedgerRepositoryPG)(nil)
