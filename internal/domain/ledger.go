package domain

import "time"

// EntryKind enumerates the reasons a credit movement can be recorded.
type EntryKind string

const (
	EntryKindPurchase     EntryKind = "purchase"
	EntryKindSubscription EntryKind = "subscription"
	EntryKindGeneration   EntryKind = "generation"
	EntryKindRefund       EntryKind = "refund"
	EntryKindBonus        EntryKind = "bonus"
)

// Valid reports whether the kind is one of the recognized entry kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindPurchase, EntryKindSubscription, EntryKindGeneration, EntryKindRefund, EntryKindBonus:
		return true
	}
	return false
}

// LedgerEntry is an immutable, append-only record of a signed credit movement.
// Amount is negative for debits. BalanceAfter materializes the running sum of
// the account's entries up to and including this one; the ledger store keeps
// it consistent with the account balance on every write.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Amount       int
	Kind         EntryKind
	Description  string
	RelatedJobID string
	BalanceAfter int
	CreatedAt    time.Time
}

// Account carries the derived spendable balance for an identity owned by the
// external auth subsystem. The core only ever touches Credits.
type Account struct {
	ID        string
	Credits   int
	CreatedAt time.Time
	UpdatedAt time.Time
}
