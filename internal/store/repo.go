package store

import (
	"context"
	"errors"
	"time"

	"github.com/nalanda-edu/nalanda/internal/economy"
)

var (
	// ErrInsufficientFunds means an entry would leave a bucket negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateEntry means the (user, kind, ref) triple was already applied.
	ErrDuplicateEntry = errors.New("duplicate wallet entry")

	ErrInvalidEntry = errors.New("invalid wallet entry")
)

// EntryKind classifies wallet events.
type EntryKind string

const (
	KindCheckout EntryKind = "checkout"
	KindReward   EntryKind = "reward"
	KindConvert  EntryKind = "convert"
	KindGrant    EntryKind = "grant"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Balance is a user's current wallet.
type Balance struct {
	UserID string `json:"userId"`
	economy.WalletTransaction
	UpdatedAt time.Time `json:"updatedAt"`
}

// Entry is a signed wallet change to apply. Ref makes the entry idempotent
// per user and kind: a worksheet id for checkouts, an attempt id for rewards.
type Entry struct {
	ID     string
	UserID string
	Kind   EntryKind
	Ref    string
	Note   string
	Delta  economy.WalletTransaction
}

// EventRecord is an applied entry as stored in the event log.
type EventRecord struct {
	ID        string                    `json:"id"`
	Sequence  int64                     `json:"sequence"`
	UserID    string                    `json:"userId"`
	Kind      EntryKind                 `json:"kind"`
	Ref       string                    `json:"ref"`
	Note      string                    `json:"note,omitempty"`
	Delta     economy.WalletTransaction `json:"delta"`
	Balance   economy.WalletTransaction `json:"balance"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// WalletRepo persists wallets and their append-only event log.
type WalletRepo interface {
	// Balance returns the wallet of userID; unknown users have a zero wallet.
	Balance(ctx context.Context, userID string) (Balance, error)

	// Apply adds e.Delta to the wallet and appends the event in one
	// transaction.
	Apply(ctx context.Context, e Entry) (*EventRecord, error)

	// History returns events of userID, newest first.
	History(ctx context.Context, userID string, opts QueryOpts) ([]EventRecord, error)
}

// SettingsRepo persists economy setting overrides.
type SettingsRepo interface {
	Load(ctx context.Context) (economy.Overrides, error)

	// Save upserts every field set in o; unset fields keep their stored value.
	Save(ctx context.Context, o economy.Overrides) error

	// Reset removes every stored override.
	Reset(ctx context.Context) error
}
