package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/store"
)

var (
	ErrInvalidGrant    = errors.New("grant amounts must be non-negative")
	ErrInvalidSettings = errors.New("invalid economy settings")
)

// Receipt describes one applied wallet change.
type Receipt struct {
	TransactionID string                    `json:"transactionId"`
	Sequence      int64                     `json:"sequence"`
	UserID        string                    `json:"userId"`
	Kind          store.EntryKind           `json:"kind"`
	Ref           string                    `json:"ref"`
	Delta         economy.WalletTransaction `json:"delta"`
	Balance       economy.WalletTransaction `json:"balance"`
	CreatedAt     time.Time                 `json:"createdAt"`

	// Report is set for attempt settlements.
	Report *economy.RewardReport `json:"report,omitempty"`
}

// Service applies engine results to persisted wallets.
type Service struct {
	wallets  store.WalletRepo
	settings store.SettingsRepo
	log      *slog.Logger
	newID    func() string
}

// NewService creates a Service. A nil settings repo means the defaults
// always apply; a nil logger discards.
func NewService(wallets store.WalletRepo, settings store.SettingsRepo, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		wallets:  wallets,
		settings: settings,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Settings returns the defaults with stored overrides applied. A store
// failure or an invalid stored value logs a warning and yields the defaults.
func (s *Service) Settings(ctx context.Context) economy.Settings {
	defaults := economy.DefaultSettings()
	if s.settings == nil {
		return defaults
	}
	o, err := s.settings.Load(ctx)
	if err != nil {
		s.log.Warn("load economy settings, using defaults", "err", err)
		return defaults
	}
	merged := o.Apply(defaults)
	if err := merged.Validate(); err != nil {
		s.log.Warn("stored economy settings are invalid, using defaults", "err", err)
		return defaults
	}
	return merged
}

// UpdateSettings validates o against the current settings and stores it.
func (s *Service) UpdateSettings(ctx context.Context, o economy.Overrides) (economy.Settings, error) {
	if s.settings == nil {
		return economy.Settings{}, errors.New("settings are read-only")
	}
	merged := o.Apply(s.Settings(ctx))
	if err := merged.Validate(); err != nil {
		return economy.Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.settings.Save(ctx, o); err != nil {
		return economy.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.log.Info("economy settings updated", "fields", o.Fields())
	return merged, nil
}

// ResetSettings drops every stored override.
func (s *Service) ResetSettings(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	return s.settings.Reset(ctx)
}

// Balance returns userID's wallet.
func (s *Service) Balance(ctx context.Context, userID string) (store.Balance, error) {
	return s.wallets.Balance(ctx, userID)
}

// Checkout debits the unlock cost of questions for worksheetID. A worksheet
// is checked out once per user; a free checkout is still recorded.
func (s *Service) Checkout(ctx context.Context, userID, worksheetID string, questions []content.Question) (*Receipt, error) {
	cfg := s.Settings(ctx)
	cost := economy.CalculateWorksheetCost(questions, &cfg)

	rec, err := s.apply(ctx, store.Entry{
		UserID: userID,
		Kind:   store.KindCheckout,
		Ref:    worksheetID,
		Note:   fmt.Sprintf("%d questions", len(questions)),
		Delta:  cost.Neg(),
	})
	if err != nil {
		return nil, fmt.Errorf("checkout %s: %w", worksheetID, err)
	}
	return receipt(rec), nil
}

// SettleAttempt credits the rewards userID earned on attemptID. An attempt
// is settled once; a zero reward is still recorded.
func (s *Service) SettleAttempt(ctx context.Context, userID, attemptID string, ws content.Worksheet, questions []content.Question, results content.ResultState) (*Receipt, error) {
	cfg := s.Settings(ctx)
	report := economy.ExplainAttemptRewards(ws, questions, results, userID, &cfg)

	rec, err := s.apply(ctx, store.Entry{
		UserID: userID,
		Kind:   store.KindReward,
		Ref:    attemptID,
		Note:   ws.ID,
		Delta:  report.Rewards.Transaction(),
	})
	if err != nil {
		return nil, fmt.Errorf("settle attempt %s: %w", attemptID, err)
	}
	r := receipt(rec)
	r.Report = &report
	return r, nil
}

// Convert trades amount units of from into the next tier up.
func (s *Service) Convert(ctx context.Context, userID string, from, to economy.Currency, amount int64) (*Receipt, error) {
	cfg := s.Settings(ctx)
	delta, err := economy.Convert(from, to, amount, &cfg)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	rec, err := s.apply(ctx, store.Entry{
		ID:     id,
		UserID: userID,
		Kind:   store.KindConvert,
		Ref:    id,
		Note:   fmt.Sprintf("%d %s to %s", amount, from, to),
		Delta:  delta,
	})
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	return receipt(rec), nil
}

// Grant credits userID outside of any attempt, e.g. a welcome bonus. ref
// keeps repeated grants idempotent.
func (s *Service) Grant(ctx context.Context, userID, ref, note string, amounts economy.WalletTransaction) (*Receipt, error) {
	if _, short := amounts.Short(); short {
		return nil, ErrInvalidGrant
	}
	if strings.TrimSpace(ref) == "" {
		ref = s.newID()
	}
	rec, err := s.apply(ctx, store.Entry{
		UserID: userID,
		Kind:   store.KindGrant,
		Ref:    ref,
		Note:   note,
		Delta:  amounts,
	})
	if err != nil {
		return nil, fmt.Errorf("grant: %w", err)
	}
	return receipt(rec), nil
}

// History returns up to limit of userID's wallet events, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.EventRecord, error) {
	return s.wallets.History(ctx, userID, store.QueryOpts{Limit: limit})
}

func (s *Service) apply(ctx context.Context, e store.Entry) (*store.EventRecord, error) {
	if e.ID == "" {
		e.ID = s.newID()
	}
	rec, err := s.wallets.Apply(ctx, e)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) || errors.Is(err, store.ErrDuplicateEntry) {
			s.log.Info("wallet entry rejected", "user", e.UserID, "kind", e.Kind, "ref", e.Ref, "err", err)
		}
		return nil, err
	}
	s.log.Debug("wallet entry applied",
		"user", rec.UserID, "kind", rec.Kind, "ref", rec.Ref, "sequence", rec.Sequence,
		"coins", rec.Delta.Coins, "gold", rec.Delta.Gold, "diamonds", rec.Delta.Diamonds)
	return rec, nil
}

func receipt(rec *store.EventRecord) *Receipt {
	return &Receipt{
		TransactionID: rec.ID,
		Sequence:      rec.Sequence,
		UserID:        rec.UserID,
		Kind:          rec.Kind,
		Ref:           rec.Ref,
		Delta:         rec.Delta,
		Balance:       rec.Balance,
		CreatedAt:     rec.CreatedAt,
	}
}
