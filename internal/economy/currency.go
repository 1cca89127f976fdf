package economy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nalanda-edu/nalanda/internal/content"
)

// Currency is a wallet balance. Spark is not one: spark rewards convert to
// coins as they are earned.
type Currency uint8

const (
	Coin Currency = iota + 1
	Gold
	Diamond
)

var ErrUnknownCurrency = errors.New("unknown currency")

var currencyNames = [...]string{
	Coin:    "coin",
	Gold:    "gold",
	Diamond: "diamond",
}

// AllCurrencies returns the wallet currencies from lowest to highest tier.
func AllCurrencies() []Currency {
	return []Currency{Coin, Gold, Diamond}
}

func (c Currency) String() string {
	if c >= Coin && c <= Diamond {
		return currencyNames[c]
	}
	return fmt.Sprintf("currency(%d)", uint8(c))
}

// ParseCurrency accepts a currency name, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCurrencies() {
		if currencyNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

func (c Currency) MarshalText() ([]byte, error) {
	if c < Coin || c > Diamond {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCurrency, uint8(c))
	}
	return []byte(currencyNames[c]), nil
}

func (c *Currency) UnmarshalText(b []byte) error {
	parsed, err := ParseCurrency(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// currencyFor maps a question's currency type to the wallet bucket it
// credits or debits.
func currencyFor(t content.CurrencyType) (Currency, bool) {
	switch t {
	case content.CurrencySpark, content.CurrencyCoin:
		return Coin, true
	case content.CurrencyGold:
		return Gold, true
	case content.CurrencyDiamond:
		return Diamond, true
	default:
		return 0, false
	}
}

// WalletTransaction is a signed change to each wallet bucket.
type WalletTransaction struct {
	Coins    int64 `json:"coins"`
	Gold     int64 `json:"gold"`
	Diamonds int64 `json:"diamonds"`
}

func (t *WalletTransaction) field(c Currency) *int64 {
	switch c {
	case Coin:
		return &t.Coins
	case Gold:
		return &t.Gold
	case Diamond:
		return &t.Diamonds
	default:
		return nil
	}
}

// Add adds n to the bucket of c.
func (t *WalletTransaction) Add(c Currency, n int64) {
	if f := t.field(c); f != nil {
		*f += n
	}
}

// Amount returns the bucket of c.
func (t WalletTransaction) Amount(c Currency) int64 {
	if f := t.field(c); f != nil {
		return *f
	}
	return 0
}

// IsZero reports whether no bucket changes.
func (t WalletTransaction) IsZero() bool {
	return t == WalletTransaction{}
}

// Neg returns the opposite change.
func (t WalletTransaction) Neg() WalletTransaction {
	return WalletTransaction{Coins: -t.Coins, Gold: -t.Gold, Diamonds: -t.Diamonds}
}

// Plus returns the bucket-wise sum of t and o.
func (t WalletTransaction) Plus(o WalletTransaction) WalletTransaction {
	return WalletTransaction{
		Coins:    t.Coins + o.Coins,
		Gold:     t.Gold + o.Gold,
		Diamonds: t.Diamonds + o.Diamonds,
	}
}

// Short returns the first currency whose bucket is negative.
func (t WalletTransaction) Short() (Currency, bool) {
	for _, c := range AllCurrencies() {
		if t.Amount(c) < 0 {
			return c, true
		}
	}
	return 0, false
}

// Rewards holds the strictly positive amounts earned per currency.
type Rewards map[Currency]int64

// Transaction returns the rewards as a wallet credit.
func (r Rewards) Transaction() WalletTransaction {
	var tx WalletTransaction
	for c, n := range r {
		tx.Add(c, n)
	}
	return tx
}
