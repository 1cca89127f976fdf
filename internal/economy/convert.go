package economy

import (
	"errors"
	"fmt"
)

var ErrInvalidConversion = errors.New("invalid currency conversion")

// Convert returns the wallet change for trading amount units of from into
// the next tier up. Only coin->gold and gold->diamond are allowed, and
// amount must be a positive multiple of the ratio.
func Convert(from, to Currency, amount int64, s *Settings) (WalletTransaction, error) {
	cfg := resolve(s)

	var ratio float64
	switch {
	case from == Coin && to == Gold:
		ratio = cfg.CoinToGold
	case from == Gold && to == Diamond:
		ratio = cfg.GoldToDiamond
	default:
		return WalletTransaction{}, fmt.Errorf("%w: %s to %s", ErrInvalidConversion, from, to)
	}

	r := int64(ratio)
	if r < 1 {
		return WalletTransaction{}, fmt.Errorf("%w: ratio %v", ErrInvalidConversion, ratio)
	}
	if amount <= 0 || amount%r != 0 {
		return WalletTransaction{}, fmt.Errorf("%w: %d %s is not a positive multiple of %d", ErrInvalidConversion, amount, from, r)
	}

	var tx WalletTransaction
	tx.Add(from, -amount)
	tx.Add(to, amount/r)
	return tx, nil
}
