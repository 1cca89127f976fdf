package store

import (
	"context"
	"fmt"
)

// sequenceCounter hands out the global monotonic sequence stamped on every
// wallet event. Wallet events from all users share it, so History pages and
// audit exports can be merged and resumed by sequence alone.
//
// Next runs on the transaction that appends the event: a rolled back append
// also rolls back the counter, and the row lock taken by the UPDATE
// serializes concurrent writers at the database level.
type sequenceCounter struct{}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
