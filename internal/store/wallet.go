package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var eventColumns = []string{
	"id", "sequence", "user_id", "kind", "ref",
	"coins", "gold", "diamonds",
	"balance_coins", "balance_gold", "balance_diamonds",
	"note", "created_at",
}

type walletRepo struct {
	s *Store
}

func (r *walletRepo) Balance(ctx context.Context, userID string) (Balance, error) {
	b, err := r.balance(ctx, r.s.db, userID, false)
	if err != nil {
		return Balance{}, fmt.Errorf("query balance: %w", err)
	}
	return b, nil
}

func (r *walletRepo) balance(ctx context.Context, q querier, userID string, lock bool) (Balance, error) {
	sel := r.s.builder().
		Select("coins", "gold", "diamonds", "updated_at").
		From(entsql.Table("wallets")).
		Where(entsql.EQ("user_id", userID))
	if lock && r.s.driver == Postgres {
		sel.ForUpdate()
	}
	query, args := sel.Query()

	b := Balance{UserID: userID}
	var updated int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&b.Coins, &b.Gold, &b.Diamonds, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return Balance{}, err
	}
	b.UpdatedAt = time.UnixMilli(updated)
	return b, nil
}

func (r *walletRepo) Apply(ctx context.Context, e Entry) (_ *EventRecord, err error) {
	if e.ID == "" || e.UserID == "" || e.Kind == "" || e.Ref == "" {
		return nil, fmt.Errorf("%w: id, user, kind and ref are required", ErrInvalidEntry)
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := r.s.now().UTC()
	b := r.s.builder()

	// Create the wallet row up front so there is always a row to lock.
	query, args := b.Insert("wallets").
		Columns("user_id", "coins", "gold", "diamonds", "updated_at").
		Values(e.UserID, 0, 0, 0, now.UnixMilli()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	bal, err := r.balance(ctx, tx, e.UserID, true)
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}

	dup, err := r.exists(ctx, tx, e)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return nil, fmt.Errorf("%w: %s %s for %s", ErrDuplicateEntry, e.Kind, e.Ref, e.UserID)
	}

	after := bal.WalletTransaction.Plus(e.Delta)
	if c, short := after.Short(); short {
		return nil, fmt.Errorf("%w: %s needs %d %s, has %d",
			ErrInsufficientFunds, e.UserID, -e.Delta.Amount(c), c, bal.Amount(c))
	}

	query, args = b.Update("wallets").
		Add("coins", e.Delta.Coins).
		Add("gold", e.Delta.Gold).
		Add("diamonds", e.Delta.Diamonds).
		Set("updated_at", now.UnixMilli()).
		Where(entsql.EQ("user_id", e.UserID)).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update wallet: %w", err)
	}

	seq, err := r.s.seq.Next(ctx, tx)
	if err != nil {
		return nil, err
	}

	rec := &EventRecord{
		ID:        e.ID,
		Sequence:  seq,
		UserID:    e.UserID,
		Kind:      e.Kind,
		Ref:       e.Ref,
		Note:      e.Note,
		Delta:     e.Delta,
		Balance:   after,
		CreatedAt: time.UnixMilli(now.UnixMilli()),
	}
	query, args = b.Insert("wallet_events").
		Columns(eventColumns...).
		Values(rec.ID, rec.Sequence, rec.UserID, string(rec.Kind), rec.Ref,
			rec.Delta.Coins, rec.Delta.Gold, rec.Delta.Diamonds,
			after.Coins, after.Gold, after.Diamonds,
			rec.Note, now.UnixMilli()).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("append wallet event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func (r *walletRepo) exists(ctx context.Context, q querier, e Entry) (bool, error) {
	query, args := r.s.builder().
		Select("id").
		From(entsql.Table("wallet_events")).
		Where(entsql.And(
			entsql.EQ("user_id", e.UserID),
			entsql.EQ("kind", string(e.Kind)),
			entsql.EQ("ref", e.Ref),
		)).
		Limit(1).
		Query()
	var id string
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *walletRepo) History(ctx context.Context, userID string, opts QueryOpts) ([]EventRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixMilli()))
	}

	sel := r.s.builder().
		Select(eventColumns...).
		From(entsql.Table("wallet_events")).
		Where(entsql.And(preds...)).
		OrderBy(r.s.desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wallet events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec     EventRecord
			kind    string
			created int64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &rec.UserID, &kind, &rec.Ref,
			&rec.Delta.Coins, &rec.Delta.Gold, &rec.Delta.Diamonds,
			&rec.Balance.Coins, &rec.Balance.Gold, &rec.Balance.Diamonds,
			&rec.Note, &created)
		if err != nil {
			return nil, fmt.Errorf("scan wallet event: %w", err)
		}
		rec.Kind = EntryKind(kind)
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet events: %w", err)
	}
	return out, nil
}
