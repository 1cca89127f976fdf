package store

import (
	"context"
	"fmt"
	"sort"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/nalanda-edu/nalanda/internal/economy"
)

type settingsRepo struct {
	s *Store
}

func (r *settingsRepo) Load(ctx context.Context) (economy.Overrides, error) {
	query, args := r.s.builder().
		Select("key", "value").
		From(entsql.Table("economy_settings")).
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return economy.Overrides{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var o economy.Overrides
	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return economy.Overrides{}, fmt.Errorf("scan setting: %w", err)
		}
		// Keys dropped from the economy are ignored.
		_ = o.SetField(key, value)
	}
	if err := rows.Err(); err != nil {
		return economy.Overrides{}, fmt.Errorf("iterate settings: %w", err)
	}
	return o, nil
}

func (r *settingsRepo) Save(ctx context.Context, o economy.Overrides) (err error) {
	fields := o.Fields()
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, k := range keys {
		query, args := r.s.builder().
			Insert("economy_settings").
			Columns("key", "value").
			Values(k, fields[k]).
			OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
			Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *settingsRepo) Reset(ctx context.Context) error {
	query, args := r.s.builder().Delete("economy_settings").Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}
