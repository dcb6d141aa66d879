package repository

import (
	"context"
	"database/sql"

	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// SettingRepo is the persistent source of truth behind the settings
// cache. The cache is refreshed wholesale from FindAll; writes go through
// Upsert and become visible to readers only after an explicit refresh.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo returns a new SettingRepo bound to the given database.
func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// FindAll loads every setting row.
func (r *SettingRepo) FindAll(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key_name, value, description, updated_at FROM settings ORDER BY key_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Setting, 0)
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.ID, &s.KeyName, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes one key/value pair, inserting the row when the key is new.
// The description of an existing row is left untouched.
func (r *SettingRepo) Upsert(ctx context.Context, key, value string) error {
	const q = `INSERT INTO settings (key_name, value) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = UTC_TIMESTAMP()`
	_, err := r.db.ExecContext(ctx, q, key, value)
	return err
}
