package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
)

var ErrSettingNotFound = errors.New("setting not found")

// Settings are key/value knobs (commission defaults and the like) editable
// without a deploy.
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = $1", key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrSettingNotFound
	case err != nil:
		return "", err
	}
	return value, nil
}

// SettingFloat reads a numeric setting, falling back when the key is absent
// or holds something unparsable.
func (r *Repository) SettingFloat(ctx context.Context, key string, fallback float64) float64 {
	raw, err := r.GetSetting(ctx, key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("WARNING: setting %s holds non-numeric value %q", key, raw)
		return fallback
	}
	return value
}
