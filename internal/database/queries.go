package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Error definitions
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// GetSetting retrieves a setting value
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting setting %s: %w", key, err)
	}
	return value, nil
}

// GetSettingInt retrieves an integer setting value
func (db *DB) GetSettingInt(ctx context.Context, key string) (int, error) {
	value, err := db.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("setting %s is not an integer: %w", key, err)
	}
	return n, nil
}

// UpdateSetting inserts or updates a setting value
func (db *DB) UpdateSetting(ctx context.Context, key, value, valueType string) error {
	if key == "" {
		return ErrInvalidInput
	}
	_, err := db.ExecContext(ctx, `
        INSERT INTO settings (key, value, type, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            type = excluded.type,
            updated_at = CURRENT_TIMESTAMP
    `, key, value, valueType)
	if err != nil {
		return fmt.Errorf("error updating setting %s: %w", key, err)
	}
	return nil
}
