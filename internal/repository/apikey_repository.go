package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Diyor-ux/star/internal/model"
)

// APIKeyRepo resolves and provisions static service-to-service keys.
type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// ResolveKey looks up an active API key by its raw value. Inactive and
// unknown keys both return ErrNotFound.
func (r *APIKeyRepo) ResolveKey(ctx context.Context, key string) (model.APIKey, error) {
	var (
		k        model.APIKey
		lastUsed sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT key_id, app_name, api_key, permissions, is_active, last_used_at, created_at
		 FROM api_keys WHERE api_key=? AND is_active=1 LIMIT 1`, key).Scan(
		&k.ID, &k.AppName, &k.Key, &k.Permissions, &k.IsActive, &lastUsed, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.APIKey{}, ErrNotFound
	}
	if err != nil {
		return model.APIKey{}, err
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsedAt = &t
	}
	return k, nil
}

// TouchKey records the key's last use. Called as a side effect of
// successful API-key authentication; failures here do not fail the request.
func (r *APIKeyRepo) TouchKey(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at=NOW() WHERE key_id=?", id)
	return err
}

// Create provisions a new key for an application identity.
func (r *APIKeyRepo) Create(ctx context.Context, appName, key string, permissions *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO api_keys (app_name, api_key, permissions) VALUES (?,?,?)",
		appName, key, permissions)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// APIKeyRow is the admin listing projection. Only a short prefix of the
// key material is exposed after creation.
type APIKeyRow struct {
	ID         uint64  `json:"key_id"`
	AppName    string  `json:"app_name"`
	KeyPrefix  string  `json:"key_prefix"`
	IsActive   bool    `json:"is_active"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// List returns all keys, newest first, with truncated key material.
func (r *APIKeyRepo) List(ctx context.Context) ([]APIKeyRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT key_id, app_name, api_key, is_active, last_used_at, created_at
		 FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]APIKeyRow, 0)
	for rows.Next() {
		var (
			k         APIKeyRow
			raw       string
			lastUsed  sql.NullTime
			createdAt time.Time
		)
		if err := rows.Scan(&k.ID, &k.AppName, &raw, &k.IsActive, &lastUsed, &createdAt); err != nil {
			return nil, err
		}
		if len(raw) > 8 {
			raw = raw[:8]
		}
		k.KeyPrefix = raw
		if lastUsed.Valid {
			s := lastUsed.Time.UTC().Format(time.RFC3339)
			k.LastUsedAt = &s
		}
		k.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, k)
	}
	return out, rows.Err()
}
