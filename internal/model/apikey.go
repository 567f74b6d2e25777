package model

import "time"

// APIKey mirrors the `api_keys` table. API keys are the static
// service-to-service credential path: no expiry, resolved on every request,
// with LastUsedAt updated as a side effect of successful authentication.
type APIKey struct {
	ID          uint64     // api_keys.key_id
	AppName     string     // api_keys.app_name
	Key         string     // api_keys.api_key (unique)
	Permissions *string    // api_keys.permissions (nullable JSON blob)
	IsActive    bool       // api_keys.is_active
	LastUsedAt  *time.Time // api_keys.last_used_at (nullable)
	CreatedAt   time.Time  // api_keys.created_at
}
