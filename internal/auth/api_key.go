/*-------------------------------------------------------------------------
 *
 * api_key.go
 *    API key issuance and validation
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/auth/api_key.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/lib/pq"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

/* KeyStore is the persistence capability key management runs on */
type KeyStore interface {
	CreateAPIKey(ctx context.Context, key *db.APIKey) error
	GetAPIKeyByPrefix(ctx context.Context, prefix string) (*db.APIKey, error)
	TouchAPIKey(ctx context.Context, key *db.APIKey) error
}

type APIKeyManager struct {
	store KeyStore
}

func NewAPIKeyManager(store KeyStore) *APIKeyManager {
	return &APIKeyManager{store: store}
}

/* GenerateAPIKey issues a new key for a calling service. The plaintext
 * key is returned exactly once; only its hash is stored. */
func (m *APIKeyManager) GenerateAPIKey(ctx context.Context, serviceID *string, roles []string) (string, *db.APIKey, error) {
	/* 32 random bytes = 44 base64 chars */
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}

	key := base64.URLEncoding.EncodeToString(keyBytes)
	keyHash, err := HashAPIKey(key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash key: %w", err)
	}

	apiKey := &db.APIKey{
		KeyHash:   keyHash,
		KeyPrefix: GetKeyPrefix(key),
		ServiceID: serviceID,
		Roles:     pq.StringArray(roles),
		Metadata:  make(db.JSONBMap),
	}

	if err := m.store.CreateAPIKey(ctx, apiKey); err != nil {
		return "", nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return key, apiKey, nil
}

/* ValidateAPIKey resolves and verifies a presented key */
func (m *APIKeyManager) ValidateAPIKey(ctx context.Context, key string) (*db.APIKey, error) {
	prefix := GetKeyPrefix(key)

	apiKey, err := m.store.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		metrics.WarnWithContext(ctx, "API key lookup failed", map[string]interface{}{
			"key_prefix": prefix,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("API key lookup failed: prefix=%s, error=%w", prefix, err)
	}

	if !VerifyAPIKey(key, apiKey.KeyHash) {
		metrics.WarnWithContext(ctx, "API key verification failed", map[string]interface{}{
			"key_prefix": prefix,
		})
		return nil, fmt.Errorf("invalid API key: key verification failed")
	}

	/* Last-used tracking is best effort; a failed touch never fails auth */
	if err := m.store.TouchAPIKey(ctx, apiKey); err != nil {
		metrics.DebugWithContext(ctx, "Failed to record API key use", map[string]interface{}{
			"key_prefix": prefix,
			"error":      err.Error(),
		})
	}

	return apiKey, nil
}

/* HasRole reports whether the key carries a role */
func HasRole(key *db.APIKey, role string) bool {
	for _, r := range key.Roles {
		if r == role {
			return true
		}
	}
	return false
}
