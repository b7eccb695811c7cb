/*-------------------------------------------------------------------------
 *
 * api_key_queries.go
 *    Database queries for service API keys
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/api_key_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

/* API key queries */
const (
	createAPIKeyQuery = `
		INSERT INTO sysafari_approval.api_keys
		(key_hash, key_prefix, service_id, roles, metadata, active)
		VALUES ($1, $2, $3, $4, $5::jsonb, true)
		RETURNING id, created_at`

	getAPIKeyByPrefixQuery = `
		SELECT * FROM sysafari_approval.api_keys
		WHERE key_prefix = $1 AND active = true`

	touchAPIKeyQuery = `
		UPDATE sysafari_approval.api_keys SET last_used_at = NOW() WHERE id = $1`
)

func (q *Queries) CreateAPIKey(ctx context.Context, key *APIKey) error {
	metadataValue, err := key.Metadata.Value()
	if err != nil {
		return fmt.Errorf("failed to convert metadata: %w", err)
	}

	err = q.DB.GetContext(ctx, key, createAPIKeyQuery,
		key.KeyHash, key.KeyPrefix, key.ServiceID, key.Roles, metadataValue)
	if err != nil {
		return fmt.Errorf("API key creation failed: %w", err)
	}
	return nil
}

func (q *Queries) GetAPIKeyByPrefix(ctx context.Context, prefix string) (*APIKey, error) {
	var key APIKey
	err := q.DB.GetContext(ctx, &key, getAPIKeyByPrefixQuery, prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("API key with prefix %s: %w", prefix, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("API key lookup failed: prefix=%s, error=%w", prefix, err)
	}
	return &key, nil
}

func (q *Queries) TouchAPIKey(ctx context.Context, key *APIKey) error {
	_, err := q.DB.ExecContext(ctx, touchAPIKeyQuery, key.ID)
	if err != nil {
		return fmt.Errorf("failed to touch API key: %w", err)
	}
	return nil
}
