/*-------------------------------------------------------------------------
 *
 * hasher.go
 *    Cryptographic hashing for service API keys
 *
 * Provides bcrypt-based hashing for API key storage and verification.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/auth/hasher.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is set to 14 (16,384 rounds). Cost 12 is no longer
// sufficient against modern hardware.
const bcryptCost = 14

/* HashAPIKey hashes an API key using bcrypt */
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

/* VerifyAPIKey verifies an API key against its hash */
func VerifyAPIKey(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}

/* GetKeyPrefix returns the first 8 characters of a key for lookup */
func GetKeyPrefix(key string) string {
	if len(key) < 8 {
		return key
	}
	return key[:8]
}
