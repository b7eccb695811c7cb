/*-------------------------------------------------------------------------
 *
 * payloads.go
 *    Typed request payload schemas per operation code
 *
 * Request payloads are stored as jsonb but validated against an
 * explicit per-operation-code schema when the approval request is
 * created, so execution never has to trust untyped data.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/execution/payloads.go
 *
 *-------------------------------------------------------------------------
 */

package execution

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

/* Stock gated operation codes of the ERP */
const (
	OpSupplierDelete  = "SUPPLIER_DELETE"
	OpPermissionGrant = "PERMISSION_GRANT"
	OpInvoiceAdjust   = "INVOICE_ADJUST"
)

/* PayloadValidator checks a request payload against its schema */
type PayloadValidator func(data db.JSONBMap) error

var (
	payloadMu         sync.RWMutex
	payloadValidators = make(map[string]PayloadValidator)
)

/* RegisterPayloadSchema registers a validator for an operation code.
 * Operation codes without a schema accept any payload. */
func RegisterPayloadSchema(operationCode string, v PayloadValidator) {
	payloadMu.Lock()
	defer payloadMu.Unlock()
	payloadValidators[operationCode] = v
}

/* ValidatePayload validates data against the schema registered for
 * operationCode, if any */
func ValidatePayload(operationCode string, data db.JSONBMap) error {
	payloadMu.RLock()
	v, ok := payloadValidators[operationCode]
	payloadMu.RUnlock()
	if !ok {
		return nil
	}
	return v(data)
}

/* DecodePayload decodes a stored jsonb payload into a typed struct */
func DecodePayload(data db.JSONBMap, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

/* SupplierDeletePayload parameterizes a deferred supplier deletion */
type SupplierDeletePayload struct {
	SupplierID string `json:"supplierId"`
	Reason     string `json:"reason,omitempty"`
}

/* PermissionGrantPayload parameterizes a deferred permission grant */
type PermissionGrantPayload struct {
	TargetUserID   string `json:"targetUserId"`
	PermissionCode string `json:"permissionCode"`
}

/* InvoiceAdjustPayload parameterizes a deferred invoice adjustment */
type InvoiceAdjustPayload struct {
	InvoiceID string  `json:"invoiceId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

/* RegisterDefaultSchemas registers payload schemas for the stock gated
 * operations. Called once at startup. */
func RegisterDefaultSchemas() {
	RegisterPayloadSchema(OpSupplierDelete, func(data db.JSONBMap) error {
		var p SupplierDeletePayload
		if err := DecodePayload(data, &p); err != nil {
			return err
		}
		if p.SupplierID == "" {
			return fmt.Errorf("supplierId is required")
		}
		return nil
	})

	RegisterPayloadSchema(OpPermissionGrant, func(data db.JSONBMap) error {
		var p PermissionGrantPayload
		if err := DecodePayload(data, &p); err != nil {
			return err
		}
		if p.TargetUserID == "" {
			return fmt.Errorf("targetUserId is required")
		}
		if p.PermissionCode == "" {
			return fmt.Errorf("permissionCode is required")
		}
		return nil
	})

	RegisterPayloadSchema(OpInvoiceAdjust, func(data db.JSONBMap) error {
		var p InvoiceAdjustPayload
		if err := DecodePayload(data, &p); err != nil {
			return err
		}
		if p.InvoiceID == "" {
			return fmt.Errorf("invoiceId is required")
		}
		if p.Amount == 0 {
			return fmt.Errorf("amount is required")
		}
		return nil
	})
}
