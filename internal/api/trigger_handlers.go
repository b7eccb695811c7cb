/*-------------------------------------------------------------------------
 *
 * trigger_handlers.go
 *    HTTP handlers for trigger registry administration
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/trigger_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

/* TriggerRequest is the body of trigger create and update calls */
type TriggerRequest struct {
	OperationCode    string   `json:"operation_code"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	RequiresApproval bool     `json:"requires_approval"`
	ApprovalLevel    int      `json:"approval_level"`
	ApproverRoles    []string `json:"approver_roles"`
	BusinessModule   string   `json:"business_module"`
	BusinessAction   string   `json:"business_action"`
	TriggerCondition *string  `json:"trigger_condition,omitempty"`
	Active           bool     `json:"active"`
}

func (req *TriggerRequest) validate() *APIError {
	if req.OperationCode == "" {
		return NewError(http.StatusBadRequest, "operation_code is required", nil)
	}
	if req.Name == "" {
		return NewError(http.StatusBadRequest, "name is required", nil)
	}
	switch req.Category {
	case db.CategoryBusiness, db.CategorySystem, db.CategoryFinance:
	default:
		return NewError(http.StatusBadRequest, "category must be business, system or finance", nil)
	}
	if req.RequiresApproval && len(req.ApproverRoles) == 0 {
		return NewError(http.StatusBadRequest, "approver_roles is required for gating triggers", nil)
	}
	if req.TriggerCondition != nil && *req.TriggerCondition != db.ConditionAmountThreshold {
		return NewError(http.StatusBadRequest, "unsupported trigger_condition", nil)
	}
	return nil
}

func (req *TriggerRequest) toModel() *db.OperationTrigger {
	return &db.OperationTrigger{
		OperationCode:    req.OperationCode,
		Name:             req.Name,
		Category:         req.Category,
		RequiresApproval: req.RequiresApproval,
		ApprovalLevel:    req.ApprovalLevel,
		ApproverRoles:    pq.StringArray(req.ApproverRoles),
		BusinessModule:   req.BusinessModule,
		BusinessAction:   req.BusinessAction,
		TriggerCondition: req.TriggerCondition,
		Active:           req.Active,
	}
}

/* CreateTrigger registers a new operation trigger */
func (h *Handlers) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}
	if apiErr := req.validate(); apiErr != nil {
		respondError(w, WrapError(apiErr, requestID))
		return
	}

	trigger := req.toModel()
	if err := h.triggers.CreateTrigger(r.Context(), trigger); err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "trigger creation failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusCreated, trigger)
}

/* GetTrigger fetches one trigger by operation code */
func (h *Handlers) GetTrigger(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	trigger, err := h.triggers.GetTriggerByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "trigger lookup failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, trigger)
}

/* ListTriggers lists registry entries */
func (h *Handlers) ListTriggers(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var active *bool
	if v := r.URL.Query().Get("active"); v != "" {
		b := v == "true"
		active = &b
	}

	triggers, err := h.triggers.ListTriggers(r.Context(), queryString(r, "category"), active,
		queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "trigger listing failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, triggers)
}

/* UpdateTrigger replaces a trigger's policy fields */
func (h *Handlers) UpdateTrigger(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	code := mux.Vars(r)["code"]

	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}
	req.OperationCode = code
	if apiErr := req.validate(); apiErr != nil {
		respondError(w, WrapError(apiErr, requestID))
		return
	}

	trigger := req.toModel()
	if err := h.triggers.UpdateTrigger(r.Context(), trigger); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "trigger update failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, trigger)
}

/* DeactivateTrigger retires a trigger. Triggers are never hard-deleted;
 * existing approval requests keep referring to them. */
func (h *Handlers) DeactivateTrigger(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if err := h.triggers.DeactivateTrigger(r.Context(), mux.Vars(r)["code"]); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "trigger deactivation failed", err), requestID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
