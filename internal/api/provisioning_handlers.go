/*-------------------------------------------------------------------------
 *
 * provisioning_handlers.go
 *    HTTP handlers for the trigger provisioning workflow
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/provisioning_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/provisioning"
)

/* ProvisioningRequest is the body of a provisioning filing */
type ProvisioningRequest struct {
	BusinessModule string   `json:"business_module"`
	BusinessAction string   `json:"business_action"`
	ProposedName   string   `json:"proposed_name"`
	Description    *string  `json:"description,omitempty"`
	ApproverRoles  []string `json:"approver_roles,omitempty"`
	RequesterID    string   `json:"requester_id"`
	RequesterName  *string  `json:"requester_name,omitempty"`
}

/* RequestProvisioning files a provisioning request for an ungated
 * (module, action) pair */
func (h *Handlers) RequestProvisioning(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req ProvisioningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}

	record, err := h.workflow.Request(r.Context(), provisioning.RequestParams{
		BusinessModule: req.BusinessModule,
		BusinessAction: req.BusinessAction,
		ProposedName:   req.ProposedName,
		Description:    req.Description,
		ApproverRoles:  req.ApproverRoles,
		RequesterID:    req.RequesterID,
		RequesterName:  req.RequesterName,
	})
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

/* AdvanceRequest is the body of a provisioning status transition */
type AdvanceRequest struct {
	Status  string  `json:"status"`
	Notes   *string `json:"notes,omitempty"`
	ActorID string  `json:"actor_id,omitempty"`
}

/* AdvanceProvisioning transitions a provisioning request. Completion
 * materializes the trigger. */
func (h *Handlers) AdvanceProvisioning(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid provisioning request ID", err), requestID))
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}

	record, err := h.workflow.Advance(r.Context(), id, req.Status, req.Notes, req.ActorID)
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

/* GetProvisioning fetches one provisioning request */
func (h *Handlers) GetProvisioning(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid provisioning request ID", err), requestID))
		return
	}

	record, err := h.workflow.Get(r.Context(), id)
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

/* ListProvisioning lists provisioning requests newest first */
func (h *Handlers) ListProvisioning(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	records, err := h.workflow.List(r.Context(), queryString(r, "status"),
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, records)
}
