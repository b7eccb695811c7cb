/*-------------------------------------------------------------------------
 *
 * approval_handlers.go
 *    HTTP handlers for approval requests
 *
 * Covers the gate endpoint business modules call before sensitive
 * mutations, direct creation, decisions, listing and the pending queue.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/approval_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

/* CreateApprovalRequest is the body of gate and create calls */
type CreateApprovalRequest struct {
	OperationCode string                 `json:"operation_code"`
	Category      string                 `json:"category,omitempty"`
	Title         string                 `json:"title"`
	Content       *string                `json:"content,omitempty"`
	BusinessID    *string                `json:"business_id,omitempty"`
	BusinessTable *string                `json:"business_table,omitempty"`
	Amount        *float64               `json:"amount,omitempty"`
	Currency      *string                `json:"currency,omitempty"`
	RequestData   map[string]interface{} `json:"request_data,omitempty"`
	ApplicantID   string                 `json:"applicant_id"`
	ApplicantName *string                `json:"applicant_name,omitempty"`
	ApplicantRole *string                `json:"applicant_role,omitempty"`
	Department    *string                `json:"department,omitempty"`
	Priority      int                    `json:"priority,omitempty"`
}

func (req *CreateApprovalRequest) toParams() approval.CreateParams {
	return approval.CreateParams{
		OperationCode: req.OperationCode,
		Category:      req.Category,
		Title:         req.Title,
		Content:       req.Content,
		BusinessID:    req.BusinessID,
		BusinessTable: req.BusinessTable,
		Amount:        req.Amount,
		Currency:      req.Currency,
		RequestData:   req.RequestData,
		ApplicantID:   req.ApplicantID,
		ApplicantName: req.ApplicantName,
		ApplicantRole: req.ApplicantRole,
		Department:    req.Department,
		Priority:      req.Priority,
	}
}

/* GateResponse tells the caller whether its operation may proceed */
type GateResponse struct {
	NeedsApproval bool                `json:"needs_approval"`
	Approval      *db.ApprovalRequest `json:"approval,omitempty"`
	PolicyError   string              `json:"policy_error,omitempty"`
}

/* Gate is the single entry point business modules call before a
 * sensitive mutation */
func (h *Handlers) Gate(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req CreateApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}

	result, err := h.service.CheckAndCreate(r.Context(), req.OperationCode, req.toParams())
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	resp := GateResponse{
		NeedsApproval: result.NeedsApproval,
		Approval:      result.Approval,
	}
	if result.Err != nil {
		resp.PolicyError = result.Err.Error()
	}

	status := http.StatusOK
	if result.NeedsApproval {
		status = http.StatusAccepted
	}
	respondJSON(w, status, resp)
}

/* CreateApproval creates an approval request unconditionally, without
 * consulting the trigger registry */
func (h *Handlers) CreateApproval(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req CreateApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}

	record, err := h.service.Create(r.Context(), req.toParams())
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

/* DecisionRequest is the body of the decision endpoint */
type DecisionRequest struct {
	Decision     string  `json:"decision"`
	ApproverID   string  `json:"approver_id"`
	ApproverName *string `json:"approver_name,omitempty"`
	ApproverRole *string `json:"approver_role,omitempty"`
	Comment      *string `json:"comment,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

/* Decide approves or rejects a pending request */
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid approval request ID", err), requestID))
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}

	var record *db.ApprovalRequest
	switch req.Decision {
	case db.StatusApproved:
		record, err = h.service.Approve(r.Context(), id, req.ApproverID, req.ApproverName, req.ApproverRole, req.Comment)
	case db.StatusRejected:
		record, err = h.service.Reject(r.Context(), id, req.ApproverID, req.ApproverName, req.ApproverRole, req.Reason)
	default:
		respondError(w, WrapError(NewError(http.StatusBadRequest, "decision must be approved or rejected", nil), requestID))
		return
	}

	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

/* GetApproval fetches one approval request */
func (h *Handlers) GetApproval(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid approval request ID", err), requestID))
		return
	}

	record, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

/* ListApprovals lists approval requests newest first */
func (h *Handlers) ListApprovals(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	filter := db.ApprovalRequestFilter{
		Status:        queryString(r, "status"),
		Category:      queryString(r, "category"),
		OperationCode: queryString(r, "operation_code"),
		ApplicantID:   queryString(r, "applicant_id"),
		ApproverID:    queryString(r, "approver_id"),
		Limit:         queryInt(r, "limit", 50),
		Offset:        queryInt(r, "offset", 0),
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, records)
}

/* PendingQueue returns the approver-facing queue for a role */
func (h *Handlers) PendingQueue(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	role := r.URL.Query().Get("role")
	if role == "" {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "role query parameter is required", nil), requestID))
		return
	}

	records, err := h.service.PendingQueue(r.Context(), role, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, FromServiceError(err, requestID))
		return
	}

	respondJSON(w, http.StatusOK, records)
}

func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
