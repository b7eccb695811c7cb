/*-------------------------------------------------------------------------
 *
 * models.go
 *    Data models for the approval engine
 *
 * Defines operation triggers, approval requests, trigger provisioning
 * requests, users, permissions, notifications, and API keys.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/models.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* Approval request statuses */
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

/* Operation categories */
const (
	CategoryBusiness = "business"
	CategorySystem   = "system"
	CategoryFinance  = "finance"
)

/* Trigger provisioning statuses */
const (
	ProvisioningRequested  = "requested"
	ProvisioningDeveloping = "developing"
	ProvisioningCompleted  = "completed"
	ProvisioningRejected   = "rejected"
)

/* Notification statuses */
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

/* Trigger condition kinds. amount_threshold is the only kind in use:
 * the gate fires only when the context amount meets the configured
 * finance threshold. */
const ConditionAmountThreshold = "amount_threshold"

/* OperationTrigger is the policy record gating one business action.
 * Triggers are never hard-deleted, only deactivated. */
type OperationTrigger struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	OperationCode    string         `db:"operation_code" json:"operation_code"`
	Name             string         `db:"name" json:"name"`
	Category         string         `db:"category" json:"category"`
	RequiresApproval bool           `db:"requires_approval" json:"requires_approval"`
	ApprovalLevel    int            `db:"approval_level" json:"approval_level"`
	ApproverRoles    pq.StringArray `db:"approver_roles" json:"approver_roles"`
	BusinessModule   string         `db:"business_module" json:"business_module"`
	BusinessAction   string         `db:"business_action" json:"business_action"`
	TriggerCondition *string        `db:"trigger_condition" json:"trigger_condition,omitempty"`
	Active           bool           `db:"active" json:"active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

/* ApprovalRequest is one instance of a gated action awaiting or having
 * received a decision. Requests are audit records and are never deleted. */
type ApprovalRequest struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Category      string    `db:"category" json:"category"`
	OperationCode string    `db:"operation_code" json:"operation_code"`
	BusinessID    *string   `db:"business_id" json:"business_id,omitempty"`
	BusinessTable *string   `db:"business_table" json:"business_table,omitempty"`
	Title         string    `db:"title" json:"title"`
	Content       *string   `db:"content" json:"content,omitempty"`
	Amount        *float64  `db:"amount" json:"amount,omitempty"`
	Currency      *string   `db:"currency" json:"currency,omitempty"`
	RequestData   JSONBMap  `db:"request_data" json:"request_data,omitempty"`

	ApplicantID   string  `db:"applicant_id" json:"applicant_id"`
	ApplicantName *string `db:"applicant_name" json:"applicant_name,omitempty"`
	ApplicantRole *string `db:"applicant_role" json:"applicant_role,omitempty"`
	Department    *string `db:"department" json:"department,omitempty"`

	Priority int    `db:"priority" json:"priority"`
	Status   string `db:"status" json:"status"`

	ApproverID      *string    `db:"approver_id" json:"approver_id,omitempty"`
	ApproverName    *string    `db:"approver_name" json:"approver_name,omitempty"`
	ApproverRole    *string    `db:"approver_role" json:"approver_role,omitempty"`
	DecisionComment *string    `db:"decision_comment" json:"decision_comment,omitempty"`
	DecidedAt       *time.Time `db:"decided_at" json:"decided_at,omitempty"`

	Executed        bool       `db:"executed" json:"executed"`
	ExecutedAt      *time.Time `db:"executed_at" json:"executed_at,omitempty"`
	ExecutionResult JSONBMap   `db:"execution_result" json:"execution_result,omitempty"`

	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

/* IsPending reports whether the request is still awaiting a decision */
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == StatusPending
}

/* ApprovalRequestFilter narrows List queries. Nil fields are ignored. */
type ApprovalRequestFilter struct {
	Status        *string
	Category      *string
	OperationCode *string
	ApplicantID   *string
	ApproverID    *string
	Limit         int
	Offset        int
}

/* TriggerProvisioningRequest asks for a new operation code to be wired
 * into the trigger registry. */
type TriggerProvisioningRequest struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BusinessModule string         `db:"business_module" json:"business_module"`
	BusinessAction string         `db:"business_action" json:"business_action"`
	ProposedName   string         `db:"proposed_name" json:"proposed_name"`
	Description    *string        `db:"description" json:"description,omitempty"`
	ApproverRoles  pq.StringArray `db:"approver_roles" json:"approver_roles"`
	RequesterID    string         `db:"requester_id" json:"requester_id"`
	RequesterName  *string        `db:"requester_name" json:"requester_name,omitempty"`
	Status         string         `db:"status" json:"status"`
	DeveloperNotes *string        `db:"developer_notes" json:"developer_notes,omitempty"`
	CompletedBy    *string        `db:"completed_by" json:"completed_by,omitempty"`
	CompletedAt    *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

/* User is a directory entry consumed, not owned, by the engine.
 * SupervisorID is a single-parent pointer; traversals must not trust
 * the chain to be acyclic. */
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        *string   `db:"email"`
	RoleCode     string    `db:"role_code"`
	SupervisorID *string   `db:"supervisor_id"`
	Department   *string   `db:"department"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

/* Permission is a grantable permission code */
type Permission struct {
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Sensitive   bool      `db:"sensitive"`
	CreatedAt   time.Time `db:"created_at"`
}

/* RolePermission links a role code to a permission code */
type RolePermission struct {
	RoleCode       string    `db:"role_code"`
	PermissionCode string    `db:"permission_code"`
	CreatedAt      time.Time `db:"created_at"`
}

/* Notification is one queued message to one recipient */
type Notification struct {
	ID            int64      `db:"id"`
	RecipientID   string     `db:"recipient_id"`
	Title         string     `db:"title"`
	Body          string     `db:"body"`
	CorrelationID uuid.UUID  `db:"correlation_id"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	LastError     *string    `db:"last_error"`
	CreatedAt     time.Time  `db:"created_at"`
	SentAt        *time.Time `db:"sent_at"`
}

/* APIKey authenticates calling services */
type APIKey struct {
	ID         uuid.UUID      `db:"id"`
	KeyHash    string         `db:"key_hash"`
	KeyPrefix  string         `db:"key_prefix"`
	ServiceID  *string        `db:"service_id"`
	Roles      pq.StringArray `db:"roles"`
	Metadata   JSONBMap       `db:"metadata"`
	Active     bool           `db:"active"`
	CreatedAt  time.Time      `db:"created_at"`
	LastUsedAt *time.Time     `db:"last_used_at"`
}
