/*-------------------------------------------------------------------------
 *
 * client.go
 *    HTTP client for the approval API
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cli/pkg/client/client.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

/* ApprovalRequest mirrors the server's approval record */
type ApprovalRequest struct {
	ID              string                 `json:"id"`
	Category        string                 `json:"category"`
	OperationCode   string                 `json:"operation_code"`
	Title           string                 `json:"title"`
	Amount          *float64               `json:"amount,omitempty"`
	ApplicantID     string                 `json:"applicant_id"`
	Priority        int                    `json:"priority"`
	Status          string                 `json:"status"`
	ApproverID      *string                `json:"approver_id,omitempty"`
	DecisionComment *string                `json:"decision_comment,omitempty"`
	Executed        bool                   `json:"executed"`
	ExecutionResult map[string]interface{} `json:"execution_result,omitempty"`
	ExpiresAt       string                 `json:"expires_at"`
	CreatedAt       string                 `json:"created_at"`
}

/* Trigger mirrors the server's trigger record */
type Trigger struct {
	ID               string   `json:"id"`
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

/* ProvisioningRequest mirrors the server's provisioning record */
type ProvisioningRequest struct {
	ID             string  `json:"id"`
	BusinessModule string  `json:"business_module"`
	BusinessAction string  `json:"business_action"`
	ProposedName   string  `json:"proposed_name"`
	RequesterID    string  `json:"requester_id"`
	Status         string  `json:"status"`
	CompletedBy    *string `json:"completed_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) ListApprovals(status string) ([]ApprovalRequest, error) {
	path := "/api/v1/approvals"
	if status != "" {
		path += "?status=" + status
	}
	var out []ApprovalRequest
	if err := c.getJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PendingQueue(role string) ([]ApprovalRequest, error) {
	var out []ApprovalRequest
	if err := c.getJSON("/api/v1/approvals/pending?role="+role, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetApproval(id string) (*ApprovalRequest, error) {
	var out ApprovalRequest
	if err := c.getJSON("/api/v1/approvals/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Decide(id, decision, approverID, approverRole, commentOrReason string) (*ApprovalRequest, error) {
	body := map[string]interface{}{
		"decision":      decision,
		"approver_id":   approverID,
		"approver_role": approverRole,
	}
	if decision == "rejected" {
		body["reason"] = commentOrReason
	} else if commentOrReason != "" {
		body["comment"] = commentOrReason
	}

	var out ApprovalRequest
	if err := c.postJSON("POST", "/api/v1/approvals/"+id+"/decision", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTriggers() ([]Trigger, error) {
	var out []Trigger
	if err := c.getJSON("/api/v1/triggers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTrigger(t *Trigger) (*Trigger, error) {
	body := map[string]interface{}{
		"operation_code":    t.OperationCode,
		"name":              t.Name,
		"category":          t.Category,
		"requires_approval": t.RequiresApproval,
		"approval_level":    t.ApprovalLevel,
		"approver_roles":    t.ApproverRoles,
		"business_module":   t.BusinessModule,
		"business_action":   t.BusinessAction,
		"active":            t.Active,
	}
	if t.TriggerCondition != nil {
		body["trigger_condition"] = *t.TriggerCondition
	}

	var out Trigger
	if err := c.postJSON("POST", "/api/v1/triggers", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeactivateTrigger(code string) error {
	resp, err := c.makeRequest("DELETE", "/api/v1/triggers/"+code, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) ListProvisioning(status string) ([]ProvisioningRequest, error) {
	path := "/api/v1/triggers/provisioning"
	if status != "" {
		path += "?status=" + status
	}
	var out []ProvisioningRequest
	if err := c.getJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequestProvisioning(module, action, name, requesterID string, approverRoles []string) (*ProvisioningRequest, error) {
	body := map[string]interface{}{
		"business_module": module,
		"business_action": action,
		"proposed_name":   name,
		"requester_id":    requesterID,
	}
	if len(approverRoles) > 0 {
		body["approver_roles"] = approverRoles
	}

	var out ProvisioningRequest
	if err := c.postJSON("POST", "/api/v1/triggers/provisioning", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdvanceProvisioning(id, status, notes, actorID string) (*ProvisioningRequest, error) {
	body := map[string]interface{}{
		"status": status,
	}
	if notes != "" {
		body["notes"] = notes
	}
	if actorID != "" {
		body["actor_id"] = actorID
	}

	var out ProvisioningRequest
	if err := c.postJSON("PUT", "/api/v1/triggers/provisioning/"+id, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.makeRequest("GET", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest(method, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) makeRequest(method, path string, body io.Reader) (*http.Response, error) {
	url := c.baseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
