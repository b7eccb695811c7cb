/*-------------------------------------------------------------------------
 *
 * request.go
 *    Approval request commands for approvalctl
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cli/cmd/request.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/cli/pkg/client"
)

var (
	requestCmd = &cobra.Command{
		Use:   "request",
		Short: "Manage approval requests",
	}

	requestListCmd = &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
		RunE:  listRequests,
	}

	requestPendingCmd = &cobra.Command{
		Use:   "pending",
		Short: "Show the pending queue for a role",
		RunE:  pendingRequests,
	}

	requestShowCmd = &cobra.Command{
		Use:   "show [request-id]",
		Short: "Show approval request details",
		Args:  cobra.ExactArgs(1),
		RunE:  showRequest,
	}

	requestApproveCmd = &cobra.Command{
		Use:   "approve [request-id]",
		Short: "Approve a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  approveRequest,
	}

	requestRejectCmd = &cobra.Command{
		Use:   "reject [request-id]",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  rejectRequest,
	}

	listStatus    string
	queueRole     string
	approverID    string
	approverRole  string
	decideComment string
	rejectReason  string
)

func init() {
	requestListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending, approved, rejected)")
	requestPendingCmd.Flags().StringVar(&queueRole, "role", "", "Approver role")
	requestPendingCmd.MarkFlagRequired("role")

	requestApproveCmd.Flags().StringVar(&approverID, "approver", "", "Approver user ID")
	requestApproveCmd.Flags().StringVar(&approverRole, "role", "", "Approver role")
	requestApproveCmd.Flags().StringVar(&decideComment, "comment", "", "Decision comment")
	requestApproveCmd.MarkFlagRequired("approver")
	requestApproveCmd.MarkFlagRequired("role")

	requestRejectCmd.Flags().StringVar(&approverID, "approver", "", "Approver user ID")
	requestRejectCmd.Flags().StringVar(&approverRole, "role", "", "Approver role")
	requestRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Rejection reason (required)")
	requestRejectCmd.MarkFlagRequired("approver")
	requestRejectCmd.MarkFlagRequired("role")
	requestRejectCmd.MarkFlagRequired("reason")

	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestPendingCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestApproveCmd)
	requestCmd.AddCommand(requestRejectCmd)
}

func listRequests(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	requests, err := apiClient.ListApprovals(listStatus)
	if err != nil {
		return fmt.Errorf("failed to list approval requests: %w", err)
	}

	printRequests(requests)
	return nil
}

func pendingRequests(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	requests, err := apiClient.PendingQueue(queueRole)
	if err != nil {
		return fmt.Errorf("failed to fetch pending queue: %w", err)
	}

	printRequests(requests)
	return nil
}

func printRequests(requests []client.ApprovalRequest) {
	if len(requests) == 0 {
		fmt.Println("No approval requests found")
		return
	}

	fmt.Println("\nApproval requests:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, req := range requests {
		fmt.Printf("  %-36s %-10s %s\n", req.ID, req.Status, req.Title)
		fmt.Printf("    Operation: %s, Applicant: %s, Priority: %d\n",
			req.OperationCode, req.ApplicantID, req.Priority)
		if req.Amount != nil {
			fmt.Printf("    Amount: %.2f\n", *req.Amount)
		}
	}
	fmt.Println()
}

func showRequest(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	req, err := apiClient.GetApproval(args[0])
	if err != nil {
		return fmt.Errorf("failed to get approval request: %w", err)
	}

	fmt.Printf("\nApproval request %s\n", req.ID)
	fmt.Println("─────────────────────────────────────────────────────────")
	fmt.Printf("Title:      %s\n", req.Title)
	fmt.Printf("Operation:  %s (%s)\n", req.OperationCode, req.Category)
	fmt.Printf("Status:     %s\n", req.Status)
	fmt.Printf("Applicant:  %s\n", req.ApplicantID)
	if req.Amount != nil {
		fmt.Printf("Amount:     %.2f\n", *req.Amount)
	}
	if req.ApproverID != nil {
		fmt.Printf("Approver:   %s\n", *req.ApproverID)
	}
	if req.DecisionComment != nil {
		fmt.Printf("Comment:    %s\n", *req.DecisionComment)
	}
	fmt.Printf("Executed:   %v\n", req.Executed)
	fmt.Printf("Expires:    %s\n", req.ExpiresAt)
	fmt.Printf("Created:    %s\n", req.CreatedAt)
	fmt.Println()

	return nil
}

func approveRequest(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	req, err := apiClient.Decide(args[0], "approved", approverID, approverRole, decideComment)
	if err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}

	fmt.Printf("Request %s approved (executed: %v)\n", req.ID, req.Executed)
	return nil
}

func rejectRequest(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	req, err := apiClient.Decide(args[0], "rejected", approverID, approverRole, rejectReason)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}

	fmt.Printf("Request %s rejected\n", req.ID)
	return nil
}
