/*-------------------------------------------------------------------------
 *
 * provision.go
 *    Trigger provisioning commands for approvalctl
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cli/cmd/provision.go
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
	provisionCmd = &cobra.Command{
		Use:   "provision",
		Short: "Manage trigger provisioning requests",
	}

	provisionListCmd = &cobra.Command{
		Use:   "list",
		Short: "List provisioning requests",
		RunE:  listProvisioning,
	}

	provisionRequestCmd = &cobra.Command{
		Use:   "request",
		Short: "File a provisioning request for an ungated operation",
		RunE:  fileProvisioning,
	}

	provisionAdvanceCmd = &cobra.Command{
		Use:   "advance [request-id]",
		Short: "Advance a provisioning request (developing, completed, rejected)",
		Args:  cobra.ExactArgs(1),
		RunE:  advanceProvisioning,
	}

	provListStatus   string
	provModule       string
	provAction       string
	provName         string
	provRequester    string
	provApproverList []string
	provToStatus     string
	provNotes        string
	provActor        string
)

func init() {
	provisionListCmd.Flags().StringVar(&provListStatus, "status", "", "Filter by status")

	provisionRequestCmd.Flags().StringVar(&provModule, "module", "", "Business module")
	provisionRequestCmd.Flags().StringVar(&provAction, "action", "", "Business action")
	provisionRequestCmd.Flags().StringVar(&provName, "name", "", "Proposed trigger name")
	provisionRequestCmd.Flags().StringVar(&provRequester, "requester", "", "Requester user ID")
	provisionRequestCmd.Flags().StringSliceVar(&provApproverList, "approver-roles", nil, "Proposed approver roles")
	provisionRequestCmd.MarkFlagRequired("module")
	provisionRequestCmd.MarkFlagRequired("action")
	provisionRequestCmd.MarkFlagRequired("name")
	provisionRequestCmd.MarkFlagRequired("requester")

	provisionAdvanceCmd.Flags().StringVar(&provToStatus, "to", "", "Target status (developing, completed, rejected)")
	provisionAdvanceCmd.Flags().StringVar(&provNotes, "notes", "", "Developer notes")
	provisionAdvanceCmd.Flags().StringVar(&provActor, "actor", "", "Acting user ID (required for terminal transitions)")
	provisionAdvanceCmd.MarkFlagRequired("to")

	provisionCmd.AddCommand(provisionListCmd)
	provisionCmd.AddCommand(provisionRequestCmd)
	provisionCmd.AddCommand(provisionAdvanceCmd)
}

func listProvisioning(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	requests, err := apiClient.ListProvisioning(provListStatus)
	if err != nil {
		return fmt.Errorf("failed to list provisioning requests: %w", err)
	}

	if len(requests) == 0 {
		fmt.Println("No provisioning requests found")
		return nil
	}

	fmt.Println("\nProvisioning requests:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, req := range requests {
		fmt.Printf("  %-36s %-11s %s/%s\n", req.ID, req.Status, req.BusinessModule, req.BusinessAction)
		fmt.Printf("    Name: %s, Requester: %s\n", req.ProposedName, req.RequesterID)
	}
	fmt.Println()

	return nil
}

func fileProvisioning(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	req, err := apiClient.RequestProvisioning(provModule, provAction, provName, provRequester, provApproverList)
	if err != nil {
		return fmt.Errorf("failed to file provisioning request: %w", err)
	}

	fmt.Printf("Provisioning request %s filed (%s/%s)\n", req.ID, req.BusinessModule, req.BusinessAction)
	return nil
}

func advanceProvisioning(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	req, err := apiClient.AdvanceProvisioning(args[0], provToStatus, provNotes, provActor)
	if err != nil {
		return fmt.Errorf("failed to advance provisioning request: %w", err)
	}

	fmt.Printf("Provisioning request %s is now %s\n", req.ID, req.Status)
	if req.Status == "completed" {
		fmt.Println("Trigger materialized in the registry")
	}
	return nil
}
