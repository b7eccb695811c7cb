/*-------------------------------------------------------------------------
 *
 * trigger.go
 *    Trigger registry commands for approvalctl
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cli/cmd/trigger.go
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
	triggerCmd = &cobra.Command{
		Use:   "trigger",
		Short: "Manage operation triggers",
	}

	triggerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List operation triggers",
		RunE:  listTriggers,
	}

	triggerCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Register an operation trigger",
		RunE:  createTrigger,
	}

	triggerDeactivateCmd = &cobra.Command{
		Use:   "deactivate [operation-code]",
		Short: "Deactivate an operation trigger",
		Args:  cobra.ExactArgs(1),
		RunE:  deactivateTrigger,
	}

	triggerCode      string
	triggerName      string
	triggerCategory  string
	triggerLevel     int
	triggerRoles     []string
	triggerModule    string
	triggerAction    string
	triggerCondition string
)

func init() {
	triggerCreateCmd.Flags().StringVar(&triggerCode, "code", "", "Operation code")
	triggerCreateCmd.Flags().StringVar(&triggerName, "name", "", "Human-readable trigger name")
	triggerCreateCmd.Flags().StringVar(&triggerCategory, "category", "business", "Category (business, system, finance)")
	triggerCreateCmd.Flags().IntVar(&triggerLevel, "level", 1, "Approval level")
	triggerCreateCmd.Flags().StringSliceVar(&triggerRoles, "approver-roles", nil, "Roles allowed to decide")
	triggerCreateCmd.Flags().StringVar(&triggerModule, "module", "", "Business module")
	triggerCreateCmd.Flags().StringVar(&triggerAction, "action", "", "Business action")
	triggerCreateCmd.Flags().StringVar(&triggerCondition, "condition", "", "Trigger condition (amount_threshold)")
	triggerCreateCmd.MarkFlagRequired("code")
	triggerCreateCmd.MarkFlagRequired("name")
	triggerCreateCmd.MarkFlagRequired("approver-roles")

	triggerCmd.AddCommand(triggerListCmd)
	triggerCmd.AddCommand(triggerCreateCmd)
	triggerCmd.AddCommand(triggerDeactivateCmd)
}

func listTriggers(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	triggers, err := apiClient.ListTriggers()
	if err != nil {
		return fmt.Errorf("failed to list triggers: %w", err)
	}

	if len(triggers) == 0 {
		fmt.Println("No triggers found")
		return nil
	}

	fmt.Println("\nOperation triggers:")
	fmt.Println("─────────────────────────────────────────────────────────")
	for _, t := range triggers {
		state := "active"
		if !t.Active {
			state = "inactive"
		}
		fmt.Printf("  %-28s %-10s %-8s %s\n", t.OperationCode, t.Category, state, t.Name)
		fmt.Printf("    Approvers: %v, Level: %d\n", t.ApproverRoles, t.ApprovalLevel)
	}
	fmt.Println()

	return nil
}

func createTrigger(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	t := &client.Trigger{
		OperationCode:    triggerCode,
		Name:             triggerName,
		Category:         triggerCategory,
		RequiresApproval: true,
		ApprovalLevel:    triggerLevel,
		ApproverRoles:    triggerRoles,
		BusinessModule:   triggerModule,
		BusinessAction:   triggerAction,
		Active:           true,
	}
	if triggerCondition != "" {
		t.TriggerCondition = &triggerCondition
	}

	created, err := apiClient.CreateTrigger(t)
	if err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}

	fmt.Printf("Trigger %s created (%s)\n", created.OperationCode, created.ID)
	return nil
}

func deactivateTrigger(cmd *cobra.Command, args []string) error {
	apiClient := client.NewClient(apiURL, apiKey)

	if err := apiClient.DeactivateTrigger(args[0]); err != nil {
		return fmt.Errorf("failed to deactivate trigger: %w", err)
	}

	fmt.Printf("Trigger %s deactivated\n", args[0])
	return nil
}
