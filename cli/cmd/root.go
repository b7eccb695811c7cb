/*-------------------------------------------------------------------------
 *
 * root.go
 *    Root command and global flags for approvalctl
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cli/cmd/root.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string
	apiKey string
)

var rootCmd = &cobra.Command{
	Use:   "approvalctl",
	Short: "approvalctl - manage the sensitive-operation approval engine",
	Long: `approvalctl manages the Sysafari approval engine: operation triggers,
approval requests, and the trigger provisioning workflow.

Examples:
  # List pending approvals for the boss role
  approvalctl request pending --role boss

  # Approve a request
  approvalctl request approve <id> --approver u-42 --role boss

  # Register a trigger
  approvalctl trigger create --code SUPPLIER_DELETE --name "Delete supplier" \
      --category business --approver-roles boss,admin

  # File a provisioning request
  approvalctl provision request --module customer --action bulk-delete \
      --name "Customer bulk delete" --requester u-42
`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnvOrDefault("APPROVAL_URL", "http://localhost:8080"), "Approval API URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", getEnvOrDefault("APPROVAL_API_KEY", ""), "Approval API key")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(provisionCmd)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
