/*-------------------------------------------------------------------------
 *
 * main.go
 *    CLI tool for approval engine management
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cmd/approvalctl/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"github.com/FrankZheng1985/sysafari-logistics-sub010/cli/cmd"
)

func main() {
	cmd.Execute()
}
