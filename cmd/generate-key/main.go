/*-------------------------------------------------------------------------
 *
 * main.go
 *    API key generation tool for the approval server
 *
 * Command-line utility for issuing service API keys with role
 * assignments. The plaintext key is printed exactly once.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cmd/generate-key/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/auth"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/config"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

func main() {
	var (
		serviceID = flag.String("service", "", "Calling service identifier")
		roles     = flag.String("roles", "operator", "Comma-separated roles carried by the key")
		dbHost    = flag.String("db-host", "localhost", "Database host")
		dbPort    = flag.Int("db-port", 5432, "Database port")
		dbName    = flag.String("db-name", "sysafari", "Database name")
		dbUser    = flag.String("db-user", "sysafari", "Database user")
		dbPass    = flag.String("db-pass", "", "Database password")
	)
	flag.Parse()

	roleList := []string{}
	if *roles != "" {
		roleList = strings.Split(*roles, ",")
		for i := range roleList {
			roleList[i] = strings.TrimSpace(roleList[i])
		}
	}

	cfg := config.DefaultConfig()
	cfg.Database.Host = *dbHost
	cfg.Database.Port = *dbPort
	cfg.Database.Database = *dbName
	cfg.Database.User = *dbUser
	if *dbPass != "" {
		cfg.Database.Password = *dbPass
	}

	database, err := db.NewDB(cfg.Database.DSN(), db.PoolConfig{
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to database at %s:%d: %v\n", *dbHost, *dbPort, err)
		os.Exit(1)
	}
	defer database.Close()

	queries := db.NewQueries(database.DB)
	keyManager := auth.NewAPIKeyManager(queries)

	ctx := context.Background()
	var serviceIDPtr *string
	if *serviceID != "" {
		serviceIDPtr = serviceID
	}
	key, apiKey, err := keyManager.GenerateAPIKey(ctx, serviceIDPtr, roleList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to generate API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key generated\n")
	fmt.Printf("  ID:      %s\n", apiKey.ID)
	fmt.Printf("  Prefix:  %s\n", apiKey.KeyPrefix)
	fmt.Printf("  Roles:   %s\n", strings.Join(roleList, ", "))
	fmt.Printf("\n%s\n\n", key)
	fmt.Printf("Store this key now. It cannot be recovered later.\n")
}
