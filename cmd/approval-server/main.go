/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for the approval server
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/cmd/approval-server/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/api"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/auth"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/config"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/delegation"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/execution"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/notify"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/policy"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/provisioning"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion      = flag.Bool("version", false, "Show version information")
		showVersionShort = flag.Bool("v", false, "Show version information (short)")
		configPath       = flag.String("c", "", "Path to configuration file")
		configPathLong   = flag.String("config", "", "Path to configuration file")
		showHelp         = flag.Bool("help", false, "Show help message")
		showHelpShort    = flag.Bool("h", false, "Show help message (short)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sysafari Approval Server - sensitive-operation approval engine\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start server with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml     Start server with custom config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version          Show version information\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConfiguration:\n")
		fmt.Fprintf(os.Stderr, "  Configuration can be provided via:\n")
		fmt.Fprintf(os.Stderr, "  - Command line flag: -c or --config\n")
		fmt.Fprintf(os.Stderr, "  - Environment variable: CONFIG_PATH\n")
		fmt.Fprintf(os.Stderr, "  - Environment variables (see config package for details)\n")
	}
	flag.Parse()

	if *showVersion || *showVersionShort {
		fmt.Printf("approval-server version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}

	if *showHelp || *showHelpShort {
		flag.Usage()
		os.Exit(0)
	}

	/* Load configuration */
	cfg := config.DefaultConfig()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}

	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v, using defaults\n", err)
		}
	} else {
		config.LoadFromEnv(cfg)
	}

	/* Initialize logging */
	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	/* Connect to database */
	database, err := db.NewDBWithRetry(cfg.Database.DSN(), db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, 5, 2*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Connection: host=%s port=%d user=%s dbname=%s\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
		os.Exit(1)
	}
	defer database.Close()

	/* Run migrations */
	migrationRunner, err := db.NewMigrationRunner(database.DB, "./migrations")
	if err == nil {
		if err := migrationRunner.Run(context.Background()); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	/* Initialize components */
	queries := db.NewQueries(database.DB)
	hierarchy := roles.FromConfig(cfg.Roles)

	evaluator := policy.NewEvaluator(queries, cfg.Approval.FinanceAmountThreshold)
	checker := delegation.NewChecker(queries, hierarchy)
	dispatcher := execution.NewDispatcher(queries)
	execution.RegisterDefaultSchemas()
	execution.RegisterBuiltinHandlers(dispatcher, queries)
	notifier := notify.NewDispatcher(queries)

	service := approval.NewService(queries, queries, evaluator, checker, dispatcher, notifier,
		hierarchy, cfg.Approval)
	workflow := provisioning.NewWorkflow(queries)

	/* Initialize API */
	keyManager := auth.NewAPIKeyManager(queries)
	handlers := api.NewHandlers(service, workflow, queries, database.HealthCheck)
	router := api.NewRouter(handlers, keyManager)

	/* Start notification delivery worker */
	webhook := notify.NewWebhookSink(cfg.Notifications.Webhook.URL, cfg.Notifications.Webhook.Timeout)
	email := notify.NewEmailSink(cfg.Notifications.SMTP.Host, cfg.Notifications.SMTP.Port,
		cfg.Notifications.SMTP.User, cfg.Notifications.SMTP.Password, cfg.Notifications.SMTP.From)
	worker := notify.NewWorker(queries, webhook, email, cfg.Notifications.Workers, cfg.Notifications.PollInterval)
	worker.Start()
	defer worker.Stop()

	/* Start server */
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("Server starting on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "FATAL: Server failed to start on %s: %v\n", addr, err)
			os.Exit(1)
		}
	}()

	/* Wait for interrupt signal */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
