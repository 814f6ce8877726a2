package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/entrypoint"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]

	switch command {
	case "seed":
		cfg := config.NewConfig()
		logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		report, err := entrypoint.Seed(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d categories and %d quotes", report.Categories, report.Quotes)
		if report.AdminCreated {
			fmt.Printf(", created administrator %s", cfg.Seed.AdminEmail)
		}
		fmt.Println()

	case "reconcile":
		cfg := config.NewConfig()
		logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		report, err := entrypoint.Reconcile(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cfg.Tasks.Enabled {
			fmt.Println("Reconciliation queued")
			return
		}
		fmt.Printf("Corrected %d media favorite counts, %d quote favorite counts, %d category quote counts\n",
			report.MediaFavorites, report.QuoteFavorites, report.CategoryQuotes)

	case "version":
		fmt.Printf("mymotiv %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve      Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  seed       Load default categories, quotes and the administrator account\n")
	fmt.Fprintf(os.Stderr, "  reconcile  Recompute favorite and quote counters\n")
	fmt.Fprintf(os.Stderr, "  version    Print version information\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from environment variables (PORT, JWT_SECRET, DB_DATA_DIR, ...).\n")
}
