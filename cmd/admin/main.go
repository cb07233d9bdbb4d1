package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"contas/internal/domain/card"
	"contas/internal/domain/invoice"
	"contas/internal/infrastructure/postgres"
	"contas/internal/shared/config"
)

const usage = `Contas Admin CLI - Management commands for the Contas API

Usage:
  admin <command> [options]

Commands:
  recalculate-limits   Rebuild card available limits from the charge history

Examples:
  # Recalculate all cards of a specific user
  admin recalculate-limits --user-id=1

  # Recalculate cards of multiple users
  admin recalculate-limits --user-id=1,2,3

  # Recalculate every card in the system
  admin recalculate-limits --all

  # Preview without writing
  admin recalculate-limits --all --dry-run
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "recalculate-limits":
		runRecalculateLimits(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func runRecalculateLimits(args []string) {
	fs := flag.NewFlagSet("recalculate-limits", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to recalculate (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Recalculate cards of all users")
	dryRun := fs.Bool("dry-run", false, "Report what would change without writing")
	timeoutStr := fs.String("timeout", "10m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin recalculate-limits [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin recalculate-limits --user-id=1")
		fmt.Println("  admin recalculate-limits --user-id=1,2,3")
		fmt.Println("  admin recalculate-limits --all --dry-run")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	cardRepo := postgres.NewCardRepository(db)
	uow := postgres.NewCardUnitOfWork(db)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		userIDs, err = cardRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list card owners: %v", err)
		}
		log.Printf("Found %d users with cards", len(userIDs))
	} else {
		for _, p := range strings.Split(*userIDStr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				log.Fatalf("Invalid user ID '%s': %v", p, err)
			}
			userIDs = append(userIDs, id)
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Recalculating card limits for %d user(s)", len(userIDs))
	startTime := time.Now()

	now := time.Now()
	var checked, changed int
	for _, userID := range userIDs {
		cards, err := cardRepo.ListByUserID(ctx, userID)
		if err != nil {
			log.Fatalf("Failed to list cards for user %d: %v", userID, err)
		}

		for _, listed := range cards {
			checked++

			// Each card recalculates under its own row lock so a charge
			// operation landing mid-run cannot be overwritten.
			err := uow.Do(ctx, func(repo card.Repository, usage card.UsageSource) error {
				c, err := repo.GetForUpdate(ctx, listed.ID)
				if err != nil {
					return err
				}
				if c == nil {
					return nil
				}

				current := invoice.ResolvePeriod(now, c.ClosingDay, c.DueDay)
				entries, err := usage.ListEntriesFromPeriod(ctx, c.ID, current)
				if err != nil {
					return err
				}

				before := c.CurrentLimit
				c.Recalculate(entries, current)
				if c.CurrentLimit == before {
					return nil
				}
				changed++

				fmt.Printf("Card %s (user %d, %q): available %.2f -> %.2f\n",
					c.ID, userID, c.Name, before, c.CurrentLimit)

				if *dryRun {
					return nil
				}
				return repo.SaveCurrentLimit(ctx, c.ID, c.CurrentLimit)
			})
			if err != nil {
				log.Fatalf("Failed to recalculate card %s: %v", listed.ID, err)
			}
		}
	}

	action := "updated"
	if *dryRun {
		action = "would update"
	}
	log.Printf("Recalculation completed in %v: %d card(s) checked, %s %d",
		time.Since(startTime), checked, action, changed)
}
