// Package main provides admin management utilities for Wanderlog.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"wanderlog/internal/config"
	"wanderlog/internal/database"
	"wanderlog/internal/models"
	"wanderlog/internal/repository"
	"wanderlog/internal/service"

	"gorm.io/gorm"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin/main.go promote <user_id>     - Promote user to admin")
	fmt.Println("  go run ./cmd/admin/main.go demote <user_id>      - Demote user from admin")
	fmt.Println("  go run ./cmd/admin/main.go list-admins           - List all admins")
	fmt.Println("  go run ./cmd/admin/main.go usage                 - Show provider usage counters")
	fmt.Println("  go run ./cmd/admin/main.go usage-reset           - Zero provider usage counters")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	usage := service.NewUsageService(repository.NewUsageRepository(db), cfg.UsageLimit)
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin/main.go %s <user_id>\n", command)
			os.Exit(1)
		}
		setAdmin(db, os.Args[2], command == "promote")

	case "list-admins":
		listAdmins(db)

	case "usage":
		showUsage(ctx, usage)

	case "usage-reset":
		if err := usage.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset usage: %v", err)
		}
		fmt.Println("✅ Usage counters reset")
		showUsage(ctx, usage)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setAdmin(db *gorm.DB, userID string, admin bool) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	verb := "promoted to"
	if !admin {
		verb = "demoted from"
	}
	if user.IsAdmin == admin {
		fmt.Printf("User %s (ID: %d) needs no change\n", user.Username, user.ID)
		return
	}

	if err := db.Model(&user).Update("is_admin", admin).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	fmt.Printf("✅ %s (ID: %d) %s admin\n", user.Username, user.ID, verb)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}

func showUsage(ctx context.Context, usage *service.UsageService) {
	snap, err := usage.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to read usage: %v", err)
	}
	fmt.Printf("map loads: %d/%d | searches: %d/%d\n", snap.MapLoads, snap.Limit, snap.Searches, snap.Limit)
}
