// Command seed fills the Wanderlog database with demo travellers and trips.
package main

import (
	"context"
	"flag"
	"log"

	"wanderlog/internal/config"
	"wanderlog/internal/database"
	"wanderlog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	tripsPerUser := flag.Int("trips", 3, "Trips per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	rngSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d trips each, clean=%v\n", *numUsers, *tripsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{DryRun: *dryRun, Seed: *rngSeed})
	if err != nil {
		log.Fatalf("❌ Seeder setup failed: %v", err)
	}

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(context.Background(), *numUsers, *tripsPerUser); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
