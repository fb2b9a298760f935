// Command seed loads demo data into the configured database.
package main

import (
	"flag"
	"log"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/seed"
)

func main() {
	users := flag.Int("users", 5, "number of demo users to create")
	portfolios := flag.Int("portfolios", 2, "portfolios per user")
	projects := flag.Int("projects", 3, "projects per portfolio")
	clean := flag.Bool("clean", false, "delete existing rows first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	opts := seed.Options{
		NumUsers:          *users,
		PortfoliosPerUser: *portfolios,
		ProjectsPerFolio:  *projects,
		ShouldClean:       *clean,
	}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
