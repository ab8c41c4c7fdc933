// Command dbtool inspects the Wanderlog postgres schema and can reset it in
// development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"wanderlog/internal/config"
	"wanderlog/internal/database"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/dbtool tables                 - List public tables")
	fmt.Println("  go run ./cmd/dbtool columns <table>        - List columns of a table")
	fmt.Println("  go run ./cmd/dbtool constraints [table]    - List constraints")
	fmt.Println("  go run ./cmd/dbtool find-constraint <name> - Locate a constraint by name")
	fmt.Println("  go run ./cmd/dbtool counts                 - Row counts per domain table")
	fmt.Println("  go run ./cmd/dbtool nuke                   - Drop and recreate the public schema")
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		log.Fatal("missing command")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	insp := database.NewInspector(db)
	ctx := context.Background()
	arg := func(i int) string {
		if flag.NArg() <= i {
			usage()
			log.Fatalf("%s needs an argument", flag.Arg(0))
		}
		return flag.Arg(i)
	}

	switch flag.Arg(0) {
	case "tables":
		tables, err := insp.Tables(ctx)
		check(err)
		fmt.Println("Tables in public schema:")
		for _, t := range tables {
			fmt.Printf(" - %s\n", t)
		}
	case "columns":
		table := arg(1)
		cols, err := insp.Columns(ctx, table)
		check(err)
		fmt.Printf("Columns in %s:\n", table)
		for _, c := range cols {
			fmt.Printf(" - %s: %s\n", c.Name, c.DataType)
		}
	case "constraints":
		found, err := insp.Constraints(ctx, flag.Arg(1))
		check(err)
		for _, c := range found {
			fmt.Printf(" - %s on %s: %s\n", c.Name, c.Table, c.Definition)
		}
	case "find-constraint":
		name := arg(1)
		found, err := insp.FindConstraint(ctx, name)
		check(err)
		if len(found) == 0 {
			fmt.Printf("No constraint named %s\n", name)
		}
		for _, c := range found {
			fmt.Printf(" - %s on %s: %s\n", c.Name, c.Table, c.Definition)
		}
	case "counts":
		counts, err := insp.RowCounts(ctx)
		check(err)
		tables := make([]string, 0, len(counts))
		for t := range counts {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			fmt.Printf("%-20s %d\n", t, counts[t])
		}
	case "nuke":
		fmt.Println("Nuking database...")
		check(insp.Nuke(ctx, cfg))
		fmt.Println("Database nuked.")
	default:
		usage()
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
