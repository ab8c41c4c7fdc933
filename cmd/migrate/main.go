// Command migrate applies, inspects and rolls back the Wanderlog schema.
//
//	migrate [-timeout 2m] <up|auto|status|list|down [version]|reset>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"wanderlog/internal/config"
	"wanderlog/internal/database"

	"gorm.io/gorm"
)

type env struct {
	cfg  *config.Config
	db   *gorm.DB
	args []string
}

type command struct {
	help string
	run  func(ctx context.Context, e env) error
}

var commands = map[string]command{
	"up":     {"apply pending SQL migrations", cmdUp},
	"auto":   {"run gorm AutoMigrate over every model", cmdAuto},
	"status": {"show schema mode and pending work", cmdStatus},
	"list":   {"list embedded migrations and whether they are applied", cmdList},
	"down":   {"roll back one version (latest applied by default)", cmdDown},
	"reset":  {"roll back everything and re-apply (non-production only)", cmdReset},
}

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Usage = printUsage
	flag.Parse()

	if err := run(*timeout); err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-timeout d] <command> [args]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-7s %s\n", name, commands[name].help)
	}
}

func run(timeout time.Duration) error {
	name := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	cmd, ok := commands[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return cmd.run(ctx, env{cfg: cfg, db: db, args: flag.Args()[1:]})
}

func cmdUp(ctx context.Context, e env) error {
	if err := database.RunMigrations(ctx, e.db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return nil
}

func cmdAuto(ctx context.Context, e env) error {
	e.cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, e.db, e.cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func cmdStatus(ctx context.Context, e env) error {
	status, err := database.GetSchemaStatus(ctx, e.db, e.cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
		status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
		len(status.AppliedVersions), len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		log.Printf("pending: %s", m.String())
	}
	for _, table := range status.MissingTables {
		log.Printf("missing table: %s", table)
	}
	return nil
}

func cmdList(ctx context.Context, e env) error {
	applied, err := database.NewMigrationStore(e.db).GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range database.GetMigrations() {
		mark := " "
		if slices.Contains(applied, m.Version) {
			mark = "x"
		}
		fmt.Printf("[%s] %s\n", mark, m.String())
	}
	return nil
}

func cmdDown(ctx context.Context, e env) error {
	var version int
	if len(e.args) > 0 {
		v, err := strconv.Atoi(e.args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", e.args[0], err)
		}
		version = v
	} else {
		applied, err := database.NewMigrationStore(e.db).GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			log.Println("nothing to roll back")
			return nil
		}
		version = slices.Max(applied)
	}

	if err := database.RollbackMigration(ctx, e.db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}

func cmdReset(ctx context.Context, e env) error {
	if e.cfg.IsProduction() {
		return fmt.Errorf("reset is disabled in production")
	}
	n, err := database.ResetMigrations(ctx, e.db)
	if err != nil {
		return fmt.Errorf("reset failed after %d rollbacks: %w", n, err)
	}
	log.Printf("schema reset: %d migrations rolled back and re-applied", n)
	return nil
}
