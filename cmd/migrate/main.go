// Command migrate manages the catalog database schema.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/migration"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("invalid usage")

// invocation is what a command receives after flag parsing
type invocation struct {
	args []string
	dir  string // -path, empty for the embedded set
	log  *zap.Logger
}

type command struct {
	usage string
	// schema commands get a migrator; file commands never touch the database
	schema func(inv invocation, m *migration.Migrator) error
	files  func(inv invocation) error
}

var commands = map[string]command{
	"up": {usage: "up                    Apply all pending migrations",
		schema: func(_ invocation, m *migration.Migrator) error { return m.Up() }},
	"down": {usage: "down                  Roll back all migrations",
		schema: func(_ invocation, m *migration.Migrator) error { return m.Down() }},
	"step": {usage: "step <n>              Apply n migrations (negative rolls back)",
		schema: func(inv invocation, m *migration.Migrator) error {
			n, err := intArg(inv.args, "step count")
			if err != nil {
				return err
			}
			return m.Steps(n)
		}},
	"force": {usage: "force <version>       Set the version without migrating (repairs a dirty state)",
		schema: func(inv invocation, m *migration.Migrator) error {
			v, err := intArg(inv.args, "version")
			if err != nil {
				return err
			}
			return m.Force(v)
		}},
	"version": {usage: "version               Show the current migration version",
		schema: func(inv invocation, m *migration.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			inv.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		}},
	"create": {usage: "create <name> [desc]  Create a new numbered migration pair",
		files: func(inv invocation) error {
			if len(inv.args) < 1 {
				return fmt.Errorf("%w: migration name required", errUsage)
			}
			desc := ""
			if len(inv.args) > 1 {
				desc = inv.args[1]
			}
			mf, err := migration.CreateMigration(localDir(inv.dir), inv.args[0], desc)
			if err != nil {
				return err
			}
			inv.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		}},
	"list": {usage: "list                  List migration files",
		files: func(inv invocation) error {
			names, err := migration.ListMigrations(localDir(inv.dir))
			if err != nil {
				return err
			}
			inv.log.Info("Available migrations", zap.Int("count", len(names)))
			for _, name := range names {
				fmt.Println("  -", name)
			}
			return nil
		}},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	inv := invocation{args: flag.Args()[1:], dir: *dir, log: log}
	if err := run(cmd, inv); err != nil {
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		if errors.Is(err, errUsage) {
			printUsage()
		}
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(cmd command, inv invocation) error {
	if cmd.files != nil {
		return cmd.files(inv)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}

	src := migration.Source{FS: migrations.FS}
	if inv.dir != "" {
		src = migration.Source{Dir: localDir(inv.dir)}
	}
	m, err := migration.New(db.SQLDB(), src, inv.log)
	if err != nil {
		_ = db.Close()
		return err
	}
	// closes the pool as well
	defer m.Close()

	return cmd.schema(inv, m)
}

func intArg(args []string, name string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%w: %s required", errUsage, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errUsage, name, args[0])
	}
	return n, nil
}

// localDir resolves the directory used by create and list
func localDir(dir string) string {
	if dir == "" {
		dir = defaultMigrationsDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Catalog Sync Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:`)
	for _, name := range []string{"up", "down", "step", "version", "force", "create", "list"} {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, `
Flags:
  -path string          Migrations directory (default: the embedded set; ./migrations for create/list)
  -log-level string     Log level (default: info)

Configuration is read from config.toml, .env and CATALOG_* environment variables.`)
}
