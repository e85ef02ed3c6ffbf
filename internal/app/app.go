package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmrate/backend/internal/apperr"
	"github.com/filmrate/backend/internal/config"
	"github.com/filmrate/backend/internal/db"
	"github.com/filmrate/backend/internal/logging"
)

const defaultPopularCount = 10

// Run bootstraps the Filmrate command line.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("expected command: migrate, seed, recommend, popular, or feed")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	err = dispatch(ctx, cfg, args, stdout)
	if err != nil {
		logger.Error("command failed",
			"command", args[0],
			"kind", string(apperr.KindOf(err)),
			"error", err,
		)
	}
	return err
}

func dispatch(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	switch args[0] {
	case "migrate":
		return runMigrations(ctx, cfg, args[1:], stdout)
	case "seed":
		return runSeed(ctx, cfg, args[1:], stdout)
	case "recommend", "popular", "feed":
		return runQuery(ctx, cfg, args[0], args[1:], stdout)
	default:
		return apperr.InvalidArgument("unknown command %q", args[0])
	}
}

// requirePostgres rejects commands that would only see a fresh, empty memory store.
func requirePostgres(cfg config.Config, what string) error {
	if cfg.Store != config.StorePostgres {
		return apperr.InvalidArgument("%s require the %s store, got %q", what, config.StorePostgres, cfg.Store)
	}
	return nil
}

func poolOptions(cfg config.Config) db.Options {
	return db.Options{
		MaxConns:          int32(cfg.DBMaxConns),
		HealthCheckPeriod: cfg.DBHealthCheck,
	}
}

func connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	return db.Connect(ctx, cfg.DatabaseURL, poolOptions(cfg))
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}

func runQuery(ctx context.Context, cfg config.Config, command string, args []string, stdout io.Writer) error {
	if err := requirePostgres(cfg, "queries"); err != nil {
		return err
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, cleanup, err := buildDependencies(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := query(ctx, svc, command, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func query(ctx context.Context, svc Services, command string, args []string) (any, error) {
	switch command {
	case "recommend":
		userID, err := parseID(args, "user id")
		if err != nil {
			return nil, err
		}
		return svc.Recommend.Recommend(ctx, userID)
	case "popular":
		count := defaultPopularCount
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, apperr.InvalidArgument("parse count %q: %v", args[0], err)
			}
			count = n
		}
		return svc.Ranking.TopFilms(ctx, count)
	case "feed":
		userID, err := parseID(args, "user id")
		if err != nil {
			return nil, err
		}
		return svc.Feed.FeedFor(ctx, userID)
	default:
		return nil, apperr.InvalidArgument("unknown query %q", command)
	}
}

func parseID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, apperr.InvalidArgument("expected %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("parse %s %q: %v", what, args[0], err)
	}
	return id, nil
}

func runMigrations(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	if command != "up" && command != "status" {
		return apperr.InvalidArgument("unknown migrate command %q", command)
	}
	if err := requirePostgres(cfg, "migrations"); err != nil {
		return err
	}

	migrationDir, err := resolveDir(cfg.MigrationDir)
	if err != nil {
		return err
	}
	migrations, err := listMigrations(migrationDir)
	if err != nil {
		return err
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
                version TEXT PRIMARY KEY,
                applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	versions, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("fetch applied migrations: %w", err)
	}
	appliedList, err := pgx.CollectRows(versions, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(appliedList))
	for _, version := range appliedList {
		applied[version] = struct{}{}
	}

	if command == "status" {
		for _, name := range migrations {
			if _, ok := applied[name]; ok {
				fmt.Fprintf(stdout, "[x] %s\n", name)
			} else {
				fmt.Fprintf(stdout, "[ ] %s\n", name)
			}
		}
		return nil
	}

	if len(migrations) == 0 {
		fmt.Fprintln(stdout, "no migrations to apply")
		return nil
	}

	policy := db.RetryPolicy{MaxRetries: cfg.TxMaxRetries}
	for _, name := range migrations {
		if _, ok := applied[name]; ok {
			continue
		}

		contents, err := os.ReadFile(filepath.Join(migrationDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		err = db.RunInTx(ctx, conn, policy, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(contents)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logging.FromContext(ctx).Info("applied migration", "version", name)
		fmt.Fprintf(stdout, "applied migration %s\n", name)
	}
	return nil
}

func listMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		migrations = append(migrations, entry.Name())
	}

	sort.Strings(migrations)
	return migrations, nil
}

func seedFileName(name string) string {
	if strings.HasSuffix(name, ".sql") {
		return name
	}
	return fmt.Sprintf("%s_seed.sql", name)
}

func runSeed(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return apperr.InvalidArgument("expected seed name (e.g. dev)")
	}
	if err := requirePostgres(cfg, "seeds"); err != nil {
		return err
	}

	seedDir, err := resolveDir(cfg.SeedDir)
	if err != nil {
		return err
	}

	seedName := seedFileName(args[0])
	contents, err := os.ReadFile(filepath.Join(seedDir, seedName))
	if err != nil {
		return fmt.Errorf("read seed %s: %w", seedName, err)
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	err = db.RunInTx(ctx, pool, db.RetryPolicy{MaxRetries: cfg.TxMaxRetries}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, string(contents))
		return err
	})
	if err != nil {
		return fmt.Errorf("apply seed %s: %w", seedName, err)
	}

	logging.FromContext(ctx).Info("applied seed", "seed", seedName)
	fmt.Fprintf(stdout, "applied seed %s\n", seedName)
	return nil
}
