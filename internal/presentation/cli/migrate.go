package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	urfave "github.com/urfave/cli/v3"

	pgpkg "github.com/strokeguard/strokeguard/pkg/postgres"
)

func (a *app) migrateCmd() *urfave.Command {
	flags := []urfave.Flag{
		&urfave.StringFlag{
			Name:    "database-url",
			Usage:   "PostgreSQL connection URL",
			Sources: urfave.EnvVars("DATABASE_URL"),
		},
		&urfave.StringFlag{
			Name:    "dir",
			Usage:   "Directory holding the migration files",
			Value:   "migrations",
			Sources: urfave.EnvVars("MIGRATIONS_DIR"),
		},
	}
	run := func(dir pgpkg.Direction) urfave.ActionFunc {
		return func(_ context.Context, cmd *urfave.Command) error {
			dsn := cmd.String("database-url")
			if dsn == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			abs, err := filepath.Abs(cmd.String("dir"))
			if err != nil {
				return fmt.Errorf("resolve migrations dir: %w", err)
			}
			if err := pgpkg.RunMigrations(dsn, "file://"+abs, dir); err != nil {
				return err
			}
			a.logger.Info("migrations applied", "direction", string(dir))
			return a.encode(map[string]string{"status": "ok", "direction": string(dir)})
		}
	}

	return &urfave.Command{
		Name:  "migrate",
		Usage: "Apply or roll back the startup report schema",
		Commands: []*urfave.Command{
			{Name: "up", Usage: "Apply all pending migrations", Flags: flags, Action: run(pgpkg.Up)},
			{Name: "down", Usage: "Roll back all migrations", Flags: flags, Action: run(pgpkg.Down)},
		},
	}
}
