package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/repository/sqlite"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var dbPath string

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or migrate the SQLite database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db-path",
				Usage:       "SQLite database file path",
				Value:       "morpheus.db",
				Sources:     cli.EnvVars("MORPHEUS_DB_PATH"),
				Destination: &dbPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrating database", "path", dbPath)

			// Opening the database runs any pending schema migrations.
			repo, err := sqlite.New(dbPath)
			if err != nil {
				return goerr.Wrap(err, "failed to migrate database")
			}
			if err := repo.Close(); err != nil {
				return goerr.Wrap(err, "failed to close database")
			}

			logger.Info("Migration completed", "path", dbPath)
			return nil
		},
	}
}
