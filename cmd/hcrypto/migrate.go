package main

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/housler/housler-crypto/internal/logger"
	"github.com/housler/housler-crypto/internal/metrics"
	"github.com/housler/housler-crypto/legacy"
	"github.com/housler/housler-crypto/migrate"
	"github.com/housler/housler-crypto/pii"
)

var (
	migrateColumns []string
	migrateDryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a table's PII columns in place",
	Long: `Sweep a database table, rewriting legacy Fernet ciphertexts and
plaintext into hc1: envelopes and refreshing blind-index columns.

Database connection, table, and legacy key material come from the
config file / environment. Columns are given as
  name:field[:index_column[:normalize]]
where normalize is phone or email. The sweep is restartable; values
already in the current format keep their ciphertext, and only their
index columns (if given) are rewritten.`,
	Example: `  hcrypto migrate --config prod.yaml \
    --column email:email:email_idx:email \
    --column phone:phone:phone_idx:phone \
    --dry-run`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringArrayVar(&migrateColumns, "column", nil,
		"Column spec name:field[:index_column[:normalize]] (repeatable, required)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Scan and decrypt without writing")
	migrateCmd.MarkFlagRequired("column")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database == nil || cfg.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}

	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	defer codec.Close()

	var legacyMigrator *legacy.Migrator
	switch {
	case cfg.LegacyLK != nil:
		legacyMigrator, err = legacy.FromLKConfig(cfg.LegacyLK.EncryptionKey, cfg.LegacyLK.EncryptionSalt)
	case cfg.LegacyClub != nil:
		legacyMigrator, err = legacy.FromClubConfig(cfg.LegacyClub.MasterKey, cfg.LegacyClub.Salt)
	}
	if err != nil {
		return err
	}

	columns, err := parseColumnSpecs(migrateColumns)
	if err != nil {
		return err
	}

	log := logger.NewDefaultLogger()
	log.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Addr); err != nil {
				log.Error("metrics server stopped", logger.Error(err))
			}
		}()
	}

	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runner, err := migrate.New(pool, codec, legacyMigrator, migrate.Options{
		Table:     cfg.Database.Table,
		KeyColumn: cfg.Database.KeyColumn,
		Columns:   columns,
		BatchSize: cfg.Database.BatchSize,
		Workers:   cfg.Database.Workers,
		DryRun:    migrateDryRun,
	}, log)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: scanned=%d migrated=%d skipped=%d failed=%d in %s\n",
		report.RunID, report.Scanned, report.Migrated, report.Skipped, report.Failed, report.Duration)
	return nil
}

func parseColumnSpecs(specs []string) ([]migrate.Column, error) {
	columns := make([]migrate.Column, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid column spec: %q", spec)
		}

		col := migrate.Column{Name: parts[0], Field: parts[1]}
		if len(parts) > 2 {
			col.IndexColumn = parts[2]
		}
		if len(parts) > 3 {
			switch parts[3] {
			case "phone":
				col.Normalize = pii.NormalizePhone
			case "email":
				col.Normalize = pii.NormalizeEmail
			default:
				return nil, fmt.Errorf("unsupported normalization in %q", spec)
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}
