// Package migrate sweeps database tables in place, rewriting legacy and
// plaintext PII columns into the current envelope and refreshing their
// blind-index columns. Sweeps are restartable: already-migrated values
// keep their ciphertext, so re-running over a partially migrated table
// is safe. Their blind-index columns, when configured, are rewritten on
// every run, so such rows are updated and counted as migrated again.
package migrate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	"github.com/housler/housler-crypto/crypto"
	"github.com/housler/housler-crypto/internal/logger"
	"github.com/housler/housler-crypto/internal/metrics"
	"github.com/housler/housler-crypto/legacy"
)

// Querier is the subset of pgxpool.Pool the runner needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Column describes one PII column to migrate.
type Column struct {
	// Name is the ciphertext column.
	Name string
	// Field is the derivation field tag bound to the column.
	Field string
	// IndexColumn, when set, receives the blind index of the
	// canonicalized plaintext.
	IndexColumn string
	// Normalize canonicalizes the plaintext before indexing (for
	// example pii.NormalizePhone). Nil means index the raw plaintext.
	Normalize func(string) string
}

// Options configures a Runner.
type Options struct {
	Table     string
	KeyColumn string
	Columns   []Column
	BatchSize int
	Workers   int
	// DryRun scans and decrypts but never writes.
	DryRun bool
}

// Report summarizes one migration run.
type Report struct {
	RunID    string
	Scanned  int64
	Migrated int64
	Skipped  int64
	Failed   int64
	Duration time.Duration
}

// Runner migrates one table.
type Runner struct {
	db      Querier
	codec   *crypto.Codec
	legacy  *legacy.Migrator
	opts    Options
	log     logger.Logger
	selects string
}

// New creates a Runner. The legacy migrator may be nil when the table
// only holds plaintext and current-format values.
func New(db Querier, codec *crypto.Codec, lm *legacy.Migrator, opts Options, log logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, crypto.NewConfigError("database is required")
	}
	if codec == nil {
		return nil, crypto.NewConfigError("codec is required")
	}
	if opts.Table == "" || len(opts.Columns) == 0 {
		return nil, crypto.NewConfigError("table and columns are required")
	}
	if opts.KeyColumn == "" {
		opts.KeyColumn = "id"
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 500
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if log == nil {
		log = logger.NewDefaultLogger()
	}

	cols := make([]string, 0, len(opts.Columns)+1)
	cols = append(cols, pgx.Identifier{opts.KeyColumn}.Sanitize())
	for _, c := range opts.Columns {
		cols = append(cols, pgx.Identifier{c.Name}.Sanitize())
	}
	selects := fmt.Sprintf("SELECT %s FROM %s WHERE %s > $1 ORDER BY %s LIMIT %d",
		strings.Join(cols, ", "),
		pgx.Identifier{opts.Table}.Sanitize(),
		pgx.Identifier{opts.KeyColumn}.Sanitize(),
		pgx.Identifier{opts.KeyColumn}.Sanitize(),
		opts.BatchSize)

	return &Runner{
		db:      db,
		codec:   codec,
		legacy:  lm,
		opts:    opts,
		log:     log,
		selects: selects,
	}, nil
}

type row struct {
	key    int64
	values []*string
}

// Run sweeps the table to completion or until ctx is canceled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}

	log := r.log.WithFields(
		logger.String("run_id", report.RunID),
		logger.String("table", r.opts.Table),
	)
	log.Info("migration started",
		logger.Int("batch_size", r.opts.BatchSize),
		logger.Bool("dry_run", r.opts.DryRun))

	var lastKey int64
	for {
		batch, err := r.fetchBatch(ctx, lastKey)
		if err != nil {
			return report, fmt.Errorf("failed to fetch batch after key %d: %w", lastKey, err)
		}
		if len(batch) == 0 {
			break
		}
		lastKey = batch[len(batch)-1].key

		batchStart := time.Now()
		if err := r.migrateBatch(ctx, batch, report, log); err != nil {
			return report, err
		}
		metrics.MigrationBatchDuration.Observe(time.Since(batchStart).Seconds())

		log.Debug("batch migrated",
			logger.Int("rows", len(batch)),
			logger.Int64("last_key", lastKey))
	}

	report.Duration = time.Since(start)
	log.Info("migration finished",
		logger.Int64("scanned", report.Scanned),
		logger.Int64("migrated", report.Migrated),
		logger.Int64("skipped", report.Skipped),
		logger.Int64("failed", report.Failed),
		logger.Duration("duration", report.Duration))
	return report, nil
}

func (r *Runner) fetchBatch(ctx context.Context, afterKey int64) ([]row, error) {
	rows, err := r.db.Query(ctx, r.selects, afterKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []row
	for rows.Next() {
		rec := row{values: make([]*string, len(r.opts.Columns))}
		dest := make([]any, 0, len(r.opts.Columns)+1)
		dest = append(dest, &rec.key)
		for i := range rec.values {
			dest = append(dest, &rec.values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		batch = append(batch, rec)
	}
	return batch, rows.Err()
}

func (r *Runner) migrateBatch(ctx context.Context, batch []row, report *Report, log logger.Logger) error {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, rec := range batch {
		g.Go(func() error {
			changed, err := r.migrateRow(ctx, rec)

			mu.Lock()
			defer mu.Unlock()
			report.Scanned++
			switch {
			case err != nil:
				// A stray value must not abort the sweep.
				report.Failed++
				metrics.MigrationRows.WithLabelValues("failed").Inc()
				log.Warn("row migration failed",
					logger.Int64("key", rec.key),
					logger.Error(err))
			case changed:
				report.Migrated++
				metrics.MigrationRows.WithLabelValues("migrated").Inc()
			default:
				report.Skipped++
				metrics.MigrationRows.WithLabelValues("skipped").Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// migrateRow rewrites one row. It reports whether an update was issued.
func (r *Runner) migrateRow(ctx context.Context, rec row) (bool, error) {
	assignments := make([]string, 0, 2*len(r.opts.Columns))
	args := make([]any, 0, 2*len(r.opts.Columns)+1)

	for i, col := range r.opts.Columns {
		if rec.values[i] == nil || *rec.values[i] == "" {
			continue
		}
		value := *rec.values[i]

		plaintext, envelope, err := r.rewrite(value, col.Field)
		if err != nil {
			return false, err
		}

		if envelope != value {
			args = append(args, envelope)
			assignments = append(assignments,
				fmt.Sprintf("%s = $%d", pgx.Identifier{col.Name}.Sanitize(), len(args)))
		}
		if col.IndexColumn != "" && plaintext != "" {
			canonical := plaintext
			if col.Normalize != nil {
				canonical = col.Normalize(plaintext)
			}
			args = append(args, r.codec.BlindIndex(canonical, col.Field))
			assignments = append(assignments,
				fmt.Sprintf("%s = $%d", pgx.Identifier{col.IndexColumn}.Sanitize(), len(args)))
		}
	}

	if len(assignments) == 0 || r.opts.DryRun {
		return false, nil
	}

	args = append(args, rec.key)
	update := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		pgx.Identifier{r.opts.Table}.Sanitize(),
		strings.Join(assignments, ", "),
		pgx.Identifier{r.opts.KeyColumn}.Sanitize(),
		len(args))

	if _, err := r.db.Exec(ctx, update, args...); err != nil {
		return false, fmt.Errorf("failed to update row %d: %w", rec.key, err)
	}
	return true, nil
}

// rewrite maps a stored value to (plaintext, envelope). Current-format
// values are decrypted only to recover the plaintext for indexing.
func (r *Runner) rewrite(value, field string) (plaintext, envelope string, err error) {
	if r.codec.IsEncrypted(value) {
		plaintext, err = r.codec.Decrypt(value, field)
		return plaintext, value, err
	}

	plaintext = value
	if r.legacy != nil {
		plaintext, err = r.legacy.Decrypt(value, field)
		if err != nil {
			return "", "", err
		}
	}
	envelope, err = r.codec.Encrypt(plaintext, field)
	return plaintext, envelope, err
}
