// Package sqljournal implements relationaldb.Journal over database/sql. The
// postgres and sqlite packages supply the dialect and the driver.
package sqljournal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

// Dialect carries the driver-specific SQL. ByAccount takes (address, address,
// limit) and Latest takes (limit).
type Dialect struct {
	Name      string
	Schema    []string
	Insert    string
	ByAccount string
	Latest    string
}

const columns = "seq, op, kind, from_addr, to_addr, amount, old_factor, new_factor, created_at"

// Journal is a relationaldb.Journal backed by *sql.DB.
type Journal struct {
	mu      sync.RWMutex
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	logger  *slog.Logger
}

// Open opens driverName with cfg, applies the pool settings, pings and creates
// the schema.
func Open(ctx context.Context, driverName string, d Dialect, cfg *relationaldb.Config, logger *slog.Logger) (*Journal, error) {
	connStr, err := cfg.BuildConnectionString()
	if err != nil {
		return nil, relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, relationaldb.NewConnectionError("open", "failed to open database connection", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, relationaldb.NewConnectionError("open", "failed to ping database", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	j := &Journal{
		db:      db,
		dialect: d,
		timeout: cfg.DefaultTimeout,
		logger:  logger.With("component", "journal", "driver", d.Name),
	}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	j.logger.Info("journal opened")
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	for _, query := range j.dialect.Schema {
		if _, err := j.db.ExecContext(ctx, query); err != nil {
			return relationaldb.NewSchemaError("init_schema", "failed to execute schema query", err)
		}
	}
	return nil
}

func (j *Journal) handle() (*sql.DB, func(), error) {
	j.mu.RLock()
	if j.db == nil {
		j.mu.RUnlock()
		return nil, nil, relationaldb.ErrDatabaseClosed
	}
	return j.db, j.mu.RUnlock, nil
}

func (j *Journal) Append(ctx context.Context, records []relationaldb.Record) error {
	if len(records) == 0 {
		return nil
	}
	db, release, err := j.handle()
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return relationaldb.NewTransactionError("append", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, j.dialect.Insert)
	if err != nil {
		return relationaldb.NewQueryError("append", "failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			int64(r.Seq),
			r.Op,
			r.Kind,
			r.From.Hex(),
			r.To.Hex(),
			decimal(r.Amount),
			decimal(r.OldFactor),
			decimal(r.NewFactor),
			r.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return relationaldb.NewQueryError("append", fmt.Sprintf("failed to insert record %d", r.Seq), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return relationaldb.NewTransactionError("append", "failed to commit", err)
	}
	return nil
}

func (j *Journal) ByAccount(ctx context.Context, a address.Address, limit int) ([]relationaldb.Record, error) {
	limit, err := relationaldb.NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return j.query(ctx, "by_account", j.dialect.ByAccount, a.Hex(), a.Hex(), limit)
}

func (j *Journal) Latest(ctx context.Context, limit int) ([]relationaldb.Record, error) {
	limit, err := relationaldb.NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return j.query(ctx, "latest", j.dialect.Latest, limit)
}

func (j *Journal) query(ctx context.Context, op, query string, args ...any) ([]relationaldb.Record, error) {
	db, release, err := j.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, relationaldb.NewQueryError(op, "query failed", err)
	}
	defer rows.Close()

	var out []relationaldb.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, relationaldb.NewDataError(op, "failed to scan record", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, relationaldb.NewQueryError(op, "row iteration failed", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (relationaldb.Record, error) {
	var (
		r                       relationaldb.Record
		seq, createdAt          int64
		from, to                string
		amt, oldFactor, newFact sql.NullString
	)
	if err := rows.Scan(&seq, &r.Op, &r.Kind, &from, &to, &amt, &oldFactor, &newFact, &createdAt); err != nil {
		return r, err
	}

	var err error
	if r.From, err = address.Parse(from); err != nil {
		return r, err
	}
	if r.To, err = address.Parse(to); err != nil {
		return r, err
	}
	if r.Amount, err = parseDecimal(amt); err != nil {
		return r, err
	}
	if r.OldFactor, err = parseDecimal(oldFactor); err != nil {
		return r, err
	}
	if r.NewFactor, err = parseDecimal(newFact); err != nil {
		return r, err
	}
	r.Seq = uint64(seq)
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return r, nil
}

// decimal stores amounts as base-10 text; they exceed every SQL integer type.
func decimal(v *uint256.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Dec(), Valid: true}
}

func parseDecimal(s sql.NullString) (*uint256.Int, error) {
	if !s.Valid {
		return nil, nil
	}
	v, err := uint256.FromDecimal(s.String)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", relationaldb.ErrInvalidDataFormat, s.String)
	}
	return v, nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return relationaldb.NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

// Columns is the column list every dialect selects, in scan order.
func Columns() string { return columns }
