package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

// Repository abstracts snapshot persistence for the service.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error)
	ListSnapshots(ctx context.Context) ([]SnapshotMeta, error)
}

// PostgresRepository provides PostgreSQL backed snapshot persistence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveSnapshot stores the snapshot and all of its parts atomically.
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (id, name, created_at) VALUES ($1, $2, $3)`,
		snap.ID, snap.Name, snap.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSnapshotExists
		}
		return err
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_transactions"},
		[]string{"snapshot_id", "seq", "fund", "class1", "class3", "account", "account_name", "reference", "description", "posted_on", "amount"},
		pgx.CopyFromSlice(len(snap.Transactions), func(i int) ([]any, error) {
			t := snap.Transactions[i]
			return []any{snap.ID, t.Seq, t.Fund, t.Class1, t.Class3, t.Account, t.AccountName, t.Reference, t.Description, t.Date, t.Amount.String()}, nil
		}),
	); err != nil {
		return fmt.Errorf("report: copy transactions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range snap.BadRows {
		batch.Queue(
			`INSERT INTO snapshot_bad_rows (snapshot_id, line, seq, field, value, cause) VALUES ($1, $2, $3, $4, $5, $6)`,
			snap.ID, row.Line, row.Seq, row.Field, row.Value, row.Error())
	}
	for account, balance := range snap.Openings {
		batch.Queue(
			`INSERT INTO snapshot_openings (snapshot_id, account, balance) VALUES ($1, $2, $3)`,
			snap.ID, account, balance.String())
	}
	queueMappingInserts(batch, snap.ID, snap.Tables.Income)
	queueMappingInserts(batch, snap.ID, snap.Tables.Balance)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("report: insert snapshot parts: %w", err)
	}

	return tx.Commit(ctx)
}

func queueMappingInserts(batch *pgx.Batch, id uuid.UUID, table *mapping.Table) {
	if table == nil {
		return
	}
	for _, row := range table.Rows() {
		batch.Queue(
			`INSERT INTO snapshot_mappings (snapshot_id, statement, class1, class3, line, section, sign, display_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, table.Statement(), row.Class1, row.Class3, row.Line, row.Section, row.Sign, row.Order)
	}
}

// GetSnapshot loads a full snapshot by ID.
func (r *PostgresRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	snap := Snapshot{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT name, created_at FROM snapshots WHERE id = $1`, id).
		Scan(&snap.Name, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT seq, fund, class1, class3, account, account_name, reference, description, posted_on, amount::text
		 FROM snapshot_transactions WHERE snapshot_id = $1 ORDER BY seq`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var tx ledger.Transaction
		var amount string
		if err := rows.Scan(&tx.Seq, &tx.Fund, &tx.Class1, &tx.Class3, &tx.Account, &tx.AccountName,
			&tx.Reference, &tx.Description, &tx.Date, &amount); err != nil {
			return Snapshot{}, err
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return Snapshot{}, fmt.Errorf("report: stored amount %q: %w", amount, err)
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}

	if snap.BadRows, err = r.loadBadRows(ctx, id); err != nil {
		return Snapshot{}, err
	}
	if snap.Openings, err = r.loadOpenings(ctx, id); err != nil {
		return Snapshot{}, err
	}
	if snap.Tables, err = r.loadTables(ctx, id); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (r *PostgresRepository) loadBadRows(ctx context.Context, id uuid.UUID) ([]*ledger.RowError, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT line, seq, field, value, cause FROM snapshot_bad_rows WHERE snapshot_id = $1 ORDER BY line`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ledger.RowError
	for rows.Next() {
		var re ledger.RowError
		var cause string
		if err := rows.Scan(&re.Line, &re.Seq, &re.Field, &re.Value, &cause); err != nil {
			return nil, err
		}
		re.Cause = errors.New(cause)
		out = append(out, &re)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) loadOpenings(ctx context.Context, id uuid.UUID) (ledger.OpeningBalances, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT account, balance::text FROM snapshot_openings WHERE snapshot_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var openings ledger.OpeningBalances
	for rows.Next() {
		var account, raw string
		if err := rows.Scan(&account, &raw); err != nil {
			return nil, err
		}
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("report: stored balance %q: %w", raw, err)
		}
		if openings == nil {
			openings = make(ledger.OpeningBalances)
		}
		openings[account] = balance
	}
	return openings, rows.Err()
}

func (r *PostgresRepository) loadTables(ctx context.Context, id uuid.UUID) (mapping.Tables, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT statement, class1, class3, line, section, sign, display_order
		 FROM snapshot_mappings WHERE snapshot_id = $1`, id)
	if err != nil {
		return mapping.Tables{}, err
	}
	defer rows.Close()
	byStatement := make(map[string][]mapping.Row)
	for rows.Next() {
		var st string
		var row mapping.Row
		if err := rows.Scan(&st, &row.Class1, &row.Class3, &row.Line, &row.Section, &row.Sign, &row.Order); err != nil {
			return mapping.Tables{}, err
		}
		byStatement[st] = append(byStatement[st], row)
	}
	if err := rows.Err(); err != nil {
		return mapping.Tables{}, err
	}

	var tables mapping.Tables
	if tables.Income, err = mapping.NewTable(mapping.StatementIncome, byStatement[mapping.StatementIncome]); err != nil {
		return mapping.Tables{}, err
	}
	if tables.Balance, err = mapping.NewTable(mapping.StatementBalance, byStatement[mapping.StatementBalance]); err != nil {
		return mapping.Tables{}, err
	}
	return tables, nil
}

// ListSnapshots returns stored snapshots, newest first.
func (r *PostgresRepository) ListSnapshots(ctx context.Context) ([]SnapshotMeta, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.created_at,
		       (SELECT count(*) FROM snapshot_transactions t WHERE t.snapshot_id = s.id),
		       (SELECT count(*) FROM snapshot_bad_rows b WHERE b.snapshot_id = s.id),
		       (SELECT count(DISTINCT t.account) FROM snapshot_transactions t WHERE t.snapshot_id = s.id)
		FROM snapshots s ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotMeta
	for rows.Next() {
		var meta SnapshotMeta
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.CreatedAt, &meta.RowCount, &meta.BadRowCount, &meta.AccountCount); err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}
