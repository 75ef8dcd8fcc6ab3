package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
	"github.com/okian/recessionwatch/internal/domain/types"
	"github.com/okian/recessionwatch/migrations"
)

// PostgresStore keeps snapshots in Postgres, one row per table cell.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and verifies it.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{Pool: pool}, nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}

// Save writes the snapshot header and every cell in one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) (err error) {
	started := time.Now()
	defer func() { observe("save", started, err) }()

	if snap.Table == nil {
		return ErrNilTable
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	t := snap.Table

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO fused_tables (id, created_at, row_count, columns) VALUES ($1, $2, $3, $4)`,
		snap.ID, snap.CreatedAt, t.Len(), t.Columns(),
	); err != nil {
		return fmt.Errorf("insert table: %w", err)
	}

	cols := t.Columns()
	dates := t.Dates()
	rows := make([][]any, 0, len(dates)*len(cols))
	for i, d := range dates {
		for _, c := range cols {
			var v *float64
			if f, ok := t.Value(i, c).Get(); ok {
				v = &f
			}
			rows = append(rows, []any{snap.ID, d.Time(), c, v})
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"fused_values"},
		[]string{"table_id", "month", "column_name", "value"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy values: %w", err)
	}
	return tx.Commit(ctx)
}

// Latest loads the most recent snapshot.
func (s *PostgresStore) Latest(ctx context.Context) (snap Snapshot, err error) {
	started := time.Now()
	defer func() { observe("latest", started, err) }()

	var columns []string
	err = s.Pool.QueryRow(ctx,
		`SELECT id, created_at, columns FROM fused_tables ORDER BY created_at DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.CreatedAt, &columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load table header: %w", err)
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT month, column_name, value FROM fused_values WHERE table_id = $1 ORDER BY month`,
		snap.ID,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load values: %w", err)
	}
	defer rows.Close()

	var cells []cell
	for rows.Next() {
		var c cell
		if err := rows.Scan(&c.month, &c.column, &c.value); err != nil {
			return Snapshot{}, fmt.Errorf("scan value: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load values: %w", err)
	}

	snap.Table, err = assemble(columns, cells)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// cell is one stored (month, column, value) triple.
type cell struct {
	month  time.Time
	column string
	value  *float64
}

// assemble rebuilds a table from long-format cells. Missing cells are
// unknown; cells naming a column outside columns are rejected.
func assemble(columns []string, cells []cell) (*fusion.Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	byMonth := make(map[int64][]types.Optional)
	var months []time.Time
	for _, c := range cells {
		j, ok := index[c.column]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrCorruptRow, c.column)
		}
		key := c.month.Unix()
		row, seen := byMonth[key]
		if !seen {
			row = make([]types.Optional, len(columns))
			byMonth[key] = row
			months = append(months, c.month)
		}
		if c.value != nil {
			row[j] = types.Known(*c.value)
		}
	}
	sort.Slice(months, func(a, b int) bool { return months[a].Before(months[b]) })

	dates := make([]calendar.Date, len(months))
	for i, m := range months {
		dates[i] = calendar.FromTime(m)
	}
	f, err := fusion.NewFrame("stored", dates)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRow, err)
	}
	for j, name := range columns {
		values := make([]types.Optional, len(months))
		for i, m := range months {
			values[i] = byMonth[m.Unix()][j]
		}
		if err := f.Add(name, values); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRow, err)
		}
	}
	return fusion.NewTable(f), nil
}
