package schema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/reqtrace/pkg/errors"
)

// DefaultSampleSize is the number of rows read by [Introspector.Sample] when
// the caller passes a non-positive limit.
const DefaultSampleSize = 5

// DBPool is the subset of *pgxpool.Pool the introspector needs. Tests supply
// a pgxmock pool.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Rows is a sample of table rows with their column names.
type Rows struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

// Introspector reads schema information from a PostgreSQL database.
type Introspector struct {
	pool   DBPool
	schema string
}

// Connect opens a pgx pool for dsn and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "database URL is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping database")
	}
	return pool, nil
}

// New returns an Introspector over the given schema ("public" when empty).
// The pool is pinged once.
func New(ctx context.Context, pool DBPool, schemaName string) (*Introspector, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName = "public"
	}
	return &Introspector{pool: pool, schema: schemaName}, nil
}

const columnsQuery = `
	SELECT table_name, column_name, data_type
	FROM information_schema.columns
	WHERE table_schema = $1
	ORDER BY table_name, ordinal_position`

// Schema returns every table in the configured schema with its columns.
func (i *Introspector) Schema(ctx context.Context) (Snapshot, error) {
	rows, err := i.pool.Query(ctx, columnsQuery, i.schema)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query columns")
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var table, column, typ string
		if err := rows.Scan(&table, &column, &typ); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		if snap[table] == nil {
			snap[table] = map[string]string{}
		}
		snap[table][column] = typ
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterate columns")
	}
	return snap, nil
}

// Sample reads up to n rows from table. The name is validated before it is
// quoted into the statement.
func (i *Introspector) Sample(ctx context.Context, table string, n int) (*Rows, error) {
	if err := errors.ValidateTableName(table); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultSampleSize
	}

	sql := "SELECT * FROM " + pgx.Identifier{i.schema, table}.Sanitize() + " LIMIT $1"
	rows, err := i.pool.Query(ctx, sql, n)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "sample table %s", table)
	}
	defer rows.Close()

	out := &Rows{Table: table}
	for _, fd := range rows.FieldDescriptions() {
		out.Columns = append(out.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		out.Values = append(out.Values, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterate rows of %s", table)
	}
	return out, nil
}

// Format renders the sample as plain text, one row per line, for inclusion
// in a prompt.
func (r *Rows) Format() string {
	if r == nil || len(r.Values) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sample data from table %s:\n", r.Table)
	if len(r.Columns) > 0 {
		b.WriteString(strings.Join(r.Columns, " | "))
		b.WriteByte('\n')
	}
	for _, row := range r.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}
