package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

// table describes how one content type maps onto its SQL table.
// Table and column names are compile-time constants, never user input.
type table[T any] struct {
	name    string
	columns []string
	// fields returns scan destinations in column order.
	fields func(*T) []any
	// values returns query arguments in column order.
	values func(*T) []any
}

type PostgresRepository[T any, P models.Entity[T]] struct {
	db dbx.DBTX
	t  table[T]

	selectQuery string
	insertQuery string
	updateQuery string
}

func newPostgresRepository[T any, P models.Entity[T]](db dbx.DBTX, t table[T]) *PostgresRepository[T, P] {
	cols := strings.Join(t.columns, ", ")

	placeholders := make([]string, len(t.columns))
	assignments := make([]string, len(t.columns))
	for i, c := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	return &PostgresRepository[T, P]{
		db: db,
		t:  t,
		selectQuery: fmt.Sprintf(
			`SELECT id, sort_order, created_at, updated_at, %s FROM %s`, cols, t.name),
		insertQuery: fmt.Sprintf(
			`INSERT INTO %[1]s (%[2]s, sort_order)
			 VALUES (%[3]s, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %[1]s))
			 RETURNING id, sort_order, created_at, updated_at`,
			t.name, cols, strings.Join(placeholders, ", ")),
		updateQuery: fmt.Sprintf(
			`UPDATE %s SET %s, updated_at = now()
			 WHERE id = $%d
			 RETURNING sort_order, created_at, updated_at`,
			t.name, strings.Join(assignments, ", "), len(t.columns)+1),
	}
}

func (r *PostgresRepository[T, P]) scanDest(item *T) []any {
	m := P(item).GetMeta()
	return append([]any{&m.ID, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt}, r.t.fields(item)...)
}

func (r *PostgresRepository[T, P]) List(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.selectQuery+` ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var item T
		if err := rows.Scan(r.scanDest(&item)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository[T, P]) Get(ctx context.Context, id string) (*T, error) {
	item := new(T)
	err := r.db.QueryRowContext(ctx, r.selectQuery+` WHERE id = $1`, id).Scan(r.scanDest(item)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create appends the item at the end of the list and fills in its metadata.
func (r *PostgresRepository[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	m := P(item).GetMeta()
	err := r.db.QueryRowContext(ctx, r.insertQuery, r.t.values(item)...).
		Scan(&m.ID, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Update overwrites the content columns of the row identified by item's ID.
// Sort order is left untouched.
func (r *PostgresRepository[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	m := P(item).GetMeta()
	args := append(r.t.values(item), m.ID)
	err := r.db.QueryRowContext(ctx, r.updateQuery, args...).
		Scan(&m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository[T, P]) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.t.name), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository[T, P]) SetSortOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sort_order = $1, updated_at = now() WHERE id = $2`, r.t.name), order, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
