// Package hashtag manages the shared hashtag namespace.
package hashtag

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Hashtag is a tag shared across all users. Names are unique with
// case-sensitive equality; hashtags are never deleted.
type Hashtag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ErrAlreadyExists is returned when a hashtag with the exact name already exists.
var ErrAlreadyExists = errors.New("hashtag already exists")

// Repository defines the persistence operations for hashtags.
type Repository interface {
	Create(ctx context.Context, name string) (*Hashtag, error)
	List(ctx context.Context) ([]Hashtag, error)
	Search(ctx context.Context, query string) ([]Hashtag, error)
	GetOrCreate(ctx context.Context, name string) (*Hashtag, error)
}

// Querier is the subset of pgx capabilities GetOrCreate needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so tag resolution can run inside an
// open transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgresRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new hashtag. The unique index on name is the single source
// of truth: no pre-check read, a violation maps to ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, name string) (*Hashtag, error) {
	h := &Hashtag{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO hashtags (name) VALUES ($1) RETURNING id, name`,
		name,
	).Scan(&h.ID, &h.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert hashtag: %w", err)
	}
	return h, nil
}

// List returns all hashtags. No ordering is guaranteed.
func (r *PostgresRepository) List(ctx context.Context) ([]Hashtag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM hashtags`)
	if err != nil {
		return nil, fmt.Errorf("list hashtags: %w", err)
	}
	defer rows.Close()

	return scanHashtags(rows)
}

// Search returns hashtags whose name contains query, case-insensitively.
func (r *PostgresRepository) Search(ctx context.Context, query string) ([]Hashtag, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM hashtags WHERE name ILIKE '%' || $1 || '%'`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("search hashtags: %w", err)
	}
	defer rows.Close()

	return scanHashtags(rows)
}

// GetOrCreate returns the hashtag with the exact name, creating it if absent.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, name string) (*Hashtag, error) {
	return GetOrCreate(ctx, r.db, name)
}

// GetOrCreate resolves name to a hashtag on any Querier, so callers holding an
// open transaction can resolve tags inside it. The single-statement upsert
// makes the operation race-free: concurrent creators of the same name all
// receive the one surviving row.
func GetOrCreate(ctx context.Context, q Querier, name string) (*Hashtag, error) {
	h := &Hashtag{}
	err := q.QueryRow(ctx,
		`INSERT INTO hashtags (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		name,
	).Scan(&h.ID, &h.Name)
	if err != nil {
		return nil, fmt.Errorf("get or create hashtag %q: %w", name, err)
	}
	return h, nil
}

func scanHashtags(rows pgx.Rows) ([]Hashtag, error) {
	tags := []Hashtag{}
	for rows.Next() {
		var h Hashtag
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, fmt.Errorf("scan hashtag: %w", err)
		}
		tags = append(tags, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hashtags: %w", err)
	}
	return tags, nil
}
