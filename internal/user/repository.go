// Package user manages user identity records and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is the internal identity record behind an externally verified identity.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"externalId"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when the external identity is already registered.
var ErrAlreadyExists = errors.New("user already exists")

// ErrUsernameTaken is returned when the display name belongs to a different user.
var ErrUsernameTaken = errors.New("username already taken")

// Repository defines the persistence operations for users.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	Insert(ctx context.Context, externalID, username string) (*User, error)
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgresRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByExternalID fetches a user by the identity provider's identifier.
func (r *PostgresRepository) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, external_id, username, created_at
		 FROM users WHERE external_id = $1`,
		externalID,
	).Scan(&u.ID, &u.ExternalID, &u.Username, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

// Insert creates a new user record. The database's unique constraints are the
// single source of truth for uniqueness: a violation on external_id maps to
// ErrAlreadyExists (the caller lost a creation race and should re-read), a
// violation on username maps to ErrUsernameTaken.
func (r *PostgresRepository) Insert(ctx context.Context, externalID, username string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (external_id, username)
		 VALUES ($1, $2)
		 RETURNING id, external_id, username, created_at`,
		externalID, username,
	).Scan(&u.ID, &u.ExternalID, &u.Username, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return nil, ErrUsernameTaken
			}
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}
