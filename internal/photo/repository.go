// Package photo owns the photo catalog and the upload workflow.
package photo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/picstash/service/internal/hashtag"
)

// Photo is one uploaded image. The owner reference is immutable after
// creation; hashtags are attached at creation time only.
type Photo struct {
	ID         int64             `json:"id"`
	OwnerID    int64             `json:"ownerId"`
	PublicURL  string            `json:"publicUrl"`
	StorageKey string            `json:"storageKey"`
	CreatedAt  time.Time         `json:"createdAt"`
	Hashtags   []hashtag.Hashtag `json:"hashtags"`
}

// ErrNotFound is returned when a photo does not exist or belongs to a
// different owner. The two conditions are deliberately indistinguishable so
// an id's existence is never confirmed to non-owners.
var ErrNotFound = errors.New("photo not found")

// Repository defines the persistence operations for photos.
type Repository interface {
	Create(ctx context.Context, ownerID int64, publicURL, storageKey string, tagNames []string) (*Photo, error)
	ListByOwner(ctx context.Context, ownerID int64, tagFilter string) ([]Photo, error)
	GetByOwner(ctx context.Context, ownerID, photoID int64) (*Photo, error)
	DeleteByOwner(ctx context.Context, ownerID, photoID int64) error
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgresRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists a photo row together with its hashtag associations in one
// transaction. Tag names are trimmed, empties dropped, and duplicates
// collapsed while preserving order. All-or-nothing: any failure rolls the
// whole write back and the connection returns to the pool on every exit path.
func (r *PostgresRepository) Create(ctx context.Context, ownerID int64, publicURL, storageKey string, tagNames []string) (*Photo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	p := &Photo{
		OwnerID:    ownerID,
		PublicURL:  publicURL,
		StorageKey: storageKey,
		Hashtags:   []hashtag.Hashtag{},
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO photos (owner_id, public_url, storage_key)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		ownerID, publicURL, storageKey,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}

	for _, name := range normalizeTags(tagNames) {
		h, err := hashtag.GetOrCreate(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO photo_hashtags (photo_id, hashtag_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			p.ID, h.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("link hashtag %q: %w", name, err)
		}
		p.Hashtags = append(p.Hashtags, *h)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return p, nil
}

// ListByOwner returns all photos owned by ownerID. A non-empty tagFilter
// restricts the result to photos associated with the hashtag whose name
// exactly equals the filter; an unknown tag yields an empty slice.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64, tagFilter string) ([]Photo, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if tagFilter != "" {
		rows, err = r.db.Query(ctx,
			`SELECT p.id, p.owner_id, p.public_url, p.storage_key, p.created_at
			 FROM photos p
			 JOIN photo_hashtags ph ON ph.photo_id = p.id
			 JOIN hashtags h ON h.id = ph.hashtag_id
			 WHERE p.owner_id = $1 AND h.name = $2
			 ORDER BY p.created_at DESC`,
			ownerID, tagFilter,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, owner_id, public_url, storage_key, created_at
			 FROM photos
			 WHERE owner_id = $1
			 ORDER BY created_at DESC`,
			ownerID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.PublicURL, &p.StorageKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		p.Hashtags = []hashtag.Hashtag{}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	if err := r.attachHashtags(ctx, photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// GetByOwner fetches a single photo scoped to its owner. Missing and
// other-owned photos both map to ErrNotFound.
func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID, photoID int64) (*Photo, error) {
	photos := make([]Photo, 1)
	p := &photos[0]
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, public_url, storage_key, created_at
		 FROM photos
		 WHERE id = $1 AND owner_id = $2`,
		photoID, ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.PublicURL, &p.StorageKey, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}

	p.Hashtags = []hashtag.Hashtag{}
	if err := r.attachHashtags(ctx, photos); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteByOwner removes the photo row; association rows go with the foreign
// key cascade. Zero rows affected means the photo does not exist or belongs
// to someone else — both map to ErrNotFound.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID, photoID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM photos WHERE id = $1 AND owner_id = $2`,
		photoID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// attachHashtags loads the hashtags for all given photos in one batched query.
func (r *PostgresRepository) attachHashtags(ctx context.Context, photos []Photo) error {
	if len(photos) == 0 {
		return nil
	}

	ids := make([]int64, len(photos))
	index := make(map[int64]int, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.db.Query(ctx,
		`SELECT ph.photo_id, h.id, h.name
		 FROM photo_hashtags ph
		 JOIN hashtags h ON h.id = ph.hashtag_id
		 WHERE ph.photo_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load photo hashtags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			photoID int64
			h       hashtag.Hashtag
		)
		if err := rows.Scan(&photoID, &h.ID, &h.Name); err != nil {
			return fmt.Errorf("scan photo hashtag: %w", err)
		}
		i := index[photoID]
		photos[i].Hashtags = append(photos[i].Hashtags, h)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate photo hashtags: %w", err)
	}
	return nil
}

// normalizeTags trims surrounding whitespace, drops empties, and collapses
// duplicates while preserving first-seen order.
func normalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
