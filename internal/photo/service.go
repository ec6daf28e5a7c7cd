package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/picstash/service/internal/storage"
)

// ErrStorage is returned when the object store rejects a blob write. No
// metadata is written in that case.
var ErrStorage = errors.New("object storage write failed")

// Service orchestrates the upload workflow and exposes the photo catalog.
type Service struct {
	repo  Repository
	store storage.Storage
}

// NewService creates a new photo Service.
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// Upload stores the blob in object storage and then records the photo with
// its hashtags. The blob is written first: a storage failure leaves no
// metadata behind, while a metadata failure may orphan the blob (accepted —
// readers never see a photo row whose key failed to upload).
//
// The storage key is a random unique token carrying the original filename's
// extension, case preserved. A filename without a dot yields no extension.
// tagsCSV is split on commas with surrounding whitespace trimmed; empty
// pieces are dropped and the catalog collapses duplicates.
func (s *Service) Upload(ctx context.Context, ownerID int64, blob io.Reader, size int64, contentType, filename, tagsCSV string) (*Photo, error) {
	key := uuid.NewString() + path.Ext(filename)

	if err := s.store.Upload(ctx, key, blob, size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	publicURL := s.store.PublicURL(key)

	return s.repo.Create(ctx, ownerID, publicURL, key, splitTags(tagsCSV))
}

// ListForOwner returns the owner's photos, optionally restricted to those
// tagged with the hashtag named exactly tagFilter.
func (s *Service) ListForOwner(ctx context.Context, ownerID int64, tagFilter string) ([]Photo, error) {
	return s.repo.ListByOwner(ctx, ownerID, tagFilter)
}

// GetForOwner returns a single photo scoped to its owner.
func (s *Service) GetForOwner(ctx context.Context, ownerID, photoID int64) (*Photo, error) {
	return s.repo.GetByOwner(ctx, ownerID, photoID)
}

// DeleteForOwner removes the photo's metadata and association rows. The
// underlying blob stays in object storage; storage.Storage.Delete is the
// hook for the deferred cleanup work.
func (s *Service) DeleteForOwner(ctx context.Context, ownerID, photoID int64) error {
	return s.repo.DeleteByOwner(ctx, ownerID, photoID)
}

// IsNotFound returns true when the error indicates a missing or not-owned photo.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageFailure returns true when the error came from the object store.
func (s *Service) IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorage)
}

// splitTags parses a comma-separated tag list, trimming whitespace and
// dropping empty pieces while preserving order. Duplicates pass through.
func splitTags(csv string) []string {
	if csv == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(csv, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
