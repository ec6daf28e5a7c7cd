package hashtag

import (
	"context"
	"errors"
	"strings"
)

// Service contains business logic for the hashtag directory.
type Service struct {
	repo Repository
}

// NewService creates a new hashtag Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new hashtag with the exact given name.
func (s *Service) Create(ctx context.Context, name string) (*Hashtag, error) {
	return s.repo.Create(ctx, name)
}

// List returns all hashtags.
func (s *Service) List(ctx context.Context) ([]Hashtag, error) {
	return s.repo.List(ctx)
}

// Search returns hashtags whose name contains query as a case-insensitive
// substring. An empty or whitespace-only query matches nothing.
func (s *Service) Search(ctx context.Context, query string) ([]Hashtag, error) {
	if strings.TrimSpace(query) == "" {
		return []Hashtag{}, nil
	}
	return s.repo.Search(ctx, query)
}

// IsConflict returns true when the error indicates a duplicate hashtag name.
func (s *Service) IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
