package user

import (
	"context"
	"errors"
	"fmt"
)

// Service contains business logic for user identity management.
type Service struct {
	repo Repository
}

// NewService creates a new user Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the user registered under externalID, creating one on first
// sight. An existing user is returned unchanged — the display name claim does
// not overwrite the stored username. When the insert loses a concurrent race
// on external_id the winner's record is re-read and returned; a username
// collision with a different user surfaces as ErrUsernameTaken.
func (s *Service) Resolve(ctx context.Context, externalID, username string) (*User, error) {
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	u, err = s.repo.Insert(ctx, externalID, username)
	if errors.Is(err, ErrAlreadyExists) {
		// Lost the race: another request registered this identity first.
		return s.repo.GetByExternalID(ctx, externalID)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByExternalID returns the user registered under externalID without
// creating one.
func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
