package storage

import (
	"context"

	"github.com/podcast-notifier/internal/models"
)

// Repository defines the persistence interface for per-feed episode state
type Repository interface {
	// GetEpisodeState returns the stored state for a feed, or (nil, nil) if
	// no episode has been announced for it yet
	GetEpisodeState(ctx context.Context, feedID string) (*models.EpisodeState, error)

	// PutEpisodeState upserts the state row for a feed
	PutEpisodeState(ctx context.Context, feedID, episodeID, publishedDate string) error

	// ListEpisodeStates returns all stored rows, ordered by feed id
	ListEpisodeStates(ctx context.Context) ([]*models.EpisodeState, error)

	// Migrate ensures the schema exists
	Migrate() error

	// Close closes the underlying database
	Close() error
}
