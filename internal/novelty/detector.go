package novelty

import (
	"context"

	"github.com/podcast-notifier/internal/storage"
	"github.com/podcast-notifier/pkg/logger"
)

// Detector decides whether a feed's latest episode has already been announced
type Detector struct {
	repo storage.Repository
	log  *logger.Logger
}

// New creates a new novelty detector
func New(repo storage.Repository, log *logger.Logger) *Detector {
	return &Detector{
		repo: repo,
		log:  log.WithComponent("novelty"),
	}
}

// IsNew reports whether the candidate episode id differs from the stored one.
// An episode is new if no state exists for the feed yet, or if the stored id
// is not the candidate's id. Published dates are never compared; the id alone
// is the deduplication key.
func (d *Detector) IsNew(ctx context.Context, feedID, episodeID string) (bool, error) {
	state, err := d.repo.GetEpisodeState(ctx, feedID)
	if err != nil {
		return false, err
	}
	if state == nil {
		d.log.Debug().Str("feed", feedID).Msg("No stored state, episode is new")
		return true, nil
	}
	return state.EpisodeID != episodeID, nil
}

// MarkAnnounced records the episode as the feed's most recently announced one
func (d *Detector) MarkAnnounced(ctx context.Context, feedID, episodeID, publishedDate string) error {
	return d.repo.PutEpisodeState(ctx, feedID, episodeID, publishedDate)
}
