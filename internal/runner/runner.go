package runner

import (
	"context"
	"fmt"
	"strconv"

	"github.com/podcast-notifier/internal/catalog/spotify"
	"github.com/podcast-notifier/internal/config"
	"github.com/podcast-notifier/internal/models"
	"github.com/podcast-notifier/internal/notify/discord"
	"github.com/podcast-notifier/internal/novelty"
	"github.com/podcast-notifier/pkg/logger"
)

// FeedFetcher retrieves one feed's snapshot
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Snapshot, error)
}

// CatalogResolver finds the catalog episode for a feed title; nil means no
// match and the feed link is used instead
type CatalogResolver interface {
	Lookup(ctx context.Context, title, showID string) *spotify.Match
}

// WebhookSender delivers a message to a webhook
type WebhookSender interface {
	Send(ctx context.Context, webhookURL string, msg discord.Message) error
}

// Runner executes one full pass over all configured feeds
type Runner struct {
	feeds    []config.FeedConfig
	fetcher  FeedFetcher
	detector *novelty.Detector
	catalog  CatalogResolver
	sender   WebhookSender
	log      *logger.Logger
}

// New creates a new runner
func New(feeds []config.FeedConfig, fetcher FeedFetcher, detector *novelty.Detector, catalog CatalogResolver, sender WebhookSender, log *logger.Logger) *Runner {
	return &Runner{
		feeds:    feeds,
		fetcher:  fetcher,
		detector: detector,
		catalog:  catalog,
		sender:   sender,
		log:      log.WithComponent("runner"),
	}
}

// Run processes every configured feed in order. A failure in one feed is
// logged and never aborts the others; only an empty configuration is fatal.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.feeds) == 0 {
		r.log.Error().Msg("No feeds configured")
		return fmt.Errorf("no feeds configured")
	}

	r.log.Info().Int("feeds", len(r.feeds)).Msg("Starting feed check")

	for _, feed := range r.feeds {
		if err := r.processFeed(ctx, feed); err != nil {
			r.log.Error().Err(err).Int("feed_id", feed.ID).Msg("Failed to process feed")
		}
	}

	r.log.Info().Msg("Feed check finished")

	return nil
}

// processFeed runs the full pipeline for a single feed. State is written
// only after successful delivery, so a failed send is retried next run.
func (r *Runner) processFeed(ctx context.Context, feed config.FeedConfig) error {
	log := r.log.WithFeed(feed.ID)
	feedID := strconv.Itoa(feed.ID)

	snap, err := r.fetcher.Fetch(ctx, feed.FeedURL)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	latest, ok := snap.Latest()
	if !ok {
		log.Warn().Msg("Feed has no entries")
		return nil
	}

	isNew, err := r.detector.IsNew(ctx, feedID, latest.ID)
	if err != nil {
		return fmt.Errorf("novelty check: %w", err)
	}
	if !isNew {
		log.Debug().Str("episode", latest.ID).Msg("No new episode")
		return nil
	}

	log.Info().Str("title", latest.Title).Msg("New episode found")

	match := r.catalog.Lookup(ctx, latest.Title, feed.SpotifyShowID)

	msg := discord.BuildMessage(feed, snap, latest, match)

	if err := r.sender.Send(ctx, feed.WebhookURL, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if err := r.detector.MarkAnnounced(ctx, feedID, latest.ID, latest.Published); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	log.Info().Str("episode", latest.ID).Msg("Notification sent")

	return nil
}
