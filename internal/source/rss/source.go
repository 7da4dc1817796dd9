package rss

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/podcast-notifier/internal/models"
	"github.com/podcast-notifier/pkg/logger"
)

// Fetcher retrieves podcast feeds and normalizes them into snapshots
type Fetcher struct {
	parser *gofeed.Parser
	log    *logger.Logger
}

// New creates a new feed fetcher
func New(log *logger.Logger) *Fetcher {
	return &Fetcher{
		parser: gofeed.NewParser(),
		log:    log.WithComponent("rss"),
	}
}

// Fetch retrieves one feed and returns its normalized snapshot. A feed with
// zero entries yields an empty snapshot and no error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Snapshot, error) {
	f.log.Debug().Str("url", url).Msg("Fetching feed")

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", url, err)
	}

	snap := &models.Snapshot{
		Title:   feed.Title,
		Entries: make([]models.Entry, 0, len(feed.Items)),
	}
	if feed.Image != nil {
		snap.ImageURL = feed.Image.URL
	}

	for _, item := range feed.Items {
		snap.Entries = append(snap.Entries, normalizeItem(item))
	}

	f.log.Info().
		Int("count", len(snap.Entries)).
		Str("title", snap.Title).
		Msg("Fetched feed")

	return snap, nil
}

// normalizeItem resolves all optional fields once, so downstream code never
// has to probe the raw feed item.
func normalizeItem(item *gofeed.Item) models.Entry {
	entry := models.Entry{
		ID:        item.GUID,
		Title:     item.Title,
		Link:      item.Link,
		Published: item.Published,
		Summary:   item.Description,
	}

	// Some feeds omit the GUID; the link is the next most stable id
	if entry.ID == "" {
		entry.ID = item.Link
	}

	if item.Image != nil {
		entry.ImageURL = item.Image.URL
	}

	if item.ITunesExt != nil {
		entry.Duration = item.ITunesExt.Duration
		if entry.ImageURL == "" {
			entry.ImageURL = item.ITunesExt.Image
		}
	}

	entry.Author = resolveAuthor(item)

	return entry
}

// resolveAuthor picks the creator with a fixed precedence: item author,
// iTunes author, first named entry in the authors list, dc:creator.
func resolveAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if item.ITunesExt != nil && item.ITunesExt.Author != "" {
		return item.ITunesExt.Author
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	return ""
}
