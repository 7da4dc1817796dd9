package models

import (
	"time"
)

// EpisodeState records the most recently announced episode for one feed.
// At most one row exists per feed; announcing a newer episode overwrites it.
type EpisodeState struct {
	FeedID        string    `gorm:"primaryKey" json:"feed_id"`
	EpisodeID     string    `gorm:"type:text;not null" json:"episode_id"`
	PublishedDate string    `gorm:"type:text" json:"published_date"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the original table name
func (EpisodeState) TableName() string {
	return "last_episodes"
}

// Entry is one normalized feed item. Optional fields are resolved once at
// parse time; consumers never probe the raw feed item again.
type Entry struct {
	ID        string // stable unique id from the feed (GUID, else link)
	Title     string
	Link      string
	Published string // original string form from the feed
	Summary   string // may contain HTML markup
	ImageURL  string // entry-level image, empty if none
	Duration  string // iTunes duration string, empty if none
	Author    string // first non-empty of author/creator variants
}

// Snapshot is the result of fetching one feed: feed-level metadata plus the
// entries in feed order (latest first).
type Snapshot struct {
	Title    string
	ImageURL string
	Entries  []Entry
}

// Latest returns the most recent entry, or false if the feed is empty
func (s *Snapshot) Latest() (Entry, bool) {
	if s == nil || len(s.Entries) == 0 {
		return Entry{}, false
	}
	return s.Entries[0], true
}
