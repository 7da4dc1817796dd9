package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/podcast-notifier/internal/models"
	"github.com/podcast-notifier/internal/storage"
)

// Repository implements storage.Repository using SQLite
type Repository struct {
	db *gorm.DB
}

// New creates a new SQLite repository
func New(dsn string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Migrate runs database migrations
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.EpisodeState{})
}

// Close closes the database connection
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) GetEpisodeState(ctx context.Context, feedID string) (*models.EpisodeState, error) {
	var state models.EpisodeState
	err := r.db.WithContext(ctx).Where("feed_id = ?", feedID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *Repository) PutEpisodeState(ctx context.Context, feedID, episodeID, publishedDate string) error {
	state := models.EpisodeState{
		FeedID:        feedID,
		EpisodeID:     episodeID,
		PublishedDate: publishedDate,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feed_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"episode_id", "published_date", "updated_at"}),
		}).
		Create(&state).Error
}

func (r *Repository) ListEpisodeStates(ctx context.Context) ([]*models.EpisodeState, error) {
	var states []*models.EpisodeState
	if err := r.db.WithContext(ctx).Order("feed_id").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// Ensure Repository implements storage.Repository
var _ storage.Repository = (*Repository)(nil)
