package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/podcast-notifier/internal/catalog/spotify"
	"github.com/podcast-notifier/internal/config"
	"github.com/podcast-notifier/internal/notify/discord"
	"github.com/podcast-notifier/internal/novelty"
	"github.com/podcast-notifier/internal/runner"
	"github.com/podcast-notifier/internal/source/rss"
	"github.com/podcast-notifier/internal/storage"
	"github.com/podcast-notifier/internal/storage/sqlite"
	"github.com/podcast-notifier/pkg/logger"
	"github.com/podcast-notifier/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
	repo    storage.Repository
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "podcast-notifier",
		Short: "Podcast episode notifier for Discord",
		Long: `Polls podcast RSS feeds, detects newly published episodes and posts
a formatted announcement to a Discord webhook, optionally linking the
episode on Spotify.`,
		PersistentPreRunE: initializeApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(feedsCmd())
	rootCmd.AddCommand(stateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	repo, err = sqlite.New(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Check all feeds once and announce new episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer repo.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			limiter := ratelimit.NewDefaultLimiter()

			r := runner.New(
				cfg.Feeds,
				rss.New(log),
				novelty.New(repo, log),
				spotify.NewClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.Market, limiter, log),
				discord.NewSender(limiter, log),
				log,
			)

			return r.Run(ctx)
		},
	}
}

func feedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "Print the loaded feed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer repo.Close()

			if len(cfg.Feeds) == 0 {
				fmt.Println("No feeds configured")
				return nil
			}

			for _, feed := range cfg.Feeds {
				fmt.Printf("Feed %d\n", feed.ID)
				fmt.Printf("  URL:     %s\n", feed.FeedURL)
				fmt.Printf("  Webhook: %s\n", truncateSecret(feed.WebhookURL))
				if feed.RoleID != "" {
					fmt.Printf("  Role:    %s\n", feed.RoleID)
				}
				if feed.SpotifyShowID != "" {
					fmt.Printf("  Show:    %s\n", feed.SpotifyShowID)
				}
			}
			return nil
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the stored per-feed episode state",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer repo.Close()

			states, err := repo.ListEpisodeStates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list state: %w", err)
			}

			if len(states) == 0 {
				fmt.Println("No episode state stored yet")
				return nil
			}

			for _, s := range states {
				fmt.Printf("Feed %s\n", s.FeedID)
				fmt.Printf("  Episode:   %s\n", s.EpisodeID)
				fmt.Printf("  Published: %s\n", s.PublishedDate)
				fmt.Printf("  Updated:   %s\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// truncateSecret shortens webhook URLs for display, they embed a token
func truncateSecret(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:57] + "..."
}
