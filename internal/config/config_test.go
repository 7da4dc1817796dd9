package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFeeds_Enumerated(t *testing.T) {
	t.Setenv("FEED_URL_1", "https://pod.example/feed.xml")
	t.Setenv("WEBHOOK_URL_1", "https://discord.example/hook1")
	t.Setenv("ROLE_ID_1", "1234")
	t.Setenv("FEED_URL_2", "https://other.example/feed.xml")
	t.Setenv("WEBHOOK_URL_2", "https://discord.example/hook2")
	t.Setenv("SPOTIFY_SHOW_ID_2", "show123")
	t.Setenv("BOT_NAME_2", "Podcast-Bote")

	feeds := LoadFeeds()

	require.Len(t, feeds, 2)

	assert.Equal(t, 1, feeds[0].ID)
	assert.Equal(t, "https://pod.example/feed.xml", feeds[0].FeedURL)
	assert.Equal(t, "https://discord.example/hook1", feeds[0].WebhookURL)
	assert.Equal(t, "1234", feeds[0].RoleID)
	assert.Empty(t, feeds[0].SpotifyShowID)

	assert.Equal(t, 2, feeds[1].ID)
	assert.Equal(t, "show123", feeds[1].SpotifyShowID)
	assert.Equal(t, "Podcast-Bote", feeds[1].BotName)
}

func TestLoadFeeds_StopsAtFirstGap(t *testing.T) {
	t.Setenv("FEED_URL_1", "https://pod.example/feed.xml")
	t.Setenv("WEBHOOK_URL_1", "https://discord.example/hook1")
	// Index 2 is missing the webhook, index 3 is complete but unreachable
	t.Setenv("FEED_URL_2", "https://other.example/feed.xml")
	t.Setenv("FEED_URL_3", "https://third.example/feed.xml")
	t.Setenv("WEBHOOK_URL_3", "https://discord.example/hook3")

	feeds := LoadFeeds()

	require.Len(t, feeds, 1)
	assert.Equal(t, 1, feeds[0].ID)
}

func TestLoadFeeds_None(t *testing.T) {
	t.Setenv("FEED_URL_1", "")
	t.Setenv("WEBHOOK_URL_1", "")

	assert.Empty(t, LoadFeeds())
}

func TestValidate_SpotifyCredentialsMustBePaired(t *testing.T) {
	cfg := &Config{Spotify: SpotifyConfig{ClientID: "id-only"}}
	assert.Error(t, cfg.Validate())

	cfg.Spotify.ClientSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_FeedsNeedBothURLs(t *testing.T) {
	cfg := &Config{Feeds: []FeedConfig{{ID: 1, FeedURL: "https://pod.example/feed.xml"}}}
	assert.Error(t, cfg.Validate())

	cfg.Feeds[0].WebhookURL = "https://discord.example/hook"
	assert.NoError(t, cfg.Validate())
}
