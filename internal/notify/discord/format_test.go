package discord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcast-notifier/internal/catalog/spotify"
	"github.com/podcast-notifier/internal/config"
	"github.com/podcast-notifier/internal/models"
)

func TestCleanDescription_StripsMarkupAndEntities(t *testing.T) {
	got := CleanDescription("<p>Hello &amp; welcome</p>")
	assert.Equal(t, "Hello & welcome", got)
}

func TestCleanDescription_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 1001)
	got := CleanDescription(long)

	assert.Len(t, []rune(got), 1000)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 997), strings.TrimSuffix(got, "..."))
}

func TestCleanDescription_LeavesShortTextAlone(t *testing.T) {
	exact := strings.Repeat("b", 1000)
	assert.Equal(t, exact, CleanDescription(exact))
}

func TestEpisodeNumber(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Folge 42: Something", "42"},
		{"Folge 99: Test", "99"},
		{"Bonusmaterial ohne Nummer", "Unbekannt"},
		{"", "Unbekannt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EpisodeNumber(tt.title), "title %q", tt.title)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1:02:03", FormatDuration("1:02:03"))
	assert.Equal(t, "45:30", FormatDuration("45:30"))
	assert.Equal(t, "Unbekannt", FormatDuration(""))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name      string
		published string
		want      string
	}{
		{"numeric offset UTC winter", "Mon, 01 Jan 2024 10:00:00 +0000", "01.01.2024 um 11:00 Uhr"},
		{"numeric offset UTC summer", "Mon, 01 Jul 2024 10:00:00 +0000", "01.07.2024 um 12:00 Uhr"},
		{"literal GMT", "Mon, 01 Jan 2024 10:00:00 GMT", "01.01.2024 um 11:00 Uhr"},
		{"already local offset", "Tue, 02 Jan 2024 09:30:00 +0100", "02.01.2024 um 09:30 Uhr"},
		{"unparseable shown verbatim", "gestern irgendwann", "gestern irgendwann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.published))
		})
	}
}

func TestBuildMessage(t *testing.T) {
	feed := config.FeedConfig{
		ID:         1,
		WebhookURL: "https://discord.example/hook",
		RoleID:     "1234",
	}
	snap := &models.Snapshot{
		Title:    "Verplant",
		ImageURL: "https://pod.example/cover.jpg",
	}
	entry := models.Entry{
		ID:        "ep-7",
		Title:     "Folge 7: Urlaub",
		Link:      "https://pod.example/7",
		Published: "Mon, 01 Jan 2024 10:00:00 +0000",
		Summary:   "<p>Wir sind &amp; bleiben verplant</p>",
		Duration:  "1:00:00",
	}

	msg := BuildMessage(feed, snap, entry, nil)

	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]

	assert.Equal(t, "<@&1234> Verplant - Folge 7: Urlaub", msg.Content)
	assert.Equal(t, "Folge 7: Urlaub", embed.Title)
	assert.Equal(t, "Wir sind & bleiben verplant", embed.Description)
	assert.Equal(t, "https://pod.example/7", embed.URL)
	assert.Equal(t, 3447003, embed.Color)
	assert.Equal(t, "Verplant", embed.Author.Name)
	assert.Equal(t, "Verplant • 01.01.2024 um 11:00 Uhr", embed.Footer.Text)

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Episode", embed.Fields[0].Name)
	assert.Equal(t, "7", embed.Fields[0].Value)
	assert.Equal(t, "Dauer", embed.Fields[1].Name)
	assert.Equal(t, "1:00:00", embed.Fields[1].Value)

	// No entry image, so the feed image is used everywhere
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "https://pod.example/cover.jpg", embed.Thumbnail.URL)
	assert.Equal(t, "Verplant", msg.Username)
	assert.Equal(t, "https://pod.example/cover.jpg", msg.AvatarURL)
}

func TestBuildMessage_CatalogMatchWins(t *testing.T) {
	feed := config.FeedConfig{ID: 1, WebhookURL: "https://discord.example/hook"}
	snap := &models.Snapshot{Title: "Verplant", ImageURL: "https://pod.example/cover.jpg"}
	entry := models.Entry{
		ID:       "ep-8",
		Title:    "Folge 8",
		Link:     "https://pod.example/8",
		ImageURL: "https://pod.example/8.jpg",
	}
	match := &spotify.Match{
		Name:     "Folge 8",
		URL:      "https://open.spotify.com/episode/abc",
		ImageURL: "https://i.scdn.co/image/abc",
	}

	msg := BuildMessage(feed, snap, entry, match)

	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "https://open.spotify.com/episode/abc", msg.Embeds[0].URL)
	assert.Equal(t, "https://i.scdn.co/image/abc", msg.Embeds[0].Thumbnail.URL)
	// No role configured, so no mention prefix
	assert.Equal(t, "Verplant - Folge 8", msg.Content)
}

func TestBuildMessage_FooterCreditsEntryAuthor(t *testing.T) {
	feed := config.FeedConfig{ID: 1}
	snap := &models.Snapshot{Title: "Verplant"}
	entry := models.Entry{
		ID:        "ep-10",
		Title:     "Folge 10",
		Author:    "Jamy und Max",
		Published: "Mon, 01 Jan 2024 10:00:00 +0000",
	}

	msg := BuildMessage(feed, snap, entry, nil)

	assert.Equal(t, "Jamy und Max • 01.01.2024 um 11:00 Uhr", msg.Embeds[0].Footer.Text)
}

func TestBuildMessage_BotOverrides(t *testing.T) {
	feed := config.FeedConfig{
		ID:        1,
		BotName:   "Podcast-Bote",
		BotAvatar: "https://bots.example/avatar.png",
	}
	snap := &models.Snapshot{Title: "Verplant"}
	entry := models.Entry{ID: "ep-9", Title: "Folge 9", Link: "https://pod.example/9"}

	msg := BuildMessage(feed, snap, entry, nil)

	assert.Equal(t, "Podcast-Bote", msg.Username)
	assert.Equal(t, "https://bots.example/avatar.png", msg.AvatarURL)
	// Nothing has an image anywhere
	assert.Nil(t, msg.Embeds[0].Thumbnail)
	assert.Nil(t, msg.Embeds[0].Image)
}
