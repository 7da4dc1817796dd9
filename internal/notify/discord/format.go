package discord

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/podcast-notifier/internal/catalog/spotify"
	"github.com/podcast-notifier/internal/config"
	"github.com/podcast-notifier/internal/models"
)

const (
	embedColor = 3447003 // blue

	descriptionMaxLen = 1000

	unknownValue = "Unbekannt"
)

// episodeNumberRe captures the episode number from titles like "Folge 42: ..."
var episodeNumberRe = regexp.MustCompile(`Folge (\d+)`)

// dateLayouts are the RFC-822-like variants podcast feeds actually emit
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Mon, 02 Jan 2006 15:04:05 +0000",
}

// displayZone is the civil timezone dates are rendered in
var displayZone = loadDisplayZone()

func loadDisplayZone() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
}

// BuildMessage assembles the webhook payload for one new episode
func BuildMessage(feed config.FeedConfig, snap *models.Snapshot, entry models.Entry, match *spotify.Match) Message {
	link := entry.Link
	if match != nil && match.URL != "" {
		link = match.URL
	}

	// The footer credits the hosts; feeds without a creator fall back to
	// the podcast title
	footerName := entry.Author
	if footerName == "" {
		footerName = snap.Title
	}

	embed := Embed{
		Title:       entry.Title,
		Description: CleanDescription(entry.Summary),
		URL:         link,
		Color:       embedColor,
		Footer: EmbedFooter{
			Text: fmt.Sprintf("%s • %s", footerName, FormatDate(entry.Published)),
		},
		Author: EmbedAuthor{
			Name: snap.Title,
		},
		Fields: []Field{
			{Name: "Episode", Value: EpisodeNumber(entry.Title), Inline: true},
			{Name: "Dauer", Value: FormatDuration(entry.Duration), Inline: true},
		},
	}

	if imageURL := pickImage(snap, entry, match); imageURL != "" {
		embed.Thumbnail = &EmbedImage{URL: imageURL}
		embed.Image = &EmbedImage{URL: imageURL}
	}

	mention := ""
	if feed.RoleID != "" {
		mention = fmt.Sprintf("<@&%s> ", feed.RoleID)
	}

	username := feed.BotName
	if username == "" {
		username = snap.Title
	}
	avatar := feed.BotAvatar
	if avatar == "" {
		avatar = snap.ImageURL
	}

	return Message{
		Content:   fmt.Sprintf("%s%s - %s", mention, snap.Title, entry.Title),
		Embeds:    []Embed{embed},
		Username:  username,
		AvatarURL: avatar,
	}
}

// pickImage resolves the embed image with a fixed precedence: catalog match,
// entry image, feed image
func pickImage(snap *models.Snapshot, entry models.Entry, match *spotify.Match) string {
	if match != nil && match.ImageURL != "" {
		return match.ImageURL
	}
	if entry.ImageURL != "" {
		return entry.ImageURL
	}
	return snap.ImageURL
}

// CleanDescription strips markup from a feed summary and bounds its length
// for the embed description
func CleanDescription(summary string) string {
	text := html.UnescapeString(stripTags(summary))

	runes := []rune(text)
	if len(runes) > descriptionMaxLen {
		text = string(runes[:descriptionMaxLen-3]) + "..."
	}
	return text
}

// stripTags removes HTML tags and collapses whitespace
func stripTags(text string) string {
	text = strings.ReplaceAll(text, "<br>", " ")
	text = strings.ReplaceAll(text, "<br/>", " ")
	text = strings.ReplaceAll(text, "<br />", " ")
	text = strings.ReplaceAll(text, "</p>", " ")

	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
		} else if r == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(strings.Join(strings.Fields(result.String()), " "))
}

// EpisodeNumber extracts the episode number from the title, following the
// community's "Folge <n>" title convention
func EpisodeNumber(title string) string {
	m := episodeNumberRe.FindStringSubmatch(title)
	if m == nil {
		return unknownValue
	}
	return m[1]
}

// FormatDuration passes a H:MM:SS duration through and falls back to the raw
// value; an absent duration renders as unknown
func FormatDuration(duration string) string {
	if duration == "" {
		return unknownValue
	}
	parts := strings.Split(duration, ":")
	if len(parts) == 3 {
		return fmt.Sprintf("%s:%s:%s", parts[0], parts[1], parts[2])
	}
	return duration
}

// FormatDate parses the feed's published string against the known layout
// variants and renders it in the display timezone. Unparseable dates are
// shown verbatim.
func FormatDate(published string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, published)
		if err != nil {
			continue
		}
		// Layouts without an offset parse as UTC, which is what we assume
		return t.In(displayZone).Format("02.01.2006 um 15:04 Uhr")
	}
	return published
}
