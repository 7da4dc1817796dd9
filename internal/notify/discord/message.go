package discord

// Message is the webhook payload Discord expects
type Message struct {
	Content   string  `json:"content"`
	Embeds    []Embed `json:"embeds"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
}

// Embed is the rich-content block inside a message
type Embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Color       int         `json:"color"`
	Footer      EmbedFooter `json:"footer"`
	Author      EmbedAuthor `json:"author"`
	Fields      []Field     `json:"fields"`
	Thumbnail   *EmbedImage `json:"thumbnail,omitempty"`
	Image       *EmbedImage `json:"image,omitempty"`
}

// EmbedFooter is the embed footer line
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedAuthor is the embed author block
type EmbedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Field is one name/value pair inside an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedImage is a thumbnail or large image reference
type EmbedImage struct {
	URL string `json:"url"`
}
