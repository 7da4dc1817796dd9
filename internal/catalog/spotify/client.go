package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/podcast-notifier/pkg/logger"
	"github.com/podcast-notifier/pkg/ratelimit"
)

const (
	defaultAPIURL   = "https://api.spotify.com"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	// tokens are refreshed this long before their actual expiry
	tokenSafetyMargin = 300 * time.Second

	// how many recent episodes to scan before falling back to search
	recentEpisodeLimit = 10

	searchQueryMaxLen = 60
)

// Match is a resolved catalog episode used as a prettier link target
type Match struct {
	ID       string
	Name     string
	URL      string
	ImageURL string
}

// episode mirrors the fields we read from Spotify's episode objects
type episode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Show struct {
		ID string `json:"id"`
	} `json:"show"`
}

func (e *episode) toMatch() *Match {
	m := &Match{
		ID:   e.ID,
		Name: e.Name,
		URL:  e.ExternalURLs.Spotify,
	}
	if len(e.Images) > 0 {
		m.ImageURL = e.Images[0].URL
	}
	return m
}

// Client resolves feed episodes against the Spotify catalog. Without
// credentials it is permanently disabled and every lookup reports no match.
type Client struct {
	creds       clientcredentials.Config
	market      string
	apiURL      string
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
	disabled    bool

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

// NewClient creates a new Spotify catalog client. Empty credentials disable
// all lookups; this is logged once here, not per lookup.
func NewClient(clientID, clientSecret, market string, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	c := &Client{
		creds: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     defaultTokenURL,
		},
		market: market,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter,
		log:         log.WithComponent("spotify"),
	}

	if clientID == "" || clientSecret == "" {
		c.disabled = true
		c.log.Info().Msg("No Spotify credentials configured, catalog lookups disabled")
	}

	return c
}

// Lookup finds the catalog episode matching a feed episode title within a
// show. The cascade: scan the show's recent episodes for a title match, then
// the global episode search filtered to the show, then fall back to the
// show's latest episode unverified. Network failures are logged and degrade
// to no match; the caller falls back to the feed-supplied link.
func (c *Client) Lookup(ctx context.Context, title, showID string) *Match {
	if c.disabled || showID == "" {
		return nil
	}

	recent, err := c.showEpisodes(ctx, showID, recentEpisodeLimit)
	if err != nil {
		c.log.Warn().Err(err).Str("show", showID).Msg("Failed to list show episodes")
	}

	for i := range recent {
		if titlesMatch(title, recent[i].Name) {
			c.log.Debug().Str("episode", recent[i].Name).Msg("Matched recent catalog episode")
			return recent[i].toMatch()
		}
	}

	results, err := c.searchEpisodes(ctx, sanitizeQuery(title))
	if err != nil {
		c.log.Warn().Err(err).Str("title", title).Msg("Catalog search failed")
	}

	for i := range results {
		if results[i].Show.ID != showID {
			continue
		}
		if titlesMatch(title, results[i].Name) {
			c.log.Debug().Str("episode", results[i].Name).Msg("Matched catalog episode via search")
			return results[i].toMatch()
		}
	}

	// Best effort: link the show's latest episode even without a title match
	if len(recent) > 0 {
		c.log.Debug().
			Str("title", title).
			Str("episode", recent[0].Name).
			Msg("No title match, falling back to latest catalog episode")
		return recent[0].toMatch()
	}

	return nil
}

// token returns a valid bearer token, reusing the cached one while it remains
// inside the safety margin
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachedToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSafetyMargin)) {
		return c.cachedToken, nil
	}

	tok, err := c.creds.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire token: %w", err)
	}

	c.cachedToken = tok.AccessToken
	c.tokenExpiry = tok.Expiry

	c.log.Debug().Time("expires_at", tok.Expiry).Msg("Acquired Spotify access token")

	return c.cachedToken, nil
}

// get performs an authenticated GET against the Spotify Web API
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterSpotify); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := c.apiURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) showEpisodes(ctx context.Context, showID string, limit int) ([]episode, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if c.market != "" {
		params.Set("market", c.market)
	}

	var result struct {
		Items []episode `json:"items"`
	}
	if err := c.get(ctx, "/v1/shows/"+showID+"/episodes", params, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *Client) searchEpisodes(ctx context.Context, query string) ([]episode, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "episode")
	params.Set("limit", "50")
	if c.market != "" {
		params.Set("market", c.market)
	}

	var result struct {
		Episodes struct {
			Items []episode `json:"items"`
		} `json:"episodes"`
	}
	if err := c.get(ctx, "/v1/search", params, &result); err != nil {
		return nil, err
	}
	return result.Episodes.Items, nil
}

// titlesMatch tests case-insensitive substring containment in either direction
func titlesMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// sanitizeQuery strips characters Spotify's search chokes on and truncates
// the query to a safe length
func sanitizeQuery(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '&', '-':
			return -1
		}
		return r
	}, title)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	runes := []rune(cleaned)
	if len(runes) > searchQueryMaxLen {
		runes = runes[:searchQueryMaxLen]
	}
	return strings.TrimSpace(string(runes))
}
