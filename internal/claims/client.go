package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultLanguage is used when a search does not name a language.
const DefaultLanguage = "en"

// Config drives the Fact Check Tools client.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	PageSize int
}

// Publisher identifies the organisation behind a review.
type Publisher struct {
	Name string `json:"name,omitempty"`
	Site string `json:"site,omitempty"`
}

// Review is one published verdict on a claim.
type Review struct {
	Publisher     Publisher `json:"publisher"`
	URL           string    `json:"url,omitempty"`
	Title         string    `json:"title,omitempty"`
	ReviewDate    string    `json:"reviewDate,omitempty"`
	TextualRating string    `json:"textualRating,omitempty"`
	LanguageCode  string    `json:"languageCode,omitempty"`
}

// Claim is a statement that fact-checkers have reviewed.
type Claim struct {
	Text        string   `json:"text"`
	Claimant    string   `json:"claimant,omitempty"`
	ClaimDate   string   `json:"claimDate,omitempty"`
	ClaimReview []Review `json:"claimReview,omitempty"`
}

// SearchResult mirrors the claims:search response body.
type SearchResult struct {
	Claims        []Claim `json:"claims"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

var (
	// ErrMissingCredentials is returned when no API key is configured.
	ErrMissingCredentials = errors.New("claims client missing api key")
	// ErrNoQuery is returned for blank searches.
	ErrNoQuery = errors.New("claims query is empty")
	// ErrUpstream marks transport failures and non-2xx replies.
	ErrUpstream = errors.New("fact check api unavailable")
)

// Client searches published fact-checks with a small TTL cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	cacheTTL   time.Duration
	cache      sync.Map // map[string]cacheEntry
}

type cacheEntry struct {
	at     time.Time
	result SearchResult
}

// NewClient constructs a client if configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		pageSize:   cfg.PageSize,
		cacheTTL:   ttl,
	}, nil
}

// Search looks up reviews matching query. An empty language means English.
func (c *Client) Search(ctx context.Context, query, languageCode string) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, ErrMissingCredentials
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrNoQuery
	}
	languageCode = strings.TrimSpace(languageCode)
	if languageCode == "" {
		languageCode = DefaultLanguage
	}

	key := languageCode + "|" + strings.ToLower(query)
	if entry, ok := c.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if time.Since(cached.at) < c.cacheTTL {
			return cached.result, nil
		}
		c.cache.Delete(key)
	}

	result, err := c.performRequest(ctx, query, languageCode)
	if err != nil {
		return SearchResult{}, err
	}
	c.cache.Store(key, cacheEntry{at: time.Now(), result: result})
	return result, nil
}

func (c *Client) performRequest(ctx context.Context, query, languageCode string) (SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("languageCode", languageCode)
	params.Set("key", c.apiKey)
	if c.pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(c.pageSize))
	}

	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint = endpoint + "&" + params.Encode()
	} else {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %s", ErrUpstream, redact(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SearchResult{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SearchResult{}, fmt.Errorf("decode claims response: %w", err)
	}
	if result.Claims == nil {
		result.Claims = []Claim{}
	}
	return result, nil
}

// redact strips the key from transport errors, which echo the request URL.
func redact(message, key string) string {
	if key == "" {
		return message
	}
	return strings.ReplaceAll(message, url.QueryEscape(key), "REDACTED")
}
