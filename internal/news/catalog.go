package news

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vachan/backend/internal/factcheck"
)

//go:embed articles.yaml
var seedArticles []byte

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

const (
	// trendWindow is how close to the newest article a topic must have been
	// seen to count as rising.
	trendWindow         = 7 * 24 * time.Hour
	defaultTrendingSize = 5

	TrendUp   = "up"
	TrendDown = "down"
)

// Engagement carries social reach figures for an article.
type Engagement struct {
	Tweets        int `yaml:"tweets" json:"tweets,omitempty"`
	BotPercentage int `yaml:"bot_percentage" json:"botPercentage,omitempty"`
}

// EditorialCheck is the newsroom's own verdict on an article.
type EditorialCheck struct {
	Status  factcheck.Label `yaml:"status" json:"status"`
	Details string          `yaml:"details" json:"details"`
	Sources []string        `yaml:"sources" json:"sources"`
}

// Article is a news item shown in the feed.
type Article struct {
	Slug        string         `yaml:"-" json:"slug"`
	Title       string         `yaml:"title" json:"title"`
	Content     string         `yaml:"content" json:"content"`
	Source      string         `yaml:"source" json:"source"`
	SourceURL   string         `yaml:"source_url" json:"sourceUrl"`
	Hashtags    []string       `yaml:"hashtags" json:"hashtags"`
	PublishedAt time.Time      `yaml:"published_at" json:"publishedAt"`
	Author      string         `yaml:"author" json:"author"`
	Engagement  Engagement     `yaml:"engagement" json:"engagementStats"`
	FactCheck   EditorialCheck `yaml:"fact_check" json:"factCheck"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Sources  []string
	Statuses []factcheck.Label
	Hashtag  string
	Query    string
	Date     time.Time
}

// Topic is a hashtag ranked by how often it appears in the catalog.
type Topic struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Tweets int    `json:"tweets"`
	Trend  string `json:"trend"`
}

// Catalog is an immutable, newest-first set of articles.
type Catalog struct {
	articles []Article
}

// LoadSeed parses the bundled sample articles.
func LoadSeed() (*Catalog, error) {
	return Parse(seedArticles)
}

// Parse decodes a YAML list of articles.
func Parse(data []byte) (*Catalog, error) {
	var articles []Article
	if err := yaml.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	seen := make(map[string]int, len(articles))
	for i := range articles {
		a := &articles[i]
		if strings.TrimSpace(a.Title) == "" {
			return nil, fmt.Errorf("article %d has no title", i)
		}
		a.Slug = Slugify(a.Title)
		if n := seen[a.Slug]; n > 0 {
			seen[a.Slug] = n + 1
			a.Slug += "-" + strconv.Itoa(n+1)
		} else {
			seen[a.Slug] = 1
		}
		if _, ok := factcheck.ParseLabel(string(a.FactCheck.Status)); !ok {
			a.FactCheck.Status = factcheck.LabelUnverified
		}
		if a.Hashtags == nil {
			a.Hashtags = []string{}
		}
		if a.FactCheck.Sources == nil {
			a.FactCheck.Sources = []string{}
		}
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return &Catalog{articles: articles}, nil
}

// Len reports the number of articles.
func (c *Catalog) Len() int {
	return len(c.articles)
}

// List returns copies of the articles matching the filter.
func (c *Catalog) List(f Filter) []Article {
	out := make([]Article, 0, len(c.articles))
	for _, a := range c.articles {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// Find looks an article up by exact title or by slug.
func (c *Catalog) Find(titleOrSlug string) (Article, bool) {
	key := strings.TrimSpace(titleOrSlug)
	if key == "" {
		return Article{}, false
	}
	for _, a := range c.articles {
		if a.Title == key || a.Slug == strings.ToLower(key) {
			return a, true
		}
	}
	return Article{}, false
}

// Trending ranks hashtags by the number of articles carrying them, then by
// combined tweet volume. A topic is rising when it appears within a week of
// the newest article in the catalog.
func (c *Catalog) Trending(limit int) []Topic {
	if limit <= 0 {
		limit = defaultTrendingSize
	}
	if len(c.articles) == 0 {
		return []Topic{}
	}
	newest := c.articles[0].PublishedAt

	type tally struct {
		topic  Topic
		latest time.Time
	}
	byKey := make(map[string]*tally)
	for _, a := range c.articles {
		for _, tag := range a.Hashtags {
			key := strings.ToLower(tag)
			t, ok := byKey[key]
			if !ok {
				t = &tally{topic: Topic{Name: tag}}
				byKey[key] = t
			}
			t.topic.Count++
			t.topic.Tweets += a.Engagement.Tweets
			if a.PublishedAt.After(t.latest) {
				t.latest = a.PublishedAt
			}
		}
	}

	topics := make([]Topic, 0, len(byKey))
	for _, t := range byKey {
		t.topic.Trend = TrendDown
		if newest.Sub(t.latest) <= trendWindow {
			t.topic.Trend = TrendUp
		}
		topics = append(topics, t.topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		if topics[i].Tweets != topics[j].Tweets {
			return topics[i].Tweets > topics[j].Tweets
		}
		return topics[i].Name < topics[j].Name
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

// Slugify turns a title into a lowercase, dash-separated URL segment.
func Slugify(title string) string {
	return strings.Trim(slugSeparator.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func (f Filter) matches(a Article) bool {
	if !f.Date.IsZero() {
		y1, m1, d1 := a.PublishedAt.UTC().Date()
		y2, m2, d2 := f.Date.UTC().Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if len(f.Sources) > 0 {
		source := strings.ToLower(a.Source)
		found := false
		for _, s := range f.Sources {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" && strings.Contains(source, s) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == a.FactCheck.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if tag := strings.TrimPrefix(strings.TrimSpace(f.Hashtag), "#"); tag != "" {
		found := false
		for _, h := range a.Hashtags {
			if strings.EqualFold(h, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Content), q) {
			return false
		}
	}
	return true
}
