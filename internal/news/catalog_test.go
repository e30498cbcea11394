package news

import (
	"testing"
	"time"

	"vachan/backend/internal/factcheck"
)

func TestLoadSeed(t *testing.T) {
	catalog, err := LoadSeed()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if catalog.Len() != 18 {
		t.Fatalf("expected 18 seed articles, got %d", catalog.Len())
	}
	all := catalog.List(Filter{})
	for i := 1; i < len(all); i++ {
		if all[i].PublishedAt.After(all[i-1].PublishedAt) {
			t.Fatalf("articles not newest first at %d", i)
		}
	}
	if all[0].Source != "Reuters" {
		t.Fatalf("expected Reuters article first, got %q", all[0].Source)
	}
}

func TestFilter(t *testing.T) {
	catalog, err := LoadSeed()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"true status", Filter{Statuses: []factcheck.Label{factcheck.LabelTrue}}, 5},
		{"false status", Filter{Statuses: []factcheck.Label{factcheck.LabelFalse}}, 8},
		{"unverified status", Filter{Statuses: []factcheck.Label{factcheck.LabelUnverified}}, 4},
		{"true or misleading", Filter{Statuses: []factcheck.Label{factcheck.LabelTrue, factcheck.LabelMisleading}}, 6},
		{"source substring", Filter{Sources: []string{"twit"}}, 5},
		{"any of two sources", Filter{Sources: []string{"telegram", "mint"}}, 2},
		{"whatsapp and false", Filter{Sources: []string{"WhatsApp"}, Statuses: []factcheck.Label{factcheck.LabelFalse}}, 6},
		{"hashtag with hash", Filter{Hashtag: "#gdp"}, 1},
		{"query", Filter{Query: "PRIVACY"}, 1},
		{"date", Filter{Date: time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)}, 3},
		{"combined miss", Filter{Sources: []string{"reuters"}, Statuses: []factcheck.Label{factcheck.LabelFalse}}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(catalog.List(tc.filter)); got != tc.want {
				t.Fatalf("expected %d got %d", tc.want, got)
			}
		})
	}
}

func TestParseDefaultsUnknownStatus(t *testing.T) {
	catalog, err := Parse([]byte("- title: Something\n  fact_check:\n    status: satire\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := catalog.List(Filter{})[0]
	if a.FactCheck.Status != factcheck.LabelUnverified || a.Hashtags == nil {
		t.Fatalf("unexpected defaults %+v", a)
	}
	if _, err := Parse([]byte("- content: no title\n")); err == nil {
		t.Fatalf("expected missing title error")
	}
}

func TestFind(t *testing.T) {
	catalog, err := LoadSeed()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	byTitle, ok := catalog.Find("India's GDP Growth Rate Reaches 7.8% in Q1 2025")
	if !ok {
		t.Fatalf("expected exact title lookup to succeed")
	}
	if byTitle.Slug != "india-s-gdp-growth-rate-reaches-7-8-in-q1-2025" {
		t.Fatalf("unexpected slug %q", byTitle.Slug)
	}
	bySlug, ok := catalog.Find("  India-S-GDP-Growth-Rate-Reaches-7-8-in-Q1-2025 ")
	if !ok || bySlug.Title != byTitle.Title {
		t.Fatalf("expected slug lookup to find the same article, got %+v", bySlug)
	}
	for _, miss := range []string{"", "india's gdp growth rate reaches 7.8% in q1 2025", "no-such-article"} {
		if _, ok := catalog.Find(miss); ok {
			t.Fatalf("expected %q to miss", miss)
		}
	}
}

func TestSlugsAreUnique(t *testing.T) {
	catalog, err := Parse([]byte("- title: Same Title!\n- title: same title\n- title: '#Same  -- Title'\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	seen := map[string]bool{}
	for _, a := range catalog.List(Filter{}) {
		if seen[a.Slug] {
			t.Fatalf("duplicate slug %q", a.Slug)
		}
		seen[a.Slug] = true
	}
	for _, want := range []string{"same-title", "same-title-2", "same-title-3"} {
		if !seen[want] {
			t.Fatalf("expected slug %q in %v", want, seen)
		}
	}
}

func TestTrending(t *testing.T) {
	catalog, err := LoadSeed()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	topics := catalog.Trending(0)
	want := []Topic{
		{Name: "ClimateChange", Count: 3, Tweets: 0, Trend: TrendUp},
		{Name: "ISRO", Count: 2, Tweets: 107000, Trend: TrendDown},
		{Name: "Chandrayaan4", Count: 1, Tweets: 89000, Trend: TrendDown},
		{Name: "SpaceMission", Count: 1, Tweets: 89000, Trend: TrendDown},
		{Name: "Healthcare", Count: 1, Tweets: 67000, Trend: TrendDown},
	}
	if len(topics) != len(want) {
		t.Fatalf("expected %d topics got %d: %+v", len(want), len(topics), topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topic %d: expected %+v got %+v", i, want[i], topics[i])
		}
	}

	if got := catalog.Trending(100); len(got) <= len(want) {
		t.Fatalf("expected every hashtag with a large limit, got %d", len(got))
	}
	recent := catalog.Trending(100)
	for _, topic := range recent {
		if topic.Name == "ShadowDeal" && topic.Trend != TrendUp {
			t.Fatalf("a topic seen within the last week should be rising, got %+v", topic)
		}
	}

	empty, err := Parse([]byte("[]"))
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if got := empty.Trending(3); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil topics, got %#v", got)
	}
}
