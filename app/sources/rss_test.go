package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedAdapterNormalizesEntries(t *testing.T) {
	server := serveFeed(t, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Widget changelog</title>
    <item>
      <title>v2.3   released</title>
      <link>https://example.com/v2.3</link>
      <description>&lt;p&gt;Faster &lt;b&gt;sync&lt;/b&gt; and fixes.&lt;/p&gt;</description>
      <pubDate>Tue, 02 Apr 2024 12:00:00 +0000</pubDate>
    </item>
    <item>
      <description>No title or link here</description>
    </item>
  </channel>
</rss>`)

	adapter := NewFeedAdapter(NewFetcher(server.Client(), "test-agent"))
	result := adapter.Run(context.Background(), testProduct, feed.FeedSource{FeedURL: server.URL})

	if len(result.Diagnostics) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", result.Diagnostics)
	}
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}

	first := result.Items[0]
	if first.Title != "v2.3 released" {
		t.Errorf("Expected cleaned title, got '%s'", first.Title)
	}
	if first.Summary != "Faster sync and fixes." {
		t.Errorf("Expected markup stripped from summary, got '%s'", first.Summary)
	}
	if feed.FormatISO(first.Date) != "2024-04-02T12:00:00Z" {
		t.Errorf("Expected published date, got %v", first.Date)
	}

	second := result.Items[1]
	if second.Title != "Untitled" {
		t.Errorf("Expected default title, got '%s'", second.Title)
	}
	if second.Link != testProduct.ReleaseNotesURL {
		t.Errorf("Expected link fallback, got '%s'", second.Link)
	}
	if !second.Date.IsZero() {
		t.Errorf("Expected unknown date, got %v", second.Date)
	}
}

func TestFeedAdapterAtomUpdatedDateAndLongSummary(t *testing.T) {
	long := strings.Repeat("release ", 60)
	server := serveFeed(t, `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Widget changelog</title>
  <id>urn:widget</id>
  <updated>2024-03-09T08:30:00Z</updated>
  <entry>
    <title>Widget 4.0</title>
    <id>urn:widget:4.0</id>
    <link href="https://example.com/4.0"/>
    <updated>2024-03-09T08:30:00Z</updated>
    <summary>`+long+`</summary>
  </entry>
</feed>`)

	adapter := NewFeedAdapter(NewFetcher(server.Client(), "test-agent"))
	result := adapter.Run(context.Background(), testProduct, feed.FeedSource{FeedURL: server.URL})

	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d: %v", len(result.Items), result.Diagnostics)
	}

	item := result.Items[0]
	if feed.FormatISO(item.Date) != "2024-03-09T08:30:00Z" {
		t.Errorf("Expected updated date fallback, got %v", item.Date)
	}
	if item.Link != "https://example.com/4.0" {
		t.Errorf("Expected entry link, got '%s'", item.Link)
	}

	expected := strings.TrimSpace(strings.Repeat("release ", 37)) + "..."
	if item.Summary != expected {
		t.Errorf("Expected summary cut at a word boundary, got '%s'", item.Summary)
	}
}

func TestFeedAdapterCapsEntries(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "<item><title>Release %d</title><link>https://example.com/%d</link></item>", i, i)
	}
	b.WriteString(`</channel></rss>`)

	server := serveFeed(t, b.String())

	adapter := NewFeedAdapter(NewFetcher(server.Client(), "test-agent"))
	result := adapter.Run(context.Background(), testProduct, feed.FeedSource{FeedURL: server.URL})

	if len(result.Items) != MaxItemsPerSource {
		t.Fatalf("Expected %d items, got %d", MaxItemsPerSource, len(result.Items))
	}
	if result.Items[0].Title != "Release 0" {
		t.Errorf("Expected feed order preserved, got '%s'", result.Items[0].Title)
	}
}

func TestFeedAdapterUnparseable(t *testing.T) {
	server := serveFeed(t, "this is not a feed")

	adapter := NewFeedAdapter(NewFetcher(server.Client(), "test-agent"))
	result := adapter.Run(context.Background(), testProduct, feed.FeedSource{FeedURL: server.URL})

	if len(result.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(result.Items))
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Kind != KindTransient {
		t.Errorf("Expected one transient diagnostic, got %v", result.Diagnostics)
	}
}
