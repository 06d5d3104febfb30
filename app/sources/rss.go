package sources

import (
	"bytes"
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

type FeedAdapter struct {
	fetcher      *Fetcher
	gofeedParser *gofeed.Parser
}

func NewFeedAdapter(fetcher *Fetcher) *FeedAdapter {
	return &FeedAdapter{
		fetcher:      fetcher,
		gofeedParser: gofeed.NewParser(),
	}
}

func (a *FeedAdapter) Run(ctx context.Context, product feed.Product, spec feed.FeedSource) Result {
	data, err := a.fetcher.Get(ctx, spec.FeedURL)
	if err != nil {
		return failed(AsDiagnostic(err, spec.FeedURL))
	}

	parsed, err := a.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return failed(ClassifyParseError(err, spec.FeedURL))
	}

	entries := parsed.Items
	if len(entries) > MaxItemsPerSource {
		entries = entries[:MaxItemsPerSource]
	}

	items := make([]feed.RawItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, a.normalizeItem(entry, product))
	}

	return Result{Items: items}
}

func (a *FeedAdapter) normalizeItem(entry *gofeed.Item, product feed.Product) feed.RawItem {
	title := feed.CleanText(entry.Title)
	if title == "" {
		title = "Untitled"
	}

	link := entry.Link
	if link == "" {
		link = product.ReleaseNotesURL
	}

	summary := entry.Description
	if feed.CleanText(summary) == "" {
		summary = entry.Content
	}

	item := feed.RawItem{
		Title:   title,
		Link:    link,
		Summary: feed.TruncateSummary(feed.StripHTML(summary)),
	}

	if entry.PublishedParsed != nil {
		item.Date = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		item.Date = entry.UpdatedParsed.UTC()
	}

	return item
}
