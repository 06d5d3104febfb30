package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

// MaxItemsPerSource caps the candidates any adapter returns per call.
const MaxItemsPerSource = 10

// Checker dispatches a product to the adapter for its source variant and
// applies the product's keyword filter. It never returns an error: failures
// are reported as diagnostics on the result.
type Checker struct {
	feeds      *FeedAdapter
	scrape     *ScrapeAdapter
	helpCenter *HelpCenterAdapter
	embedded   *EmbeddedJSONAdapter
	filterer   *feed.Filterer
}

func NewChecker(fetcher *Fetcher, filterer *feed.Filterer) *Checker {
	return &Checker{
		feeds:      NewFeedAdapter(fetcher),
		scrape:     NewScrapeAdapter(fetcher),
		helpCenter: NewHelpCenterAdapter(fetcher),
		embedded:   NewEmbeddedJSONAdapter(fetcher),
		filterer:   filterer,
	}
}

func (c *Checker) Run(ctx context.Context, product feed.Product) Result {
	var result Result

	switch spec := product.Source.Spec.(type) {
	case feed.FeedSource:
		result = c.feeds.Run(ctx, product, spec)
	case feed.ScrapeSource:
		result = c.scrape.Run(ctx, product, spec)
	case feed.HelpCenterSource:
		result = c.helpCenter.Run(ctx, product, spec)
	case feed.EmbeddedJSONSource:
		result = c.embedded.Run(ctx, product, spec)
	default:
		result = failed(&Diagnostic{
			Kind:    KindConfig,
			URL:     product.ReleaseNotesURL,
			Message: fmt.Sprintf("unsupported source %T", spec),
		})
	}

	for _, diagnostic := range result.Diagnostics {
		slog.Warn("Source check degraded",
			"product", product.ID,
			"kind", diagnostic.Kind,
			"url", diagnostic.URL,
			"error", diagnostic.Error())
	}

	if len(result.Items) > MaxItemsPerSource {
		result.Items = result.Items[:MaxItemsPerSource]
	}
	result.Items = c.filterer.Run(result.Items, product.Filter)

	return result
}
