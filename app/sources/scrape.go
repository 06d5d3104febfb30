package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

const (
	nonContentTags     = "script, style, nav, footer, header, noscript, svg, iframe"
	minBodyTextLength  = 100
	titleExcerptLength = 150
	textExcerptLength  = 500
	maxTitleLength     = 200
	maxSummaryParts    = 3
	minTitleLength     = 3
)

var (
	changelogSelectors = []string{
		"article",
		".changelog-entry",
		".release-note",
		".post",
		"section:not(:empty)",
		".entry",
		".update",
		"[class*='release']",
		"[class*='changelog']",
		"[class*='update']",
	}

	versionPattern = regexp.MustCompile(`(?i)(v?\d+\.\d+|release|update|version|changelog|what.?s.new)`)

	boilerplateWords = []string{
		"menu", "navigation", "sidebar", "footer", "header", "cookie",
		"privacy", "sign in", "log in", "subscribe", "contact", "about us",
	}
)

// locateStrategy is one way of finding candidate entry elements on a page.
type locateStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

func selectorStrategy(name, selector string) locateStrategy {
	return locateStrategy{
		name: name,
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(selector)
		},
	}
}

// entryStrategies returns the locate strategies in priority order.
func entryStrategies(spec feed.ScrapeSource) []locateStrategy {
	var strategies []locateStrategy

	if selector := spec.GetSelector(); selector != "" {
		strategies = append(strategies, selectorStrategy("selector "+selector, selector))
	}
	for _, selector := range changelogSelectors {
		strategies = append(strategies, selectorStrategy("fallback "+selector, selector))
	}
	strategies = append(strategies, selectorStrategy("headings", "h2, h3"))
	strategies = append(strategies, locateStrategy{
		name: "version links",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
				href, _ := s.Attr("href")
				return versionPattern.MatchString(s.Text() + " " + href)
			})
		},
	})

	return strategies
}

// locateEntries runs strategies in order and stops at the first one that
// matches anything.
func locateEntries(doc *goquery.Document, strategies []locateStrategy) (string, *goquery.Selection) {
	for _, strategy := range strategies {
		if found := strategy.find(doc); found.Length() > 0 {
			return strategy.name, found
		}
	}
	return "", nil
}

type ScrapeAdapter struct {
	fetcher *Fetcher
}

func NewScrapeAdapter(fetcher *Fetcher) *ScrapeAdapter {
	return &ScrapeAdapter{fetcher: fetcher}
}

func (a *ScrapeAdapter) Run(ctx context.Context, product feed.Product, spec feed.ScrapeSource) Result {
	data, err := a.fetcher.GetHTML(ctx, spec.URL)
	if err != nil {
		return failed(AsDiagnostic(err, spec.URL))
	}

	return a.Extract(data, product, spec)
}

// Extract turns an already fetched page into raw items.
func (a *ScrapeAdapter) Extract(data []byte, product feed.Product, spec feed.ScrapeSource) Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return failed(ClassifyParseError(err, spec.URL))
	}

	var result Result

	doc.Find(nonContentTags).Remove()

	if bodyText := feed.CleanText(doc.Find("body").Text()); len([]rune(bodyText)) < minBodyTextLength {
		result.add(Structural(spec.URL, "page appears client-rendered or empty (%d chars)", len([]rune(bodyText))))
	}

	strategy, entries := locateEntries(doc, entryStrategies(spec))
	if entries == nil {
		result.add(Structural(spec.URL, "no entry elements found"))
		return result
	}

	slog.Debug("Scrape entries located", "product", product.ID, "strategy", strategy, "count", entries.Length())

	pageURL, _ := url.Parse(spec.URL)

	entries.EachWithBreak(func(i int, el *goquery.Selection) bool {
		if i >= MaxItemsPerSource {
			return false
		}
		if item, ok := a.extractEntry(el, product, spec, pageURL); ok {
			result.Items = append(result.Items, item)
		}
		return true
	})

	return result
}

func (a *ScrapeAdapter) extractEntry(el *goquery.Selection, product feed.Product, spec feed.ScrapeSource, pageURL *url.URL) (feed.RawItem, bool) {
	title := a.extractTitle(el, spec)
	if len([]rune(title)) < minTitleLength || isBoilerplate(title) {
		return feed.RawItem{}, false
	}

	summary := a.extractSummary(el, spec, title)
	link := a.extractLink(el, product, pageURL)
	date := feed.ParseDate(a.extractDate(el, spec))

	if len([]rune(title)) > maxTitleLength {
		title = feed.HeadRunes(title, maxTitleLength-3) + "..."
	}

	return feed.RawItem{
		Title:   title,
		Link:    link,
		Summary: feed.TruncateSummary(summary),
		Date:    date,
	}, true
}

func (a *ScrapeAdapter) extractTitle(el *goquery.Selection, spec feed.ScrapeSource) string {
	if selector := spec.GetTitleSelector(); selector != "" {
		if titleEl := el.Find(selector).First(); titleEl.Length() > 0 {
			return feed.CleanText(titleEl.Text())
		}
	}
	return feed.CleanText(feed.HeadRunes(el.Text(), titleExcerptLength))
}

func (a *ScrapeAdapter) extractDate(el *goquery.Selection, spec feed.ScrapeSource) string {
	if spec.DateSelector != "" {
		if dateEl := el.Find(spec.DateSelector).First(); dateEl.Length() > 0 {
			if text := feed.CleanText(dateEl.Text()); text != "" {
				return text
			}
		}
	}
	datetime, _ := el.Find("time[datetime]").First().Attr("datetime")
	return datetime
}

func (a *ScrapeAdapter) extractSummary(el *goquery.Selection, spec feed.ScrapeSource, title string) string {
	if selector := spec.GetSummarySelector(); selector != "" {
		var parts []string
		el.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxSummaryParts {
				return false
			}
			parts = append(parts, feed.CleanText(s.Text()))
			return true
		})
		if summary := strings.TrimSpace(strings.Join(parts, " ")); summary != "" {
			return summary
		}
	}

	switch goquery.NodeName(el) {
	case "h2", "h3", "h4", "strong":
		sibling := el.Next()
		switch goquery.NodeName(sibling) {
		case "p", "ul", "div":
			if summary := feed.CleanText(feed.HeadRunes(sibling.Text(), textExcerptLength)); summary != "" {
				return summary
			}
		}
	}

	summary := feed.CleanText(feed.HeadRunes(el.Text(), textExcerptLength))
	if summary == title {
		return ""
	}
	return summary
}

func (a *ScrapeAdapter) extractLink(el *goquery.Selection, product feed.Product, pageURL *url.URL) string {
	anchor := el
	if goquery.NodeName(el) != "a" {
		anchor = el.Find("a[href]").First()
	}

	href, ok := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return product.ReleaseNotesURL
	}

	ref, err := url.Parse(href)
	if err != nil {
		return product.ReleaseNotesURL
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if pageURL == nil || !pageURL.IsAbs() {
		return product.ReleaseNotesURL
	}
	return pageURL.ResolveReference(ref).String()
}

func isBoilerplate(title string) bool {
	lower := strings.ToLower(title)
	for _, word := range boilerplateWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
