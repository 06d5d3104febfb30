package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	// PubDateLayout is the RFC-2822 layout used for every date in the feeds.
	PubDateLayout = "Mon, 02 Jan 2006 15:04:05 +0000"

	DescriptionFormatHTML = "html"
	DescriptionFormatText = "text"

	MasterFeedID = "all"
	OPMLFileName = "all-feeds.opml"
)

// MasterTeam describes the combined cross-team feed.
var MasterTeam = Team{
	ID:          MasterFeedID,
	Name:        "All Teams",
	Description: "Combined release notes from all teams",
}

type GeneratorOptions struct {
	BaseURL           string
	// BaseURLFunc, when set, is consulted on every render so a reloaded
	// configuration takes effect. An empty result falls back to BaseURL.
	BaseURLFunc       func() string
	DescriptionFormat string
	MaxItems          int
	Version           string
}

type Generator struct {
	opts GeneratorOptions
	now  func() time.Time
}

func NewGenerator(opts GeneratorOptions) *Generator {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.DescriptionFormat == "" {
		opts.DescriptionFormat = DescriptionFormatHTML
	}
	return &Generator{opts: opts, now: time.Now}
}

func (g *Generator) baseURL() string {
	if g.opts.BaseURLFunc != nil {
		if baseURL := strings.TrimRight(g.opts.BaseURLFunc(), "/"); baseURL != "" {
			return baseURL
		}
	}
	return g.opts.BaseURL
}

// FeedURL is the public URL of a team's rendered feed.
func (g *Generator) FeedURL(teamID string) string {
	return fmt.Sprintf("%s/feeds/%s.xml", g.baseURL(), teamID)
}

func FeedFileName(teamID string) string {
	return teamID + ".xml"
}

// Run renders an RSS 2.0 document for team. Items are ordered newest first
// and capped at MaxItems.
func (g *Generator) Run(team Team, items []Item) (string, error) {
	var buf bytes.Buffer
	now := g.now().UTC()
	feedURL := g.FeedURL(team.ID)

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("%s - Release Notes", team.Name), 4)
	description := team.Description
	if description == "" {
		description = fmt.Sprintf("Release notes for products managed by %s", team.Name)
	}
	g.writeElement(&buf, "description", description, 4)
	g.writeElement(&buf, "link", feedURL, 4)
	g.writeElement(&buf, "language", "en-us", 4)
	g.writeElement(&buf, "lastBuildDate", now.Format(PubDateLayout), 4)
	if g.opts.Version != "" {
		g.writeElement(&buf, "generator", fmt.Sprintf("Release-Notes-Monitor/%s", g.opts.Version), 4)
	}
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(feedURL)))

	sorted := SortNewestFirst(items)
	if g.opts.MaxItems > 0 && len(sorted) > g.opts.MaxItems {
		sorted = sorted[:g.opts.MaxItems]
	}

	for _, item := range sorted {
		g.writeItem(&buf, item, now)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

// RunMaster renders the combined feed. The same item can sit in several
// team histories, so duplicates are dropped before rendering.
func (g *Generator) RunMaster(items []Item) (string, error) {
	return g.Run(MasterTeam, Merge(nil, items, 0))
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item, now time.Time) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", DisplayTitle(item), 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", g.description(item), 6)

	guid := item.ID
	if guid == "" {
		guid = ItemID(item.ProductID, item.Title, item.Link)
	}
	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	pubDate, ok := ParseISO(item.Date)
	if !ok {
		pubDate = now
	}
	g.writeElement(buf, "pubDate", pubDate.UTC().Format(PubDateLayout), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) description(item Item) string {
	if g.opts.DescriptionFormat == DescriptionFormatText {
		if item.Summary != "" {
			return item.Summary
		}
		return item.Title
	}

	return fmt.Sprintf(
		`<p><img src="%s" alt="%s" width="24" height="24" style="vertical-align:middle;margin-right:8px;"/><strong>%s</strong></p><p>%s</p><p><a href="%s">Read more →</a></p>`,
		html.EscapeString(item.IconURL),
		html.EscapeString(item.ProductName),
		html.EscapeString(item.ProductName),
		html.EscapeString(item.Summary),
		html.EscapeString(item.Link),
	)
}

// DisplayTitle prefixes the item title with its product name when known.
func DisplayTitle(item Item) string {
	if item.ProductName == "" {
		return item.Title
	}
	return fmt.Sprintf("%s - %s", item.ProductName, item.Title)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
