package feed

import (
	"bytes"
	"fmt"
	"html"
)

// RunOPML renders the subscription list with one outline per team feed.
func (g *Generator) RunOPML(teams []Team) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n<opml version=\"2.0\">\n  <head>\n")
	g.writeElement(&buf, "title", "Release Notes Monitor - All Feeds", 4)
	g.writeElement(&buf, "dateCreated", g.now().UTC().Format(PubDateLayout), 4)
	buf.WriteString("  </head>\n  <body>\n")

	for _, team := range teams {
		label := html.EscapeString(fmt.Sprintf("%s Release Notes", team.Name))
		buf.WriteString(fmt.Sprintf("    <outline text=\"%s\" title=\"%s\" type=\"rss\" xmlUrl=\"%s\" htmlUrl=\"%s\" />\n",
			label,
			label,
			html.EscapeString(g.FeedURL(team.ID)),
			html.EscapeString(g.baseURL())))
	}

	buf.WriteString("  </body>\n</opml>\n")

	return buf.String(), nil
}
