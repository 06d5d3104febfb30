package sources

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

// EmbeddedJSONAdapter reads posts from the hydration payload that
// server-rendered frameworks embed in a script tag.
type EmbeddedJSONAdapter struct {
	fetcher *Fetcher
}

func NewEmbeddedJSONAdapter(fetcher *Fetcher) *EmbeddedJSONAdapter {
	return &EmbeddedJSONAdapter{fetcher: fetcher}
}

func (a *EmbeddedJSONAdapter) Run(ctx context.Context, product feed.Product, spec feed.EmbeddedJSONSource) Result {
	data, err := a.fetcher.GetHTML(ctx, spec.URL)
	if err != nil {
		return failed(AsDiagnostic(err, spec.URL))
	}

	return a.Extract(data, spec)
}

func (a *EmbeddedJSONAdapter) Extract(data []byte, spec feed.EmbeddedJSONSource) Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return failed(ClassifyParseError(err, spec.URL))
	}

	script := doc.Find(`script[id="` + spec.ScriptID + `"]`).First()
	payload := strings.TrimSpace(script.Text())
	if script.Length() == 0 || payload == "" {
		return failed(Structural(spec.URL, "script %s not found", spec.ScriptID))
	}

	if !gjson.Valid(payload) {
		return failed(Structural(spec.URL, "script %s is not valid JSON", spec.ScriptID))
	}

	posts := gjson.Get(payload, spec.PostsPath)
	if !posts.IsArray() {
		return failed(Structural(spec.URL, "path %s did not resolve to a list", spec.PostsPath))
	}

	pageURL, _ := url.Parse(spec.URL)

	var result Result
	for i, post := range posts.Array() {
		if i >= MaxItemsPerSource {
			break
		}

		title := feed.CleanText(post.Get(spec.TitleKey).String())
		if title == "" {
			continue
		}

		result.Items = append(result.Items, feed.RawItem{
			Title: title,
			Link:  postLink(pageURL, spec, post.Get(spec.SlugKey).String()),
			Date:  feed.ParseDate(post.Get(spec.DateKey).String()),
		})
	}

	return result
}

func postLink(pageURL *url.URL, spec feed.EmbeddedJSONSource, slug string) string {
	if slug == "" || pageURL == nil {
		return spec.URL
	}
	ref, err := url.Parse(spec.SlugPrefix + slug)
	if err != nil {
		return spec.URL
	}
	return pageURL.ResolveReference(ref).String()
}
