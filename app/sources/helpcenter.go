package sources

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/tidwall/gjson"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

const helpCenterPageSize = 10

type HelpCenterAdapter struct {
	fetcher *Fetcher
	getenv  func(string) string
}

func NewHelpCenterAdapter(fetcher *Fetcher) *HelpCenterAdapter {
	return &HelpCenterAdapter{fetcher: fetcher, getenv: os.Getenv}
}

// ArticlesURL is the newest-first listing of one help-center section.
func ArticlesURL(spec feed.HelpCenterSource) string {
	return fmt.Sprintf("https://%s/api/v2/help_center/%s/sections/%s/articles.json?sort_by=updated_at&sort_order=desc&per_page=%d",
		spec.Domain,
		url.PathEscape(spec.GetLocale()),
		url.PathEscape(spec.SectionID),
		helpCenterPageSize)
}

func (a *HelpCenterAdapter) Run(ctx context.Context, product feed.Product, spec feed.HelpCenterSource) Result {
	return a.run(ctx, ArticlesURL(spec), product, spec)
}

func (a *HelpCenterAdapter) run(ctx context.Context, apiURL string, product feed.Product, spec feed.HelpCenterSource) Result {
	credentials := a.credentials(spec)

	data, err := a.fetcher.GetJSON(ctx, apiURL, credentials)
	if err != nil {
		return failed(AsDiagnostic(err, apiURL))
	}

	if !gjson.ValidBytes(data) {
		return failed(ClassifyParseError(fmt.Errorf("invalid JSON response"), apiURL))
	}

	articles := gjson.GetBytes(data, "articles")
	if !articles.IsArray() {
		return failed(Structural(apiURL, "response has no articles list"))
	}

	var result Result
	for _, article := range articles.Array() {
		if len(result.Items) >= MaxItemsPerSource {
			break
		}
		title := feed.CleanText(article.Get("title").String())
		if title == "" {
			continue
		}
		link := article.Get("html_url").String()
		if link == "" {
			link = product.ReleaseNotesURL
		}
		result.Items = append(result.Items, feed.RawItem{
			Title: title,
			Link:  link,
			Date:  feed.ParseDate(article.Get("updated_at").String()),
		})
	}

	return result
}

// credentials resolves the configured environment variable names. Missing
// values disable authentication.
func (a *HelpCenterAdapter) credentials(spec feed.HelpCenterSource) *Credentials {
	if spec.EnvEmail == "" || spec.EnvPassword == "" {
		return nil
	}
	credentials := &Credentials{
		Username: a.getenv(spec.EnvEmail),
		Password: a.getenv(spec.EnvPassword),
	}
	if credentials.Username == "" || credentials.Password == "" {
		return nil
	}
	return credentials
}
