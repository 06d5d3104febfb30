package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testTeamsYAML = `
base_url: https://feeds.example.com
teams:
  - id: platform
    name: Platform
    description: Platform tooling
    products:
      - id: github
        name: GitHub
        icon_url: https://github.com/favicon.ico
        release_notes_url: https://github.blog/changelog/
        source:
          type: rss
          feed_url: https://github.blog/changelog/feed/
        filter:
          include: [security]
          exclude: [beta]
      - id: atlassian
        name: Atlassian
        domain: atlassian.com
        icon_url: https://atlassian.com/icon.png
        release_notes_url: https://atlassian.com/changelog
        filter:
          exclude: [deprecated]
        subproducts:
          - id: jira
            name: Jira
            source:
              type: scrape
              url: https://jira.example.com/changelog
              selector: ".release"
              title_selector: ""
          - id: confluence
            release_notes_url: https://confluence.example.com/notes
            filter:
              include: [editor]
            source:
              type: zendesk_api
              domain: support.example.com
              section_id: "123"
              env_email: ZD_EMAIL
              env_password: ZD_PASSWORD
      - id: vercel
        name: Vercel
        source:
          type: nextjs_blog
          url: https://vercel.com/changelog
          slug_prefix: /changelog/
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	configCache := NewConfigCache(writeConfig(t, "teams.yml", testTeamsYAML))

	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetTeamCount() != 1 {
		t.Fatalf("Expected 1 team, got %d", configCache.GetTeamCount())
	}
	if configCache.GetBaseURL() != "https://feeds.example.com" {
		t.Errorf("Expected base URL, got '%s'", configCache.GetBaseURL())
	}

	team, err := configCache.GetTeam("platform")
	if err != nil {
		t.Fatal(err)
	}

	// github + jira + confluence + vercel
	if len(team.Products) != 4 {
		t.Fatalf("Expected 4 expanded products, got %d", len(team.Products))
	}

	github := team.Products[0]
	if _, ok := github.Source.Spec.(FeedSource); !ok {
		t.Errorf("Expected FeedSource, got %T", github.Source.Spec)
	}
	if github.Filter == nil || github.Filter.Include[0] != "security" {
		t.Errorf("Expected github include filter, got %+v", github.Filter)
	}
}

func TestConfigCacheExpandsSubproducts(t *testing.T) {
	configCache := NewConfigCache(writeConfig(t, "teams.yml", testTeamsYAML))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	team, _ := configCache.GetTeam("platform")
	jira := team.Products[1]
	confluence := team.Products[2]

	if jira.ID != "jira" || jira.Name != "Jira" {
		t.Errorf("Expected jira subproduct, got %s/%s", jira.ID, jira.Name)
	}
	if jira.Domain != "atlassian.com" || jira.IconURL != "https://atlassian.com/icon.png" {
		t.Errorf("Expected jira to inherit domain and icon, got %s %s", jira.Domain, jira.IconURL)
	}
	if jira.ReleaseNotesURL != "https://atlassian.com/changelog" {
		t.Errorf("Expected jira to inherit release notes URL, got %s", jira.ReleaseNotesURL)
	}
	if jira.Filter == nil || jira.Filter.Exclude[0] != "deprecated" {
		t.Errorf("Expected jira to inherit parent filter, got %+v", jira.Filter)
	}

	scrape, ok := jira.Source.Spec.(ScrapeSource)
	if !ok {
		t.Fatalf("Expected ScrapeSource, got %T", jira.Source.Spec)
	}
	if scrape.GetSelector() != ".release" {
		t.Errorf("Expected configured selector, got '%s'", scrape.GetSelector())
	}
	if scrape.GetTitleSelector() != "" {
		t.Errorf("Expected explicitly disabled title selector, got '%s'", scrape.GetTitleSelector())
	}
	if scrape.GetSummarySelector() != "p" {
		t.Errorf("Expected default summary selector 'p', got '%s'", scrape.GetSummarySelector())
	}

	if confluence.Name != "confluence" {
		t.Errorf("Expected name to default to id, got '%s'", confluence.Name)
	}
	if confluence.ReleaseNotesURL != "https://confluence.example.com/notes" {
		t.Errorf("Expected own release notes URL, got '%s'", confluence.ReleaseNotesURL)
	}
	if confluence.Filter == nil || confluence.Filter.Include[0] != "editor" {
		t.Errorf("Expected own filter, got %+v", confluence.Filter)
	}
	helpCenter, ok := confluence.Source.Spec.(HelpCenterSource)
	if !ok {
		t.Fatalf("Expected HelpCenterSource, got %T", confluence.Source.Spec)
	}
	if helpCenter.GetLocale() != "en-us" {
		t.Errorf("Expected default locale, got '%s'", helpCenter.GetLocale())
	}
}

func TestConfigCacheEmbeddedJSONDefaults(t *testing.T) {
	configCache := NewConfigCache(writeConfig(t, "teams.yml", testTeamsYAML))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	team, _ := configCache.GetTeam("platform")
	spec, ok := team.Products[3].Source.Spec.(EmbeddedJSONSource)
	if !ok {
		t.Fatalf("Expected EmbeddedJSONSource, got %T", team.Products[3].Source.Spec)
	}

	if spec.ScriptID != "__NEXT_DATA__" {
		t.Errorf("Expected default script id, got '%s'", spec.ScriptID)
	}
	if spec.PostsPath != "props.pageProps.posts" {
		t.Errorf("Expected default posts path, got '%s'", spec.PostsPath)
	}
	if spec.TitleKey != "title" || spec.DateKey != "publishDate" || spec.SlugKey != "slug" {
		t.Errorf("Expected default keys, got %s/%s/%s", spec.TitleKey, spec.DateKey, spec.SlugKey)
	}
	if spec.SlugPrefix != "/changelog/" {
		t.Errorf("Expected slug prefix, got '%s'", spec.SlugPrefix)
	}
}

func TestConfigCacheLoadsJSON(t *testing.T) {
	content := `{
  "teams": [
    {
      "id": "data",
      "name": "Data",
      "products": [
        {"id": "dbt", "name": "dbt", "release_notes_url": "https://docs.getdbt.com",
         "source": {"type": "feed", "feed_url": "https://example.com/dbt.xml"}}
      ]
    }
  ]
}`
	configCache := NewConfigCache(writeConfig(t, "teams.json", content))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	teams := configCache.GetTeams()
	if len(teams) != 1 || teams[0].Products[0].Source.Spec.Type() != SourceTypeFeed {
		t.Errorf("Expected one team with a feed product, got %+v", teams)
	}
}

func TestConfigCacheMissingFile(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing.yml"))

	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if configCache.GetTeamCount() != 0 {
		t.Errorf("Expected 0 teams, got %d", configCache.GetTeamCount())
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := map[string]string{
		"unknown source type": `
teams:
  - id: t
    name: T
    products:
      - id: p
        name: P
        source: {type: carrier_pigeon}
`,
		"missing feed url": `
teams:
  - id: t
    name: T
    products:
      - id: p
        name: P
        source: {type: rss}
`,
		"missing source": `
teams:
  - id: t
    name: T
    products:
      - id: p
        name: P
`,
		"duplicate team": `
teams:
  - {id: t, name: T}
  - {id: t, name: T2}
`,
		"duplicate product": `
teams:
  - id: t
    name: T
    products:
      - {id: p, name: P, source: {type: rss, feed_url: "https://a"}}
      - {id: p, name: P, source: {type: rss, feed_url: "https://b"}}
`,
		"missing team name": `
teams:
  - id: t
`,
	}

	for name, content := range tests {
		configCache := NewConfigCache(writeConfig(t, "teams.yml", content))
		if err := configCache.Run(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestConfigCacheGetTeamNotFound(t *testing.T) {
	configCache := NewConfigCache(writeConfig(t, "teams.yml", testTeamsYAML))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	_, err := configCache.GetTeam("nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestConfigCacheWatchReloads(t *testing.T) {
	path := writeConfig(t, "teams.yml", `
teams:
  - {id: one, name: One}
`)
	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := configCache.Watch(ctx); err != nil {
		t.Fatal(err)
	}

	updated := `
teams:
  - {id: one, name: One}
  - {id: two, name: Two}
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if configCache.GetTeamCount() == 2 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("Expected reload to pick up 2 teams, got %d", configCache.GetTeamCount())
}
