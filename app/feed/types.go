package feed

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration types

type Config struct {
	BaseURL string `yaml:"base_url"`
	Teams   []Team `yaml:"teams"`
}

type Team struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Products    []Product `yaml:"products"`
}

type Product struct {
	ID              string    `yaml:"id"`
	Name            string    `yaml:"name"`
	Domain          string    `yaml:"domain"`
	IconURL         string    `yaml:"icon_url"`
	ReleaseNotesURL string    `yaml:"release_notes_url"`
	Source          Source    `yaml:"source"`
	Filter          *Filter   `yaml:"filter"`
	ExtractSummary  bool      `yaml:"extract_summary"`
	Subproducts     []Product `yaml:"subproducts"`
}

type Filter struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Source variants

type SourceType string

const (
	SourceTypeFeed          SourceType = "rss"
	SourceTypeScrape        SourceType = "scrape"
	SourceTypeHelpCenterAPI SourceType = "zendesk_api"
	SourceTypeEmbeddedJSON  SourceType = "nextjs_blog"
)

var sourceTypeAliases = map[string]SourceType{
	"rss":             SourceTypeFeed,
	"feed":            SourceTypeFeed,
	"atom":            SourceTypeFeed,
	"scrape":          SourceTypeScrape,
	"zendesk_api":     SourceTypeHelpCenterAPI,
	"help_center_api": SourceTypeHelpCenterAPI,
	"nextjs_blog":     SourceTypeEmbeddedJSON,
	"embedded_json":   SourceTypeEmbeddedJSON,
}

// SourceSpec is implemented by FeedSource, ScrapeSource, HelpCenterSource
// and EmbeddedJSONSource.
type SourceSpec interface {
	Type() SourceType
	validate() error
}

// Source holds exactly one source variant decoded from the "type" field.
type Source struct {
	Spec SourceSpec
}

type FeedSource struct {
	FeedURL string `yaml:"feed_url"`
}

type ScrapeSource struct {
	URL             string  `yaml:"url"`
	Selector        *string `yaml:"selector"`
	TitleSelector   *string `yaml:"title_selector"`
	DateSelector    string  `yaml:"date_selector"`
	SummarySelector *string `yaml:"summary_selector"`
}

type HelpCenterSource struct {
	Domain      string `yaml:"domain"`
	SectionID   string `yaml:"section_id"`
	Locale      string `yaml:"locale"`
	EnvEmail    string `yaml:"env_email"`
	EnvPassword string `yaml:"env_password"`
}

type EmbeddedJSONSource struct {
	URL        string `yaml:"url"`
	ScriptID   string `yaml:"script_id"`
	PostsPath  string `yaml:"posts_path"`
	TitleKey   string `yaml:"title_key"`
	DateKey    string `yaml:"date_key"`
	SlugKey    string `yaml:"slug_key"`
	SlugPrefix string `yaml:"slug_prefix"`
}

func (FeedSource) Type() SourceType         { return SourceTypeFeed }
func (ScrapeSource) Type() SourceType       { return SourceTypeScrape }
func (HelpCenterSource) Type() SourceType   { return SourceTypeHelpCenterAPI }
func (EmbeddedJSONSource) Type() SourceType { return SourceTypeEmbeddedJSON }

func (s FeedSource) validate() error {
	if s.FeedURL == "" {
		return fmt.Errorf("feed_url is required")
	}
	return nil
}

func (s ScrapeSource) validate() error {
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

func (s HelpCenterSource) validate() error {
	if s.Domain == "" || s.SectionID == "" {
		return fmt.Errorf("domain and section_id are required")
	}
	return nil
}

func (s EmbeddedJSONSource) validate() error {
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

// Selector accessors: an absent selector falls back to the default, an
// explicit empty string disables it.

func (s ScrapeSource) GetSelector() string {
	return selectorOr(s.Selector, "article")
}

func (s ScrapeSource) GetTitleSelector() string {
	return selectorOr(s.TitleSelector, "h2, h3")
}

func (s ScrapeSource) GetSummarySelector() string {
	return selectorOr(s.SummarySelector, "p")
}

func selectorOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return strings.TrimSpace(*value)
}

func (s HelpCenterSource) GetLocale() string {
	if s.Locale == "" {
		return "en-us"
	}
	return s.Locale
}

func (s *EmbeddedJSONSource) setDefaults() {
	if s.ScriptID == "" {
		s.ScriptID = "__NEXT_DATA__"
	}
	if s.PostsPath == "" {
		s.PostsPath = "props.pageProps.posts"
	}
	if s.TitleKey == "" {
		s.TitleKey = "title"
	}
	if s.DateKey == "" {
		s.DateKey = "publishDate"
	}
	if s.SlugKey == "" {
		s.SlugKey = "slug"
	}
}

func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	var header struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&header); err != nil {
		return err
	}

	sourceType, ok := sourceTypeAliases[strings.ToLower(strings.TrimSpace(header.Type))]
	if !ok {
		return fmt.Errorf("unknown source type: %q", header.Type)
	}

	switch sourceType {
	case SourceTypeFeed:
		var spec FeedSource
		if err := value.Decode(&spec); err != nil {
			return err
		}
		s.Spec = spec
	case SourceTypeScrape:
		var spec ScrapeSource
		if err := value.Decode(&spec); err != nil {
			return err
		}
		s.Spec = spec
	case SourceTypeHelpCenterAPI:
		var spec HelpCenterSource
		if err := value.Decode(&spec); err != nil {
			return err
		}
		s.Spec = spec
	case SourceTypeEmbeddedJSON:
		var spec EmbeddedJSONSource
		if err := value.Decode(&spec); err != nil {
			return err
		}
		spec.setDefaults()
		s.Spec = spec
	}

	return nil
}

// Item types

// RawItem is what a source adapter yields for one candidate announcement.
// A zero Date means the source did not provide a usable timestamp.
type RawItem struct {
	Title   string
	Link    string
	Summary string
	Date    time.Time
}

// Item is the persisted, rendered unit. Date is ISO-8601.
type Item struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	IconURL     string `json:"icon_url"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Summary     string `json:"summary"`
	Date        string `json:"date"`
}
