package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input and state
	ConfigFile    string `long:"config" env:"CONFIG_FILE" default:"./config/teams.yml" description:"Teams and products configuration file (YAML or JSON)"`
	StateDriver   string `long:"state-driver" env:"STATE_DRIVER" default:"file" choice:"file" choice:"sqlite" choice:"redis" description:"Persistence backend for seen state and feed history"`
	StateDir      string `long:"state-dir" env:"STATE_DIR" default:"./data" description:"Directory for the file state driver"`
	DBPath        string `long:"db-path" env:"DB_PATH" default:"./data/state.db" description:"Database file for the sqlite state driver"`
	RedisAddress  string `long:"redis-address" env:"REDIS_ADDRESS" default:"localhost:6379" description:"Redis address for the redis state driver"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`

	// Output
	OutputDir         string `long:"output-dir" env:"OUTPUT_DIR" default:"./docs/feeds" description:"Directory for rendered RSS and OPML documents"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for feed links (e.g., https://example.github.io/release-notes-monitor)"`
	MaxFeedItems      int    `long:"max-feed-items" env:"MAX_FEED_ITEMS" default:"100" description:"Maximum number of items kept in each team feed"`
	RecentPerProduct  int    `long:"recent-per-product" env:"RECENT_PER_PRODUCT" default:"5" description:"Latest items per product always kept fresh in the feed"`
	DescriptionFormat string `long:"description-format" env:"DESCRIPTION_FORMAT" default:"html" choice:"html" choice:"text" description:"Item description format"`

	// Fetching
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	RequestDelay   int    `long:"request-delay" env:"REQUEST_DELAY_MS" default:"1000" description:"Delay between product checks in milliseconds"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`

	// Serve mode
	Serve             bool   `long:"serve" env:"SERVE" description:"Run the HTTP server and scheduler instead of a single run"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigFile:        raw.ConfigFile,
		StateDriver:       raw.StateDriver,
		StateDir:          raw.StateDir,
		DBPath:            raw.DBPath,
		RedisAddress:      raw.RedisAddress,
		RedisPassword:     raw.RedisPassword,
		RedisDB:           raw.RedisDB,
		OutputDir:         raw.OutputDir,
		BaseUrl:           raw.BaseUrl,
		MaxFeedItems:      raw.MaxFeedItems,
		RecentPerProduct:  raw.RecentPerProduct,
		DescriptionFormat: raw.DescriptionFormat,
		RequestTimeout:    raw.RequestTimeout,
		RequestDelay:      raw.RequestDelay,
		UserAgent:         cmp.Or(raw.UserAgent, defaultUserAgent),
		Serve:             raw.Serve,
		Port:              raw.Port,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	nonNegativeFields := map[string]int{
		"max feed items":     cfg.MaxFeedItems,
		"recent per product": cfg.RecentPerProduct,
		"request timeout":    cfg.RequestTimeout,
		"request delay":      cfg.RequestDelay,
		"scheduler interval": cfg.SchedulerInterval,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if cfg.MaxFeedItems == 0 {
		return fmt.Errorf("max feed items must be positive")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
