package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 250 * time.Millisecond

type ConfigCache struct {
	configFile string
	config     *Config
	mu         sync.RWMutex
}

func NewConfigCache(configFile string) *ConfigCache {
	return &ConfigCache{
		configFile: configFile,
		config:     &Config{},
	}
}

// Run loads the teams document. A missing file yields an empty
// configuration rather than an error.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.configFile); os.IsNotExist(err) {
		slog.Warn("Teams configuration not found", "path", cc.configFile)
		cc.store(&Config{})
		return nil
	}

	config, err := cc.parseConfig(cc.configFile)
	if err != nil {
		return fmt.Errorf("error loading %s: %w", cc.configFile, err)
	}

	if err := cc.validateConfig(config); err != nil {
		return fmt.Errorf("invalid config %s: %w", cc.configFile, err)
	}

	config.Teams = expandTeams(config.Teams)
	cc.store(config)

	slog.Debug("Configuration loaded", "path", cc.configFile, "teams", len(config.Teams))
	return nil
}

func (cc *ConfigCache) store(config *Config) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.config = config
}

// GetTeams returns teams with subproducts already expanded.
func (cc *ConfigCache) GetTeams() []Team {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	teams := make([]Team, len(cc.config.Teams))
	copy(teams, cc.config.Teams)
	return teams
}

func (cc *ConfigCache) GetTeam(teamID string) (*Team, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	for i := range cc.config.Teams {
		if cc.config.Teams[i].ID == teamID {
			team := cc.config.Teams[i]
			return &team, nil
		}
	}
	return nil, fmt.Errorf("team with id '%s' not found", teamID)
}

func (cc *ConfigCache) GetBaseURL() string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.config.BaseURL
}

func (cc *ConfigCache) GetTeamCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.config.Teams)
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. A reload that fails keeps the previous configuration.
func (cc *ConfigCache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory: editors and deploy tools often replace the file.
	dir := filepath.Dir(cc.configFile)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		name := filepath.Clean(cc.configFile)
		var debounce <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce = time.After(reloadDebounce)
			case <-debounce:
				debounce = nil
				if err := cc.Run(); err != nil {
					slog.Error("Failed to reload configuration", "path", cc.configFile, "error", err)
					continue
				}
				slog.Info("Configuration reloaded", "path", cc.configFile, "teams", cc.GetTeamCount())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Config watcher error", "error", err)
			}
		}
	}()

	return nil
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// JSON documents are valid YAML, so one decoder serves both.
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	teamIDs := make(map[string]bool, len(config.Teams))
	for i, team := range config.Teams {
		if team.ID == "" || team.Name == "" {
			return fmt.Errorf("team at index %d: id and name are required", i)
		}
		if teamIDs[team.ID] {
			return fmt.Errorf("duplicate team id: %s", team.ID)
		}
		teamIDs[team.ID] = true

		productIDs := make(map[string]bool)
		for j, product := range team.Products {
			if product.ID == "" || product.Name == "" {
				return fmt.Errorf("team %s: product at index %d: id and name are required", team.ID, j)
			}

			if len(product.Subproducts) == 0 {
				if err := validateProduct(product, productIDs); err != nil {
					return fmt.Errorf("team %s: %w", team.ID, err)
				}
				continue
			}

			for k, sub := range product.Subproducts {
				if sub.ID == "" {
					return fmt.Errorf("team %s: product %s: subproduct at index %d: id is required", team.ID, product.ID, k)
				}
				if err := validateProduct(sub, productIDs); err != nil {
					return fmt.Errorf("team %s: product %s: %w", team.ID, product.ID, err)
				}
			}
		}
	}

	return nil
}

func validateProduct(product Product, productIDs map[string]bool) error {
	if productIDs[product.ID] {
		return fmt.Errorf("duplicate product id: %s", product.ID)
	}
	productIDs[product.ID] = true

	if product.Source.Spec == nil {
		return fmt.Errorf("product %s: source is required", product.ID)
	}
	if err := product.Source.Spec.validate(); err != nil {
		return fmt.Errorf("product %s: %s source: %w", product.ID, product.Source.Spec.Type(), err)
	}
	return nil
}

func expandTeams(teams []Team) []Team {
	expanded := make([]Team, len(teams))
	for i, team := range teams {
		expanded[i] = team
		expanded[i].Products = ExpandProducts(team.Products)
	}
	return expanded
}

// ExpandProducts flattens subproducts into independent products that inherit
// the parent's domain and icon, and its release-notes URL and filter unless
// they set their own.
func ExpandProducts(products []Product) []Product {
	expanded := make([]Product, 0, len(products))

	for _, parent := range products {
		if len(parent.Subproducts) == 0 {
			expanded = append(expanded, parent)
			continue
		}

		for _, sub := range parent.Subproducts {
			product := Product{
				ID:              sub.ID,
				Name:            sub.Name,
				Domain:          parent.Domain,
				IconURL:         parent.IconURL,
				ReleaseNotesURL: sub.ReleaseNotesURL,
				Source:          sub.Source,
				Filter:          sub.Filter,
				ExtractSummary:  sub.ExtractSummary || parent.ExtractSummary,
			}
			if product.Name == "" {
				product.Name = sub.ID
			}
			if sub.Domain != "" {
				product.Domain = sub.Domain
			}
			if sub.IconURL != "" {
				product.IconURL = sub.IconURL
			}
			if product.ReleaseNotesURL == "" {
				product.ReleaseNotesURL = parent.ReleaseNotesURL
			}
			if product.Filter == nil {
				product.Filter = parent.Filter
			}
			expanded = append(expanded, product)
		}
	}

	return expanded
}
