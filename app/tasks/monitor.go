package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/DavidsonCollege/release-notes-monitor/app/database"
	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
	"github.com/DavidsonCollege/release-notes-monitor/app/metrics"
)

const DefaultRecentPerProduct = 5

type MonitorOptions struct {
	OutputDir        string
	MaxFeedItems     int
	RecentPerProduct int
	RequestDelay     time.Duration
}

// Monitor runs the release-notes pipeline: check every product, decide
// freshness, merge into each team's history, persist state and render the
// feeds. Runs are serialized.
type Monitor struct {
	teams     TeamProvider
	checker   ProductChecker
	state     StateStore
	generator *feed.Generator
	fetcher   PageFetcher
	extractor SummaryExtractor
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	opts      MonitorOptions
	now       func() time.Time

	runMu      sync.Mutex
	reportMu   sync.RWMutex
	lastReport *RunReport
}

func NewMonitor(teams TeamProvider, checker ProductChecker, state StateStore, generator *feed.Generator,
	fetcher PageFetcher, extractor SummaryExtractor, opts MonitorOptions) *Monitor {
	if opts.RecentPerProduct <= 0 {
		opts.RecentPerProduct = DefaultRecentPerProduct
	}

	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}

	return &Monitor{
		teams:     teams,
		checker:   checker,
		state:     state,
		generator: generator,
		fetcher:   fetcher,
		extractor: extractor,
		metrics:   metrics.Get(),
		limiter:   rate.NewLimiter(limit, 1),
		opts:      opts,
		now:       time.Now,
	}
}

// LastReport returns a copy of the most recent run report, or nil before the
// first run.
func (m *Monitor) LastReport() *RunReport {
	m.reportMu.RLock()
	defer m.reportMu.RUnlock()
	return m.lastReport.clone()
}

func (m *Monitor) setReport(report *RunReport) {
	m.reportMu.Lock()
	defer m.reportMu.Unlock()
	m.lastReport = report
}

// Run performs one full pass over all configured teams. Source failures are
// absorbed per product; only state and output errors abort the run.
func (m *Monitor) Run(ctx context.Context) (*RunReport, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	startedAt := m.now().UTC()
	report := newRunReport(uuid.NewString(), startedAt)

	err := m.run(ctx, report)

	report.FinishedAt = m.now().UTC()
	outcome := "success"
	if err != nil {
		outcome = "failure"
		report.Error = err.Error()
	}
	m.metrics.Runs.WithLabelValues(outcome).Inc()
	m.metrics.RunDuration.Observe(report.FinishedAt.Sub(startedAt).Seconds())
	m.setReport(report)

	if err != nil {
		return report, err
	}

	slog.Info("Run completed",
		"id", report.ID,
		"teams", len(report.Teams),
		"products", report.ProductsChecked,
		"new_items", report.NewItems,
		"failures", report.ProductFailures,
		"duration", report.FinishedAt.Sub(startedAt).String())

	return report, nil
}

func (m *Monitor) run(ctx context.Context, report *RunReport) error {
	teams := m.teams.GetTeams()
	if len(teams) == 0 {
		slog.Warn("No teams configured, nothing to check")
		return nil
	}

	seen, err := m.state.LoadSeen(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seen state: %w", err)
	}

	histories := make(map[string][]feed.Item, len(teams))
	for _, team := range teams {
		history, err := m.state.LoadHistory(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("failed to load history for team %s: %w", team.ID, err)
		}

		fresh, teamReport, err := m.checkTeam(ctx, team, seen, feed.IndexByID(history), report)
		if err != nil {
			return err
		}

		histories[team.ID] = feed.SortNewestFirst(feed.Merge(fresh, history, m.opts.MaxFeedItems))
		teamReport.FeedItems = len(histories[team.ID])
		report.Teams = append(report.Teams, teamReport)
		report.NewItems += teamReport.NewItems
	}

	if err := m.state.Save(ctx, seen, histories); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return m.writeOutputs(teams, histories)
}

func (m *Monitor) checkTeam(ctx context.Context, team feed.Team, seen feed.SeenState,
	history map[string]feed.Item, report *RunReport) ([]feed.Item, TeamReport, error) {
	teamReport := TeamReport{TeamID: team.ID}
	var fresh []feed.Item

	for _, product := range team.Products {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, teamReport, fmt.Errorf("run interrupted: %w", err)
		}

		items, newTitles, err := m.checkProduct(ctx, team, product, seen, history, report)
		report.ProductsChecked++
		if err != nil {
			report.ProductFailures++
			m.metrics.ProductFailures.Inc()
			slog.Error("Product check failed", "team", team.ID, "product", product.ID, "error", err)
			continue
		}

		fresh = append(fresh, items...)
		teamReport.NewItems += len(newTitles)
		teamReport.NewTitles = append(teamReport.NewTitles, newTitles...)
	}

	if teamReport.NewItems > 0 {
		m.metrics.NewItems.WithLabelValues(team.ID).Add(float64(teamReport.NewItems))
	}

	return fresh, teamReport, nil
}

// checkProduct marks every candidate as seen and returns the newest
// RecentPerProduct of them enriched for the feed, plus the titles that were
// reported as new.
func (m *Monitor) checkProduct(ctx context.Context, team feed.Team, product feed.Product, seen feed.SeenState,
	history map[string]feed.Item, report *RunReport) (items []feed.Item, newTitles []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, newTitles = nil, nil
			err = fmt.Errorf("panic while checking product: %v", r)
			slog.Error("Recovered product check panic", "product", product.ID, "stack", string(debug.Stack()))
		}
	}()

	sourceType := "unknown"
	if product.Source.Spec != nil {
		sourceType = string(product.Source.Spec.Type())
	}
	m.metrics.ProductsChecked.WithLabelValues(sourceType).Inc()

	result := m.checker.Run(ctx, product)
	for _, diagnostic := range result.Diagnostics {
		report.Diagnostics[string(diagnostic.Kind)]++
		m.metrics.SourceDiagnostics.WithLabelValues(string(diagnostic.Kind)).Inc()
	}

	seen.Ensure(team.ID, product.ID)

	for i, raw := range result.Items {
		id := feed.ItemID(product.ID, raw.Title, raw.Link)
		isNew := seen.MarkSeen(team.ID, product.ID, id)
		if i >= m.opts.RecentPerProduct {
			continue
		}

		item := m.enrich(id, product, raw, history)
		if isNew {
			slog.Info("New release note", "team", team.ID, "product", product.ID, "title", item.Title, "link", item.Link)
			if product.ExtractSummary && item.Summary == "" {
				item.Summary = m.extractSummary(ctx, item.Link)
			}
			newTitles = append(newTitles, feed.DisplayTitle(item))
		}
		items = append(items, item)
	}

	slog.Debug("Product checked", "team", team.ID, "product", product.ID,
		"candidates", len(result.Items), "kept", len(items), "new", len(newTitles))

	return items, newTitles, nil
}

// enrich builds the feed item for a candidate. Values the source dropped this
// time are taken from the history copy so an unchanged source renders an
// unchanged feed.
func (m *Monitor) enrich(id string, product feed.Product, raw feed.RawItem, history map[string]feed.Item) feed.Item {
	item := feed.Item{
		ID:          id,
		ProductID:   product.ID,
		ProductName: product.Name,
		IconURL:     product.IconURL,
		Title:       raw.Title,
		Link:        raw.Link,
		Summary:     raw.Summary,
	}

	previous, known := history[id]

	switch {
	case !raw.Date.IsZero():
		item.Date = feed.FormatISO(raw.Date)
	case known && previous.Date != "":
		item.Date = previous.Date
	default:
		item.Date = feed.FormatISO(m.now())
	}

	if item.Summary == "" && known {
		item.Summary = previous.Summary
	}

	return item
}

func (m *Monitor) extractSummary(ctx context.Context, link string) string {
	if m.fetcher == nil || m.extractor == nil || link == "" {
		return ""
	}

	data, err := m.fetcher.GetHTML(ctx, link)
	if err != nil {
		slog.Warn("Failed to fetch article for summary", "url", link, "error", err)
		return ""
	}

	summary, err := m.extractor.Run(data)
	if err != nil {
		slog.Warn("Failed to extract summary", "url", link, "error", err)
		return ""
	}
	return summary
}

// Render rebuilds every output document from persisted history without
// fetching any source.
func (m *Monitor) Render(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	teams := m.teams.GetTeams()
	histories := make(map[string][]feed.Item, len(teams))
	for _, team := range teams {
		history, err := m.state.LoadHistory(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("failed to load history for team %s: %w", team.ID, err)
		}
		histories[team.ID] = history
	}

	if err := m.writeOutputs(teams, histories); err != nil {
		return err
	}

	slog.Info("Feeds rendered", "teams", len(teams), "output_dir", m.opts.OutputDir)
	return nil
}

func (m *Monitor) writeOutputs(teams []feed.Team, histories map[string][]feed.Item) error {
	if err := os.MkdirAll(m.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var all []feed.Item
	for _, team := range teams {
		items := histories[team.ID]
		all = append(all, items...)

		document, err := m.generator.Run(team, items)
		if err != nil {
			return fmt.Errorf("failed to render feed for team %s: %w", team.ID, err)
		}
		if err := m.writeOutput(feed.FeedFileName(team.ID), document); err != nil {
			return err
		}
		m.metrics.FeedItems.WithLabelValues(team.ID).Set(float64(len(items)))
	}

	master, err := m.generator.RunMaster(all)
	if err != nil {
		return fmt.Errorf("failed to render combined feed: %w", err)
	}
	if err := m.writeOutput(feed.FeedFileName(feed.MasterFeedID), master); err != nil {
		return err
	}

	opml, err := m.generator.RunOPML(teams)
	if err != nil {
		return fmt.Errorf("failed to render OPML: %w", err)
	}
	return m.writeOutput(feed.OPMLFileName, opml)
}

func (m *Monitor) writeOutput(name, document string) error {
	path := filepath.Join(m.opts.OutputDir, name)
	if err := database.WriteFileAtomic(path, []byte(document), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	slog.Debug("Output written", "path", path, "bytes", len(document))
	return nil
}
