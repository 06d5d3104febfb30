package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
	"github.com/DavidsonCollege/release-notes-monitor/app/tasks"
)

var documentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*\.(xml|opml)$`)

func NewHandler(teams TeamLister, monitor MonitorInterface, scheduler tasks.TaskSchedulerInterface,
	generator *feed.Generator, outputDir string) *Handler {
	return &Handler{
		teams:     teams,
		monitor:   monitor,
		scheduler: scheduler,
		generator: generator,
		outputDir: outputDir,
	}
}

// GetFeed serves a rendered document from the output directory.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if !documentNamePattern.MatchString(name) {
		c.Status(http.StatusNotFound)
		return
	}

	path := filepath.Join(h.outputDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Failed to read rendered document", "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	contentType := "application/rss+xml; charset=utf-8"
	if strings.HasSuffix(name, ".opml") {
		contentType = "text/x-opml; charset=utf-8"
	}

	if info, err := os.Stat(path); err == nil {
		c.Header("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	}
	c.Header("X-Feed-Name", strings.TrimSuffix(name, filepath.Ext(name)))

	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"teams":     h.teams.GetTeamCount(),
	}

	if report := h.monitor.LastReport(); report != nil {
		health["last_run_at"] = report.FinishedAt.Format(time.RFC3339)
		health["last_run_ok"] = report.Error == ""
	}

	c.JSON(http.StatusOK, health)
}

// GetStats returns the report of the most recent run.
func (h *Handler) GetStats(c *gin.Context) {
	report := h.monitor.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No run has completed yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) APIListTeams(c *gin.Context) {
	teams := h.teams.GetTeams()

	result := make([]gin.H, 0, len(teams))
	for _, team := range teams {
		result = append(result, h.teamJSON(team))
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": result,
		"total": len(result),
	})
}

func (h *Handler) APIGetTeam(c *gin.Context) {
	team, err := h.teams.GetTeam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.teamJSON(*team))
}

func (h *Handler) teamJSON(team feed.Team) gin.H {
	products := make([]gin.H, 0, len(team.Products))
	for _, product := range team.Products {
		sourceType := ""
		if product.Source.Spec != nil {
			sourceType = string(product.Source.Spec.Type())
		}
		products = append(products, gin.H{
			"id":                product.ID,
			"name":              product.Name,
			"source_type":       sourceType,
			"release_notes_url": product.ReleaseNotesURL,
			"filtered":          product.Filter != nil,
		})
	}

	return gin.H{
		"id":       team.ID,
		"name":     team.Name,
		"feed_url": h.generator.FeedURL(team.ID),
		"products": products,
	}
}

// APIRun queues a full release check.
func (h *Handler) APIRun(c *gin.Context) {
	h.enqueue(c, tasks.NewCheckReleasesTask(h.monitor, tasks.TriggerAPI))
}

// APIRender queues a rebuild of the output documents from history.
func (h *Handler) APIRender(c *gin.Context) {
	h.enqueue(c, tasks.NewRenderFeedsTask(h.monitor, tasks.TriggerAPI))
}

func (h *Handler) enqueue(c *gin.Context, task tasks.TaskInterface) {
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing task", "type", string(task.GetType()), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
