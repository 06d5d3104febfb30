package api

import (
	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
	"github.com/DavidsonCollege/release-notes-monitor/app/tasks"
)

type TeamLister interface {
	GetTeams() []feed.Team
	GetTeam(teamID string) (*feed.Team, error)
	GetTeamCount() int
}

type MonitorInterface interface {
	tasks.Runner
	LastReport() *tasks.RunReport
}

var (
	_ TeamLister       = (*feed.ConfigCache)(nil)
	_ MonitorInterface = (*tasks.Monitor)(nil)
)

type Handler struct {
	teams     TeamLister
	monitor   MonitorInterface
	scheduler tasks.TaskSchedulerInterface
	generator *feed.Generator
	outputDir string
}
