package controllers

import (
	"cvewatch/internal/models"
	"cvewatch/internal/runner"
	"cvewatch/internal/services"
	"fmt"
	"net/http"
	"time"
)

type HealthController struct {
	service   services.CycleServiceInterface
	runner    runner.RunnerInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	CycleRunning  bool           `json:"cycle_running"`
	LastCycle     *time.Time     `json:"last_cycle,omitempty"`
	LastOutcome   models.Outcome `json:"last_outcome,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		CycleRunning:  hc.runner.Running(),
	}
	if last := hc.service.LastSummary(); last != nil {
		resp.LastCycle = &last.FinishedAt
		resp.LastOutcome = last.Outcome
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.CycleServiceInterface, runner runner.RunnerInterface) *HealthController {
	return &HealthController{
		service:   service,
		runner:    runner,
		startTime: time.Now(),
	}
}
