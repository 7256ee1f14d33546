package controllers

import (
	"cvewatch/internal/providers"
	"cvewatch/internal/runner"
	"cvewatch/internal/services"
	"cvewatch/internal/subscriptions/interfaces"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
)

var errNoCycle = errors.New("no cycle has run yet")

type ApiController struct {
	logger  providers.Logger
	service services.CycleServiceInterface
	runner  runner.RunnerInterface
	store   interfaces.StoreInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.CycleServiceInterface, runner runner.RunnerInterface, store interfaces.StoreInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		runner:  runner,
		store:   store,
		cache:   cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if errors.Is(err, errNoCycle) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetSummary returns the summary of the last finished cycle.
func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeySummary, func() (any, error) {
		summary := ac.service.LastSummary()
		if summary == nil {
			return nil, errNoCycle
		}
		return summary, nil
	})
}

// GetWatermarks returns the last completed run of every subscription source.
func (ac *ApiController) GetWatermarks(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeyWatermarks, func() (any, error) {
		return ac.store.Snapshot(), nil
	})
}

// RunCycle starts a cycle without waiting for it.
func (ac *ApiController) RunCycle(w http.ResponseWriter, r *http.Request) {
	if !ac.runner.Start() {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "running"})
		return
	}
	ac.logger.Infof(providers.TypeApp, "Cycle triggered from %s", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}
