package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080"
	numWorkers     = 50
	testDuration   = 10 * time.Second
)

var baseURL = defaultBaseURL

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     atomic.Int64
	errors    atomic.Int64
	latencies []time.Duration
}

// request describes one endpoint and the status codes it may answer with.
type request struct {
	method string
	path   string
	ok     []int
}

func (r request) name() string {
	return r.method + " " + r.path
}

var (
	health     = request{http.MethodGet, "/health", []int{http.StatusOK}}
	summary    = request{http.MethodGet, "/summary", []int{http.StatusOK, http.StatusNotFound}}
	watermarks = request{http.MethodGet, "/watermarks", []int{http.StatusOK}}
	trigger    = request{http.MethodPost, "/run", []int{http.StatusAccepted, http.StatusConflict}}
)

func main() {
	if u := os.Getenv("CVEWATCH_URL"); u != "" {
		baseURL = strings.TrimRight(u, "/")
	}

	fmt.Println("=== cvewatch status API load test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + health.path)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: cold reads, every response computed or cached for the first time
	fmt.Println("\n--- Phase 1: Status reads (GET /summary, /watermarks, /health) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.45:
			return do(summary)
		case r < 0.90:
			return do(watermarks)
		default:
			return do(health)
		}
	})

	// Phase 2: reads while cycles are triggered, which invalidates the response cache
	fmt.Println("\n--- Phase 2: Reads with triggered cycles (1% POST /run) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.01:
			return do(trigger)
		case r < 0.50:
			return do(summary)
		case r < 0.90:
			return do(watermarks)
		default:
			return do(health)
		}
	})

	printLastCycle()
}

// runPhase keeps numWorkers busy for duration. Each worker keeps its own
// latencies and they are merged once the phase is over.
func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	deadline := time.Now().Add(duration)
	merged := make(map[string]*stats)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			local := make(map[string]*stats)
			for time.Now().Before(deadline) {
				r := workFn(rng)
				local[r.endpoint] = local[r.endpoint].add(r)
			}

			mu.Lock()
			defer mu.Unlock()
			for ep, s := range local {
				merged[ep] = merged[ep].merge(s)
			}
		}(rand.Int63() + int64(i))
	}
	wg.Wait()

	printResults(merged, duration)
}

func (s *stats) add(r result) *stats {
	if s == nil {
		s = &stats{}
	}
	s.count.Inc()
	if r.err {
		s.errors.Inc()
	}
	s.latencies = append(s.latencies, r.latency)
	return s
}

func (s *stats) merge(o *stats) *stats {
	if s == nil {
		return o
	}
	s.count.Add(o.count.Load())
	s.errors.Add(o.errors.Load())
	s.latencies = append(s.latencies, o.latencies...)
	return s
}

type latencySummary struct {
	avg, p50, p95, p99 time.Duration
}

func summarize(latencies []time.Duration) latencySummary {
	if len(latencies) == 0 {
		return latencySummary{}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	at := func(p float64) time.Duration {
		return latencies[min(int(float64(len(latencies))*p), len(latencies)-1)]
	}
	return latencySummary{
		avg: sum / time.Duration(len(latencies)),
		p50: at(0.50),
		p95: at(0.95),
		p99: at(0.99),
	}
}

func printResults(byEndpoint map[string]*stats, duration time.Duration) {
	endpoints := make([]string, 0, len(byEndpoint))
	for ep := range byEndpoint {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	rule := "  " + strings.Repeat("-", 88)
	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println(rule)

	var total, failed int64
	for _, ep := range endpoints {
		s := byEndpoint[ep]
		total += s.count.Load()
		failed += s.errors.Load()
		l := summarize(s.latencies)
		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count.Load(), s.errors.Load(), fmtDur(l.avg), fmtDur(l.p50), fmtDur(l.p95), fmtDur(l.p99))
	}

	fmt.Println(rule)
	if total == 0 {
		fmt.Println("  No requests completed")
		return
	}
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		total, failed, float64(failed)/float64(total)*100, float64(total)/duration.Seconds())
}

func do(r request) result {
	req, err := http.NewRequest(r.method, baseURL+r.path, nil)
	if err != nil {
		return result{r.name(), 0, 0, true}
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{r.name(), 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	failed := true
	for _, code := range r.ok {
		if resp.StatusCode == code {
			failed = false
			break
		}
	}
	return result{r.name(), resp.StatusCode, lat, failed}
}

func printLastCycle() {
	resp, err := httpClient.Get(baseURL + summary.path)
	if err != nil {
		fmt.Printf("\nLast cycle: %s\n", err)
		return
	}
	defer resp.Body.Close()

	var last struct {
		ID      string `json:"id"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&last); err != nil || last.ID == "" {
		fmt.Println("\nLast cycle: none")
		return
	}
	fmt.Printf("\nLast cycle: %s (%s)\n", last.ID, last.Outcome)
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
