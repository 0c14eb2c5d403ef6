package loadtest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPickAction_RespectsWeights(t *testing.T) {
	counts := make(map[string]int)
	total := totalWeight(DefaultActions)
	require.Equal(t, 100, total)

	for n := 0; n < total; n++ {
		counts[pickAction(DefaultActions, n).Name]++
	}

	assert.Equal(t, map[string]int{
		"get_inventory":          40,
		"get_sales":              30,
		"get_fulfillment_status": 15,
		"get_users":              10,
		"create_fulfillment":     5,
	}, counts)
}

func TestNewReport(t *testing.T) {
	results := []Result{
		{Success: true, Latency: 10 * time.Millisecond},
		{Success: true, Latency: 30 * time.Millisecond},
		{Success: true, Latency: 20 * time.Millisecond},
		{Success: false, Err: "network timeout: request took too long"},
		{Success: false, Err: "network timeout: request took too long"},
		{Success: false, Err: "API Error: 500 - Failed to fetch sales data"},
	}

	r := NewReport(results, time.Second)

	assert.Equal(t, 6, r.Total)
	assert.Equal(t, 3, r.Succeeded)
	assert.Equal(t, 3, r.Failed)
	assert.InDelta(t, 50.0, r.SuccessRate, 0.001)
	assert.Equal(t, 20*time.Millisecond, r.AvgLatency)
	assert.Equal(t, 10*time.Millisecond, r.MinLatency)
	assert.Equal(t, 30*time.Millisecond, r.MaxLatency)
	assert.Equal(t, 30*time.Millisecond, r.P95Latency)
	assert.Equal(t, 2, r.Errors["network timeout: request took too long"])

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "Success Rate:        50.00%")
	assert.Contains(t, out, "Error Distribution:")
	assert.Less(t,
		strings.Index(out, "network timeout"),
		strings.Index(out, "API Error: 500"),
		"most frequent error first")
}

func TestNewReport_Empty(t *testing.T) {
	r := NewReport(nil, 0)
	assert.Zero(t, r.Total)
	assert.Zero(t, r.SuccessRate)
	assert.Zero(t, r.P95Latency)

	var buf bytes.Buffer
	r.Print(&buf)
	assert.NotContains(t, buf.String(), "Error Distribution")
}

func TestPercentileIndex(t *testing.T) {
	assert.Equal(t, 0, percentileIndex(1, 95))
	assert.Equal(t, 18, percentileIndex(20, 95))
	assert.Equal(t, 94, percentileIndex(100, 95))
}

type recordingServer struct {
	mu       sync.Mutex
	agents   map[string]bool
	testIDs  map[string]bool
	requests int
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.agents[r.Header.Get("User-Agent")] = true
	s.testIDs[r.Header.Get("X-Test-User-Id")] = true
	s.requests++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/sales" {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to fetch sales data"}`))
		return
	}
	if strings.HasPrefix(r.URL.Path, "/fulfillment") {
		w.Write([]byte(`{"data":{"id":1,"status":"pending"}}`))
		return
	}
	w.Write([]byte(`{"data":[]}`))
}

func TestRun_ConcurrentSessions(t *testing.T) {
	rec := &recordingServer{agents: make(map[string]bool), testIDs: make(map[string]bool)}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	report := Run(context.Background(), Config{
		BaseURL:  srv.URL,
		Users:    3,
		Duration: 200 * time.Millisecond,
		MinDelay: time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
	}, discardLogger())

	require.Positive(t, report.Total)
	assert.Equal(t, report.Total, report.Succeeded+report.Failed)
	assert.Equal(t, rec.requests, report.Total)
	assert.Equal(t, map[string]bool{"Virtual-User-1": true, "Virtual-User-2": true, "Virtual-User-3": true}, rec.agents)
	assert.Equal(t, map[string]bool{"1": true, "2": true, "3": true}, rec.testIDs)

	for msg := range report.Errors {
		assert.Contains(t, msg, "Failed to fetch sales data")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	Run(ctx, Config{
		BaseURL:  srv.URL,
		Users:    2,
		Duration: time.Minute,
		MinDelay: 10 * time.Millisecond,
		MaxDelay: 20 * time.Millisecond,
	}, discardLogger())

	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSession_RecordsFailuresAgainstDeadServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := Config{BaseURL: url, MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}.withDefaults()
	u := NewVirtualUser(7, cfg)

	var results []Result
	u.Session(context.Background(), 50*time.Millisecond, func(r Result) { results = append(results, r) })

	require.NotEmpty(t, results)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, 7, r.UserID)
		assert.NotEmpty(t, r.Err)
	}
}
