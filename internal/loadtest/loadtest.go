package loadtest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/rl1809/commerce-kit/internal/client"
)

type Config struct {
	BaseURL  string
	Users    int
	Duration time.Duration
	// Think time between two actions of one user is drawn from [MinDelay, MaxDelay].
	MinDelay time.Duration
	MaxDelay time.Duration
	// Timeout bounds each request. Zero uses the client default.
	Timeout time.Duration

	// Random fulfillments target warehouses 1..Warehouses and products 1..Products.
	Warehouses int
	Products   int

	Actions []Action
}

func (c Config) withDefaults() Config {
	if c.Users <= 0 {
		c.Users = 10
	}
	if c.Duration <= 0 {
		c.Duration = 60 * time.Second
	}
	if c.MinDelay <= 0 {
		c.MinDelay = 500 * time.Millisecond
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = max(3*time.Second, c.MinDelay)
	}
	if c.Warehouses <= 0 {
		c.Warehouses = 3
	}
	if c.Products <= 0 {
		c.Products = 5
	}
	if len(c.Actions) == 0 {
		c.Actions = DefaultActions
	}
	return c
}

type Result struct {
	UserID  int
	Action  string
	Success bool
	Latency time.Duration
	Err     string
}

// VirtualUser owns its own client and random source, so sessions share nothing
// but the result collector.
type VirtualUser struct {
	ID     int
	client *client.Client
	rng    *rand.Rand
	cfg    Config
}

func NewVirtualUser(id int, cfg Config) *VirtualUser {
	return &VirtualUser{
		ID: id,
		client: client.New(client.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Headers: map[string]string{
				"User-Agent":     "Virtual-User-" + strconv.Itoa(id),
				"X-Test-User-Id": strconv.Itoa(id),
			},
		}),
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(id))),
		cfg: cfg,
	}
}

// Session runs actions until duration elapses or ctx is cancelled.
func (u *VirtualUser) Session(ctx context.Context, duration time.Duration, record func(Result)) {
	defer u.client.Close()

	total := totalWeight(u.cfg.Actions)
	deadline := time.Now().Add(duration)

	for ctx.Err() == nil && time.Now().Before(deadline) {
		action := pickAction(u.cfg.Actions, u.rng.IntN(total))

		start := time.Now()
		err := action.Run(ctx, u)
		res := Result{UserID: u.ID, Action: action.Name, Success: err == nil, Latency: time.Since(start)}
		if err != nil {
			res.Err = err.Error()
		}
		record(res)

		if !sleep(ctx, u.thinkTime(), deadline) {
			return
		}
	}
}

func (u *VirtualUser) thinkTime() time.Duration {
	spread := int64(u.cfg.MaxDelay - u.cfg.MinDelay)
	if spread <= 0 {
		return u.cfg.MinDelay
	}
	return u.cfg.MinDelay + time.Duration(u.rng.Int64N(spread+1))
}

// sleep waits for d, stopping early at ctx cancellation or the deadline.
// It reports whether the session should continue.
func sleep(ctx context.Context, d time.Duration, deadline time.Time) bool {
	if remaining := time.Until(deadline); remaining < d {
		d = remaining
	}
	if d <= 0 {
		return false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) record(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Run starts cfg.Users concurrent sessions and reports once all of them finish.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) Report {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("starting load test", "users", cfg.Users, "duration", cfg.Duration, "base_url", cfg.BaseURL)

	var (
		wg  sync.WaitGroup
		col collector
	)
	start := time.Now()

	for i := 1; i <= cfg.Users; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			NewVirtualUser(id, cfg).Session(ctx, cfg.Duration, col.record)
		}(i)
	}

	wg.Wait()
	report := NewReport(col.results, time.Since(start))

	logger.Info("load test finished", "requests", report.Total, "failed", report.Failed, "elapsed", report.Elapsed)
	return report
}
