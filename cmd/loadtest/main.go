package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rl1809/commerce-kit/internal/config"
	"github.com/rl1809/commerce-kit/internal/loadtest"
)

func main() {
	config.LoadDotEnv(slog.Default())
	clientCfg := config.LoadClient()

	baseURL := flag.String("url", clientCfg.BaseURL, "API base URL")
	users := flag.Int("users", 10, "number of concurrent virtual users")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	minDelay := flag.Duration("min-delay", 500*time.Millisecond, "minimum think time between actions")
	maxDelay := flag.Duration("max-delay", 3*time.Second, "maximum think time between actions")
	flag.Parse()

	logger := config.NewLogger(slog.LevelInfo)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := loadtest.Run(ctx, loadtest.Config{
		BaseURL:  *baseURL,
		Users:    *users,
		Duration: *duration,
		MinDelay: *minDelay,
		MaxDelay: *maxDelay,
		Timeout:  clientCfg.Timeout,
	}, logger)

	report.Print(os.Stdout)
}
