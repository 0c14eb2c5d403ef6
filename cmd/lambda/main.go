package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/rl1809/commerce-kit/internal/adapter/handler"
	"github.com/rl1809/commerce-kit/internal/app"
	"github.com/rl1809/commerce-kit/internal/config"
)

func main() {
	cfg := config.Load()
	// A Lambda instance serves one request at a time.
	cfg.DBMaxOpenConns = 1
	cfg.DBMaxIdleConns = 1

	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	lambda.Start(handler.NewLambdaHandler(application.API).Handle)
}
