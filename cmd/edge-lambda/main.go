package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/orbit-landing/cmd/mainconfig"
	"github.com/wolfman30/orbit-landing/internal/api/router"
	"github.com/wolfman30/orbit-landing/internal/app/bootstrap"
	appconfig "github.com/wolfman30/orbit-landing/internal/config"
	"github.com/wolfman30/orbit-landing/internal/http/handlers"
	"github.com/wolfman30/orbit-landing/internal/serverless"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	var awsCfg *aws.Config
	if loaded, err := mainconfig.LoadAWSConfig(context.Background(), cfg); err != nil {
		logger.Warn("AWS config unavailable; avatars are kept in memory", "error", err)
	} else {
		awsCfg = &loaded
	}

	adapter := serverless.NewAdapter(newEdgeHandler(cfg, awsCfg, logger), logger)
	lambda.Start(adapter.Handle)
}

// newEdgeHandler serves only the stateless edge endpoints; the wizard needs
// in-process sessions and stays on the API server.
func newEdgeHandler(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) http.Handler {
	sink := bootstrap.BuildAnalyticsSink(cfg, awsCfg, logger)
	return router.New(&router.Config{
		Logger:  logger,
		Version: cfg.AppVersion,
		Avatar: handlers.NewAvatarHandler(handlers.AvatarConfig{
			Store:    bootstrap.BuildAvatarStore(cfg, awsCfg, logger),
			MaxBytes: cfg.AvatarMaxBytes,
			Sink:     sink,
			Logger:   logger,
		}),
		CSVHistory:         handlers.NewCSVHistoryHandler(nil, logger),
		SystemStatus:       handlers.NewSystemStatusHandler(cfg.AppVersion),
		ServeExpenses:      true,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
}
