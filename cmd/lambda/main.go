package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/config"
	"github.com/PratikDhanave/profile-sync-service/internal/logging"
	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
	"github.com/PratikDhanave/profile-sync-service/internal/serverless"
	"github.com/PratikDhanave/profile-sync-service/internal/store"
)

// main runs the webhook as an AWS Lambda behind API Gateway.
// The store client is built once per cold start and reused across invocations.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New("profile-sync-lambda", cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(context.Background(), cfg.Store, logger)
	if err != nil {
		logger.Fatal("profile store unavailable", zap.Error(err))
	}
	defer st.Close()

	// No metrics here: a Lambda has no scrape endpoint, outcomes go to the logs.
	syncer := profilesync.New(st, logger, profilesync.WithTimeout(cfg.Store.Timeout))

	lambda.Start(serverless.NewHandler(syncer, logger).Handle)
}
