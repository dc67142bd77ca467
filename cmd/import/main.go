// cmd/import/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/config"
	"github.com/giftcraft/storefront/internal/importer"
	"github.com/giftcraft/storefront/internal/strapi"
)

const seedFile = "db.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Strapi.APIToken == "" {
		logrus.Fatal("STRAPI_API_TOKEN is required")
	}

	seed, err := importer.LoadSeed(seedFile)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load seed file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := strapi.NewClient(cfg.Strapi.BaseURL, cfg.Strapi.APIToken, time.Duration(cfg.Strapi.Timeout)*time.Second)

	start := time.Now()
	summary := importer.New(client).Run(ctx, seed)

	logrus.WithFields(logrus.Fields{
		"created":  summary.Created,
		"skipped":  summary.Skipped,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Import finished")
}
