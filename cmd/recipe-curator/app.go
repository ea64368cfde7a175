// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/library"
	"github.com/pdiddy/recipe-curator/internal/strategy"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// configuredCampaign returns the campaign described by the config.
func configuredCampaign() (types.Campaign, error) {
	if cfg.Campaign.StartDate == "" {
		return types.Campaign{}, fmt.Errorf("campaign.start_date is required (YYYY-MM-DD)")
	}
	return cfg.Campaign.Campaign()
}

func newCatalog() (*strategy.Catalog, error) {
	return strategy.New(cfg.Guidelines, cfg.Import.PageSize)
}

func openLibrary() (*library.Store, error) {
	return library.Open(cfg.Library)
}

// openProgress returns the Redis progress store when one is configured,
// otherwise progress counted from the library. The returned func releases
// the Redis connection.
func openProgress(lib *library.Store) (campaign.Progress, func(), error) {
	if cfg.Progress.RedisAddr == "" {
		return campaign.NewLibraryProgress(lib), func() {}, nil
	}
	client, err := campaign.ConnectRedis(cfg.Progress.RedisAddr, cfg.Progress.RedisPassword, cfg.Progress.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using redis progress store", zap.String("addr", cfg.Progress.RedisAddr))
	return campaign.NewRedisProgress(client, ""), func() { client.Close() }, nil
}

// parseDate parses a YYYY-MM-DD flag value; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
