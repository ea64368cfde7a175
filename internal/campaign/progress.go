// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package campaign

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/recipe-curator/pkg/types"
)

// Progress records how many recipes a campaign has imported.
type Progress interface {
	// Imported returns the campaign's cumulative import count.
	Imported(ctx context.Context, campaignID string) (int, error)

	// ImportedOn returns the count imported by runs for date.
	ImportedOn(ctx context.Context, campaignID string, date time.Time) (int, error)

	// Add records n imports by a run for date.
	Add(ctx context.Context, campaignID string, date time.Time, n int) error
}

// ImportedBefore returns the campaign's imports excluding those made for
// date, so re-running a day plans against the same baseline.
func ImportedBefore(ctx context.Context, p Progress, campaignID string, date time.Time) (int, error) {
	total, err := p.Imported(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	today, err := p.ImportedOn(ctx, campaignID, date)
	if err != nil {
		return 0, err
	}
	return max(0, total-today), nil
}

// RedisProgress keeps one hash per campaign, field per run date.
type RedisProgress struct {
	client *redis.Client
	prefix string
}

// NewRedisProgress wraps client. Keys are "<prefix>:<campaign id>".
func NewRedisProgress(client *redis.Client, prefix string) *RedisProgress {
	if prefix == "" {
		prefix = "recipe-curator:progress"
	}
	return &RedisProgress{client: client, prefix: prefix}
}

// ConnectRedis builds a client from a "redis://" URL or a host:port address.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}

func (r *RedisProgress) key(campaignID string) string {
	return r.prefix + ":" + campaignID
}

// Imported implements Progress.
func (r *RedisProgress) Imported(ctx context.Context, campaignID string) (int, error) {
	vals, err := r.client.HVals(ctx, r.key(campaignID)).Result()
	if err != nil {
		return 0, fmt.Errorf("reading progress for %s: %w", campaignID, err)
	}
	total := 0
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("progress for %s: bad count %q: %w", campaignID, v, err)
		}
		total += n
	}
	return total, nil
}

// ImportedOn implements Progress.
func (r *RedisProgress) ImportedOn(ctx context.Context, campaignID string, date time.Time) (int, error) {
	n, err := r.client.HGet(ctx, r.key(campaignID), date.Format(types.DateLayout)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading progress for %s on %s: %w", campaignID, date.Format(types.DateLayout), err)
	}
	return n, nil
}

// Add implements Progress.
func (r *RedisProgress) Add(ctx context.Context, campaignID string, date time.Time, n int) error {
	if n == 0 {
		return nil
	}
	if err := r.client.HIncrBy(ctx, r.key(campaignID), date.Format(types.DateLayout), int64(n)).Err(); err != nil {
		return fmt.Errorf("recording progress for %s: %w", campaignID, err)
	}
	return nil
}

// Counter counts library rows tagged with a campaign id.
type Counter interface {
	CountByCampaign(ctx context.Context, campaignID, importedOn string) (int, error)
}

// LibraryProgress derives progress from the library itself. Add is a
// no-op because the imported rows are the record.
type LibraryProgress struct {
	counter Counter
}

// NewLibraryProgress returns a Progress backed by c.
func NewLibraryProgress(c Counter) *LibraryProgress {
	return &LibraryProgress{counter: c}
}

// Imported implements Progress.
func (l *LibraryProgress) Imported(ctx context.Context, campaignID string) (int, error) {
	return l.counter.CountByCampaign(ctx, campaignID, "")
}

// ImportedOn implements Progress.
func (l *LibraryProgress) ImportedOn(ctx context.Context, campaignID string, date time.Time) (int, error) {
	return l.counter.CountByCampaign(ctx, campaignID, date.Format(types.DateLayout))
}

// Add implements Progress.
func (l *LibraryProgress) Add(context.Context, string, time.Time, int) error { return nil }
