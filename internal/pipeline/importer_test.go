// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/recipe-curator/internal/campaign"
	"github.com/pdiddy/recipe-curator/internal/report"
	"github.com/pdiddy/recipe-curator/internal/source"
	"github.com/pdiddy/recipe-curator/internal/strategy"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

func newTestImporter(t *testing.T, src *fakeSource) (*Importer, campaign.Progress) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client, err := campaign.ConnectRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	cat, err := strategy.New(types.DefaultGuidelines(), 2)
	require.NoError(t, err)
	o, _ := newTestOrchestrator(t, src, openLibrary(t))
	progress := campaign.NewRedisProgress(client, "")
	return &Importer{
		Orchestrator: o,
		Scheduler:    campaign.NewScheduler(cat),
		Progress:     progress,
		Reports:      report.NewStore(t.TempDir()),
		Logger:       zaptest.NewLogger(t),
	}, progress
}

func TestImporter_RunDay(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(2)
	src.byCategory[types.Lunch] = lunchFixtures()
	im, progress := newTestImporter(t, src)
	c := testCampaign()

	rep, err := im.RunDay(ctx, c, day3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.CampaignDay)
	assert.Equal(t, []string{"lunch-salads", "dinner-poultry"}, rep.Strategies)
	assert.Equal(t, 100, rep.DailyQuota)
	assert.Equal(t, 4, rep.Counts.Imported)

	_, err = os.Stat(im.Reports.DailyPath("2026-01-07"))
	require.NoError(t, err)
	saved, err := im.Reports.LoadDaily("2026-01-07")
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, saved.RunID)

	n, err := progress.ImportedOn(ctx, c.ID(), day3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Re-running the day plans the same work and imports nothing new.
	again, err := im.RunDay(ctx, c, day3, nil)
	require.NoError(t, err)
	assert.Equal(t, rep.Strategies, again.Strategies)
	assert.Equal(t, rep.DailyQuota, again.DailyQuota)
	assert.Equal(t, 0, again.Counts.Imported)
	assert.Equal(t, 4, again.Counts.RejectedDuplicate)

	n, err = progress.Imported(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	saved, err = im.Reports.LoadDaily("2026-01-07")
	require.NoError(t, err)
	assert.Equal(t, []string{rep.RunID, again.RunID}, saved.RunIDs)
	assert.Equal(t, 4, saved.Counts.Imported)
	assert.Equal(t, 4, saved.Counts.RejectedDuplicate)
	assert.Equal(t, 100, saved.DailyQuota)

	w, _, err := im.Reports.BuildWeekly(day3, c.DailyQuota)
	require.NoError(t, err)
	assert.Equal(t, 4, w.Counts.Imported)
}

func TestImporter_RunDayOutOfRange(t *testing.T) {
	im, _ := newTestImporter(t, newFakeSource(2))
	_, err := im.RunDay(context.Background(), testCampaign(), testCampaign().StartDate.AddDate(0, 0, 30), nil)
	assert.ErrorIs(t, err, types.ErrOutOfCampaignRange)
}

func TestImporter_RunDayOverride(t *testing.T) {
	src := newFakeSource(2)
	src.byCategory[types.Lunch] = lunchFixtures()
	im, _ := newTestImporter(t, src)

	_, err := im.RunDay(context.Background(), testCampaign(), day3, []types.ImportStrategy{{Name: "broken", Category: types.Lunch}})
	require.Error(t, err)
	assert.Zero(t, src.searches)

	rep, err := im.RunDay(context.Background(), testCampaign(), day3, []types.ImportStrategy{lunchStrategy("custom-lunch", 2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"custom-lunch"}, rep.Strategies)
	assert.Equal(t, types.PhaseCore, rep.Phase)
	assert.Equal(t, 2, rep.Counts.Imported)
}

func TestImporter_TargetReached(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(2)
	src.byCategory[types.Lunch] = lunchFixtures()
	im, progress := newTestImporter(t, src)
	c := testCampaign()
	require.NoError(t, progress.Add(ctx, c.ID(), c.StartDate, c.Target()))

	rep, err := im.RunDay(ctx, c, day3, nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Strategies)
	assert.Equal(t, 0, rep.DailyQuota)
	assert.Zero(t, rep.Counts.Total())
	assert.Zero(t, src.searches)
}

func TestImporter_CredentialRejectedMidRunSavesReport(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(2)
	src.byCategory[types.Lunch] = lunchFixtures()
	src.searchErr[types.Dinner] = &source.StatusError{Op: "search", Status: 401, Kind: source.ErrInvalidCredential}
	im, progress := newTestImporter(t, src)
	c := testCampaign()

	rep, err := im.RunDay(ctx, c, day3, nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Equal(t, 4, rep.Counts.Imported)

	saved, err := im.Reports.LoadDaily("2026-01-07")
	require.NoError(t, err)
	assert.Equal(t, 4, saved.Counts.Imported)

	n, err := progress.ImportedOn(ctx, c.ID(), day3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestImporter_CredentialFailureWritesNothing(t *testing.T) {
	src := newFakeSource(2)
	src.credErr = types.ErrConfiguration
	im, _ := newTestImporter(t, src)

	_, err := im.RunDay(context.Background(), testCampaign(), day3, nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	_, err = im.Reports.LoadDaily("2026-01-07")
	assert.ErrorIs(t, err, report.ErrNoReport)
}
