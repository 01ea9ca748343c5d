package stats_test

import (
	"context"
	"testing"

	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/stats"
	"github.com/shilloon/Virtual-Statistics-site/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeed_AppliesQueuedEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := stats.NewService(db, zap.NewNop())
	ctx := context.Background()

	p, err := svc.CreatePlayer(ctx, "feedplayer", 10, model.TierGold, 100)
	require.NoError(t, err)
	item, err := svc.CreateItem(ctx, "Potion", model.ItemTypeConsumable, "", 10)
	require.NoError(t, err)
	skill, err := svc.CreateSkill(ctx, "Fireball", model.SkillTypeActive, "", 5)
	require.NoError(t, err)

	feed := stats.NewFeed(svc, 16, zap.NewNop())
	feed.Enqueue(stats.UsageEvent{PlayerID: p.ID, Kind: stats.EventItem, RefID: item.ID, Count: 2})
	feed.Enqueue(stats.UsageEvent{PlayerID: p.ID, Kind: stats.EventItem, RefID: item.ID, Count: 3})
	feed.Enqueue(stats.UsageEvent{PlayerID: p.ID, Kind: stats.EventSkill, RefID: skill.ID, Count: 1})
	// Stop drains the queue before returning.
	feed.Stop()

	var iu model.ItemUsage
	require.NoError(t, db.First(&iu).Error)
	assert.Equal(t, 5, iu.UsageCount)

	var su model.SkillUsage
	require.NoError(t, db.First(&su).Error)
	assert.Equal(t, 1, su.UsageCount)
}

func TestFeed_StopIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := stats.NewService(db, zap.NewNop())
	feed := stats.NewFeed(svc, 1, zap.NewNop())
	feed.Stop()
	feed.Stop()
}
