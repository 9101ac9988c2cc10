package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"scrapmarket-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("down") }

func TestCollectHealth_WithNilRedis(t *testing.T) {
	result := CollectHealth(context.Background(), nil, nil)
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
}

func TestCollectHealth_WithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	result := CollectHealth(ctx, rdb, GormPinger{DB: db})
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "connected", result.Dependencies["database"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.Equal(t, "100", result.Traffic.SuccessRate)

	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqErrors, "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqConflicts, "3", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResTime, "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResCount, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyStartTime, "1000000", 0).Err())

	result = CollectHealth(ctx, rdb, nil)
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, 10, result.Traffic.TotalRequests)
	assert.Equal(t, 2, result.Traffic.FailedCount)
	assert.Equal(t, 8, result.Traffic.SuccessCount)
	assert.Equal(t, 3, result.Traffic.ConflictCount)
	assert.Equal(t, "80.0", result.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result.Traffic.AvgResponseTime)
}

func TestCollectHealth_DatabaseError(t *testing.T) {
	result := CollectHealth(context.Background(), nil, failingPinger{})
	assert.Equal(t, "error", result.Dependencies["database"].Status)
}

func TestReset(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "10", 0).Err())

	now := time.UnixMilli(1700000000000)
	require.NoError(t, Reset(ctx, rdb, now))
	assert.False(t, mr.Exists(middleware.KeyReqTotal))
	v, err := mr.Get(middleware.KeyStartTime)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", v)
}
