package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"scrapmarket-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GormPinger pings the pool behind a GORM handle.
type GormPinger struct{ DB *gorm.DB }

func (p GormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CollectResult is the body of /health/json.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	ConflictCount   int         `json:"conflictCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// CollectHealth gathers dependency status and the traffic counters kept by
// middleware.HealthMarker.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(ctx); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()

	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"
			startTimeMs = readTraffic(ctx, rdb, &stats, startTimeMs)
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	result.Traffic = stats

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, startTimeMs int64) int64 {
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyReqConflicts,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	if err != nil {
		return startTimeMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	if s := str(5); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.ConflictCount, _ = strconv.Atoi(str(2))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(3), 64)
	countSum, _ := strconv.Atoi(str(4))
	if countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if s := str(6); s != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(s), &lastReq)
		stats.LastRequest = lastReq
	}
	return startTimeMs
}

// Reset clears the traffic counters and restarts the uptime clock.
func Reset(ctx context.Context, rdb *redis.Client, now time.Time) error {
	keys := append([]string{middleware.KeyStartTime}, middleware.HealthKeys...)
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(now.UnixMilli(), 10), 0).Err()
}
