package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request traffic counters, read by the health service.
const (
	KeyReqTotal     = "health:global:req_total"
	KeyReqErrors    = "health:global:req_errors"
	KeyReqConflicts = "health:global:req_conflicts"
	KeyResTime      = "health:global:res_time_total"
	KeyResCount     = "health:global:res_count"
	KeyStartTime    = "health:global:start_time"
	KeyLastReq      = "health:global:last_request"
)

// HealthKeys lists every counter key; /health/reset deletes these.
var HealthKeys = []string{KeyReqTotal, KeyReqErrors, KeyReqConflicts, KeyResTime, KeyResCount, KeyLastReq}

// HealthMarker records request stats in Redis (skip /, /health*, favicon).
// 409 responses are counted separately since they mark lost negotiation races.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		ctx := c.UserContext()
		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		pipe := rdb.Pipeline()
		pipe.Set(ctx, KeyLastReq, b, 0)
		pipe.Incr(ctx, KeyReqTotal)
		_, _ = pipe.Exec(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		pipe = rdb.Pipeline()
		pipe.Incr(ctx, KeyResCount)
		pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if status >= 500 {
			pipe.Incr(ctx, KeyReqErrors)
		}
		if status == fiber.StatusConflict {
			pipe.Incr(ctx, KeyReqConflicts)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}
