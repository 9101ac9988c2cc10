package router

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"scrapmarket-backend/internal/config"
	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(redisURL string) *config.Config {
	return &config.Config{
		Env:            "test",
		Port:           "0",
		RedisURL:       redisURL,
		HealthAdminKey: "k",
		CommissionRate: domain.MustRate("0.10"),
		ListingLockTTL: 5 * time.Second,
	}
}

func TestCreateApp_WithoutDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	app, db, rdb, err := CreateApp(testConfig("redis://" + mr.Addr()))
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer rdb.Close()
	assert.Nil(t, db)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	deps, _ := body["dependencies"].(map[string]interface{})
	redisDep, _ := deps["redis"].(map[string]interface{})
	dbDep, _ := deps["database"].(map[string]interface{})
	assert.Equal(t, "connected", redisDep["status"])
	assert.Equal(t, "disconnected", dbDep["status"])
	assert.Equal(t, "issue", body["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/auth/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/listings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	total, err := mr.Get(middleware.KeyReqTotal)
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}

func TestCreateApp_RejectsForeignOrigin(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig("redis://" + mr.Addr())
	cfg.FrontendURLEndsWith = ".scrapmarket.app"
	app, _, rdb, err := CreateApp(cfg)
	require.NoError(t, err)
	defer rdb.Close()

	req := httptest.NewRequest("GET", "/health/json", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/health/json", nil)
	req.Header.Set("Origin", "https://www.scrapmarket.app")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://www.scrapmarket.app", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCreateApp_BadRedisURL(t *testing.T) {
	_, _, _, err := CreateApp(testConfig("not a url"))
	assert.Error(t, err)
}
