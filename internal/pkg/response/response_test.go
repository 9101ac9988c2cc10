package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestList_EmptyIsArray(t *testing.T) {
	code, body := call(t, func(c *fiber.Ctx) error {
		var items []string
		return List(c, "ok", "listings", items)
	})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["listings"])
	assert.Equal(t, float64(0), body["metadata"].(map[string]interface{})["count"])
}

func TestErrorEnvelope(t *testing.T) {
	code, body := call(t, func(c *fiber.Ctx) error { return Conflict(c, "Listing was modified concurrently") })
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "error", body["status"])
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Listing was modified concurrently", errObj["message"])
	assert.Equal(t, float64(fiber.StatusConflict), errObj["statusCode"])

	code, body = call(t, Internal)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", body["error"].(map[string]interface{})["message"])
}
