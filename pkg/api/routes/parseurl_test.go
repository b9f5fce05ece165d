package routes

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/splitfare/splitfare/pkg/urlresolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseURLTestApp() *fiber.App {
	app := fiber.New()
	ParseURLRouter(app.Group("/parse-url"), urlresolve.NewResolver())

	return app
}

func TestPostParseURLMissingURL(t *testing.T) {
	app := parseURLTestApp()

	body, status := postJSON(t, app, "/parse-url/", fiber.Map{})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "Missing required parameter: url")
}

func TestPostParseURLExtractsDetails(t *testing.T) {
	app := parseURLTestApp()

	// Unreachable host, the URL itself carries everything needed
	sharedLink := "http://127.0.0.1:1/buchung/fahrplan/suche#soid=A%3D1%40O%3DBerlin%2BHbf%40L%3D8011160%40B%3D1&zoid=A%3D1%40O%3DM%C3%BCnchen%2BHbf%40L%3D8000261%40B%3D1&hd=2026-09-14T08:32:58&kl=2"

	body, status := postJSON(t, app, "/parse-url/", fiber.Map{"url": sharedLink})

	require.Equal(t, fiber.StatusOK, status)

	var response struct {
		Success        bool                       `json:"success"`
		JourneyDetails *urlresolve.JourneyDetails `json:"journeyDetails"`
		SearchURL      string                     `json:"searchUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &response))

	assert.True(t, response.Success)
	require.NotNil(t, response.JourneyDetails)
	assert.Equal(t, "8011160", response.JourneyDetails.FromStationID)
	assert.Equal(t, "8000261", response.JourneyDetails.ToStationID)

	assert.Contains(t, response.SearchURL, "bahn.de/buchung/fahrplan/suche#")
	assert.Contains(t, response.SearchURL, "soei=8011160")
	assert.Contains(t, response.SearchURL, "zoei=8000261")
	assert.Contains(t, response.SearchURL, "kl=2")
}
