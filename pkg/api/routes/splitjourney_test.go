package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/splitfare/splitfare/pkg/split"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	journeys map[string][]*journey.Journey
}

func (g *stubGateway) Journeys(ctx context.Context, originID string, destinationID string, options journey.SearchOptions) ([]*journey.Journey, error) {
	return g.journeys[fmt.Sprintf("%s->%s", originID, destinationID)], nil
}

func splitTestTime(hour int, minute int) time.Time {
	return time.Date(2026, 9, 14, hour, minute, 0, 0, time.UTC)
}

func splitTestStopover(id string, name string, arrival time.Time, departure time.Time) journey.Stopover {
	return journey.Stopover{
		Stop:      &journey.Station{ID: id, Name: name},
		Arrival:   &arrival,
		Departure: &departure,
	}
}

func splitTestJourney() *journey.Journey {
	return &journey.Journey{
		Price: &journey.Price{Amount: 89, Currency: "EUR"},
		Legs: []journey.Leg{
			{
				Origin:      &journey.Station{ID: "8011160", Name: "Berlin Hbf"},
				Destination: &journey.Station{ID: "8000261", Name: "München Hbf"},
				Departure:   splitTestTime(8, 0),
				Arrival:     splitTestTime(12, 0),
				Line:        &journey.Line{Name: "ICE 501", Product: "nationalexpress"},
				Stopovers: []journey.Stopover{
					splitTestStopover("8011160", "Berlin Hbf", splitTestTime(8, 0), splitTestTime(8, 0)),
					splitTestStopover("8000115", "Fulda", splitTestTime(9, 30), splitTestTime(9, 32)),
					splitTestStopover("8000261", "München Hbf", splitTestTime(12, 0), splitTestTime(12, 0)),
				},
			},
		},
	}
}

func segment(originID string, destinationID string, departure time.Time, amount float64) *journey.Journey {
	return &journey.Journey{
		Price: &journey.Price{Amount: amount, Currency: "EUR"},
		Legs: []journey.Leg{
			{
				Origin:      &journey.Station{ID: originID, Name: originID},
				Destination: &journey.Station{ID: destinationID, Name: destinationID},
				Departure:   departure,
				Arrival:     departure.Add(time.Hour),
				Line:        &journey.Line{Name: "ICE 501"},
			},
		},
	}
}

func splitTestApp(gateway split.Gateway) *fiber.App {
	analyzer := split.NewAnalyzer(gateway)
	analyzer.BatchDelay = time.Millisecond

	app := fiber.New()
	SplitJourneyRouter(app.Group("/split-journey"), analyzer)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) ([]byte, int) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	request := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request, -1)
	require.NoError(t, err)

	responseBody, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return responseBody, response.StatusCode
}

func TestPostSplitJourneyMissingJourney(t *testing.T) {
	app := splitTestApp(&stubGateway{})

	body, status := postJSON(t, app, "/split-journey/", fiber.Map{})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "Missing originalJourney")
}

func TestPostSplitJourneyNoCandidates(t *testing.T) {
	app := splitTestApp(&stubGateway{})

	original := splitTestJourney()
	original.Legs[0].Stopovers = nil

	body, status := postJSON(t, app, "/split-journey/", fiber.Map{"originalJourney": original})

	assert.Equal(t, fiber.StatusOK, status)

	var response struct {
		Success      bool           `json:"success"`
		SplitOptions []split.Option `json:"splitOptions"`
		Message      string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &response))

	assert.True(t, response.Success)
	assert.Empty(t, response.SplitOptions)
	assert.Equal(t, "No split points found", response.Message)
}

type streamFrame struct {
	Type          string         `json:"type"`
	Checked       int            `json:"checked"`
	Total         int            `json:"total"`
	Message       string         `json:"message"`
	SplitOptions  []split.Option `json:"splitOptions"`
	OriginalPrice float64        `json:"originalPrice"`
}

func parseStreamFrames(t *testing.T, body []byte) []streamFrame {
	t.Helper()

	var frames []streamFrame
	for _, chunk := range strings.Split(string(body), "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		payload, found := strings.CutPrefix(chunk, "data: ")
		require.True(t, found, "stream chunk without data prefix: %q", chunk)

		var frame streamFrame
		require.NoError(t, json.Unmarshal([]byte(payload), &frame))

		frames = append(frames, frame)
	}

	return frames
}

func TestPostSplitJourneyStreaming(t *testing.T) {
	original := splitTestJourney()
	original.Legs[0].Stopovers = []journey.Stopover{
		splitTestStopover("8011160", "Berlin Hbf", splitTestTime(8, 0), splitTestTime(8, 0)),
		splitTestStopover("8000115", "Fulda", splitTestTime(9, 30), splitTestTime(9, 32)),
		splitTestStopover("8000284", "Nürnberg Hbf", splitTestTime(10, 45), splitTestTime(10, 47)),
		splitTestStopover("8000261", "München Hbf", splitTestTime(12, 0), splitTestTime(12, 0)),
	}

	gateway := &stubGateway{
		journeys: map[string][]*journey.Journey{
			// Splitting at Fulda saves 4, at Nürnberg 9
			"8011160->8000115": {segment("8011160", "8000115", splitTestTime(8, 0), 35)},
			"8000115->8000261": {segment("8000115", "8000261", splitTestTime(9, 32), 50)},
			"8011160->8000284": {segment("8011160", "8000284", splitTestTime(8, 0), 30)},
			"8000284->8000261": {segment("8000284", "8000261", splitTestTime(10, 47), 50)},
		},
	}

	app := splitTestApp(gateway)

	payload, err := json.Marshal(fiber.Map{
		"originalJourney": original,
		"useStreaming":    true,
	})
	require.NoError(t, err)

	request := httptest.NewRequest("POST", "/split-journey/", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, response.StatusCode)
	assert.Equal(t, "text/event-stream", response.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	frames := parseStreamFrames(t, body)

	// Initial frame, two per candidate, one terminal complete
	require.Len(t, frames, 6)

	assert.Equal(t, "progress", frames[0].Type)
	assert.Equal(t, 0, frames[0].Checked)
	assert.Equal(t, "Analyse gestartet...", frames[0].Message)

	lastChecked := 0
	for _, frame := range frames[:5] {
		assert.Equal(t, "progress", frame.Type)
		assert.Equal(t, 2, frame.Total)
		assert.GreaterOrEqual(t, frame.Checked, lastChecked)
		lastChecked = frame.Checked
	}
	assert.Equal(t, "Analyse abgeschlossen", frames[4].Message)

	complete := frames[5]
	assert.Equal(t, "complete", complete.Type)
	assert.Equal(t, float64(89), complete.OriginalPrice)

	// Biggest saving first
	require.Len(t, complete.SplitOptions, 2)
	assert.Equal(t, "Nürnberg Hbf", complete.SplitOptions[0].SplitStations[0].Name)
	assert.Equal(t, float64(9), complete.SplitOptions[0].Savings)
	assert.Equal(t, "Fulda", complete.SplitOptions[1].SplitStations[0].Name)
	assert.Equal(t, float64(4), complete.SplitOptions[1].Savings)
	require.Len(t, complete.SplitOptions[0].BookingLinks, 2)
}

func TestPostSplitJourneyFindsSavings(t *testing.T) {
	gateway := &stubGateway{
		journeys: map[string][]*journey.Journey{
			"8011160->8000115": {segment("8011160", "8000115", splitTestTime(8, 0), 35)},
			"8000115->8000261": {segment("8000115", "8000261", splitTestTime(9, 32), 50)},
		},
	}

	app := splitTestApp(gateway)

	body, status := postJSON(t, app, "/split-journey/", fiber.Map{
		"originalJourney": splitTestJourney(),
		"bahnCard":        "50",
		"travelClass":     "2",
	})

	require.Equal(t, fiber.StatusOK, status)

	var response struct {
		Success       bool           `json:"success"`
		SplitOptions  []split.Option `json:"splitOptions"`
		OriginalPrice float64        `json:"originalPrice"`
	}
	require.NoError(t, json.Unmarshal(body, &response))

	assert.True(t, response.Success)
	assert.Equal(t, float64(89), response.OriginalPrice)
	require.Len(t, response.SplitOptions, 1)
	assert.Equal(t, "Fulda", response.SplitOptions[0].SplitStations[0].Name)
	assert.Equal(t, float64(85), response.SplitOptions[0].TotalPrice)
	assert.Equal(t, float64(4), response.SplitOptions[0].Savings)

	// Every segment gets a booking deeplink
	require.Len(t, response.SplitOptions[0].BookingLinks, 2)
	assert.Contains(t, response.SplitOptions[0].BookingLinks[0], "bahn.de/buchung/fahrplan/suche#")
	assert.Contains(t, response.SplitOptions[0].BookingLinks[0], "kl=2")
}
