package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/bookinglink"
	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/splitfare/splitfare/pkg/urlresolve"
)

type parseURLRequest struct {
	URL string `json:"url"`
}

func ParseURLRouter(router fiber.Router, resolver *urlresolve.Resolver) {
	router.Post("/", postParseURL(resolver))
}

func postParseURL(resolver *urlresolve.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request parseURLRequest
		if err := c.BodyParser(&request); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if request.URL == "" {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Missing required parameter: url",
			})
		}

		journeyDetails, err := resolver.Resolve(c.UserContext(), request.URL)
		if err != nil {
			log.Error().Err(err).Msg("Shared link resolution failed")

			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error":   "Failed to parse URL",
				"details": err.Error(),
			})
		}

		response := fiber.Map{
			"success":        true,
			"journeyDetails": journeyDetails,
		}

		if searchURL := canonicalSearchURL(journeyDetails); searchURL != "" {
			response["searchUrl"] = searchURL
		}

		return c.JSON(response)
	}
}

// canonicalSearchURL rebuilds a clean booking site search link from the
// extracted details, so the caller gets a stable URL instead of whatever
// shape the shared link had
func canonicalSearchURL(details *urlresolve.JourneyDetails) string {
	if details.FromStationID == "" || details.ToStationID == "" || details.Date == "" {
		return ""
	}

	timePart := details.Time
	if timePart == "" {
		timePart = "08:00"
	}

	date, err := time.Parse("2006-01-02 15:04", details.Date+" "+timePart)
	if err != nil {
		date, err = time.Parse("2006-01-02 15:04:05", details.Date+" "+timePart)
		if err != nil {
			return ""
		}
	}

	travelClass := 2
	if class, err := strconv.Atoi(details.Class); err == nil {
		travelClass = class
	}

	return bookinglink.SearchURL(bookinglink.SearchParameters{
		From:        details.FromStation,
		To:          details.ToStation,
		Date:        date,
		TravelClass: travelClass,
		FromStation: &journey.Station{ID: details.FromStationID, Name: details.FromStation},
		ToStation:   &journey.Station{ID: details.ToStationID, Name: details.ToStation},
	})
}
