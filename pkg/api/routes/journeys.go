package routes

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/splitfare/splitfare/pkg/stats"
)

// Gateway is the journey search provider the routes query
type Gateway interface {
	Journeys(ctx context.Context, originID string, destinationID string, options journey.SearchOptions) ([]*journey.Journey, error)
}

const defaultResultCount = 10

// With an exact departure we want exact matches, not a spread of
// alternatives
const exactTimeResultCount = 5

func JourneysRouter(router fiber.Router, gateway Gateway, counter *stats.RequestCounter) {
	router.Get("/", getJourneys(gateway, counter))
}

func getJourneys(gateway Gateway, counter *stats.RequestCounter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// A new top level search starts a fresh provider request count
		counter.Reset()

		from := c.Query("from")
		to := c.Query("to")

		if from == "" || to == "" {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Missing required parameters: from and to station IDs",
			})
		}

		var departure *time.Time
		if departureString := c.Query("departure"); departureString != "" {
			parsed, err := parseDeparture(departureString)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter departure should be an ISO8601 datetime",
				})
			}

			if parsed.Before(time.Now()) {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Departure time cannot be in the past",
				})
			}

			departure = &parsed
		}

		resultCount, err := strconv.Atoi(c.Query("results", strconv.Itoa(defaultResultCount)))
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter results should be an integer",
			})
		}
		if departure != nil {
			resultCount = exactTimeResultCount
		}

		options := journey.SearchOptions{
			Results:          resultCount,
			Stopovers:        true,
			ExactTimeOnly:    departure != nil,
			Departure:        departure,
			FirstClass:       c.Query("travelClass", "2") == "1",
			FlatFareDiscount: c.QueryBool("hasDeutschlandTicket", false),
		}

		if discount, err := strconv.Atoi(c.Query("bahnCard", "")); err == nil {
			if discount == 25 || discount == 50 || discount == 100 {
				class := 2
				if options.FirstClass {
					class = 1
				}

				options.LoyaltyCard = &journey.LoyaltyCard{
					Discount: discount,
					Class:    class,
				}
			}
		}

		if age, err := strconv.Atoi(c.Query("passengerAge", "")); err == nil {
			options.PassengerAge = age
		}

		journeys, err := gateway.Journeys(c.UserContext(), from, to, options)
		if err != nil {
			log.Error().Err(err).Msg("Journey search failed")

			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error":   "Failed to fetch journeys",
				"details": err.Error(),
			})
		}

		ranked := journey.RankSearchResults(journeys, from, to, departure)
		if ranked == nil {
			ranked = []*journey.Journey{}
		}

		log.Debug().Int("requests", counter.Total()).Int("journeys", len(ranked)).Msg("Journey search completed")

		return c.JSON(fiber.Map{
			"success":  true,
			"journeys": ranked,
		})
	}
}

func parseDeparture(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	return time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
}
