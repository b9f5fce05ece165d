package routes

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/bookinglink"
	"github.com/splitfare/splitfare/pkg/fares"
	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/splitfare/splitfare/pkg/split"
	"github.com/valyala/fasthttp"
)

type splitJourneyRequest struct {
	OriginalJourney *journey.Journey `json:"originalJourney"`

	BahnCard             string `json:"bahnCard"`
	HasDeutschlandTicket bool   `json:"hasDeutschlandTicket"`
	PassengerAge         *int   `json:"passengerAge"`
	TravelClass          string `json:"travelClass"`

	UseStreaming bool `json:"useStreaming"`
}

func SplitJourneyRouter(router fiber.Router, analyzer *split.Analyzer) {
	router.Post("/", postSplitJourney(analyzer))
}

func postSplitJourney(analyzer *split.Analyzer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request splitJourneyRequest
		if err := c.BodyParser(&request); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if request.OriginalJourney == nil || len(request.OriginalJourney.Legs) == 0 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Missing originalJourney",
			})
		}

		candidates := split.ExtractCandidates(request.OriginalJourney)

		log.Debug().Int("candidates", len(candidates)).Msg("Extracted split candidates")

		if len(candidates) == 0 {
			return c.JSON(fiber.Map{
				"success":      true,
				"splitOptions": []*split.Option{},
				"message":      "No split points found",
			})
		}

		options := buildSearchOptions(request)
		originalPrice := request.OriginalJourney.PriceAmount()
		travelClass := travelClassNumber(request.TravelClass)
		pricingSummary := fares.CalculateJourneyPricing(request.OriginalJourney, request.HasDeutschlandTicket)

		if request.UseStreaming {
			return streamSplitAnalysis(c, analyzer, request.OriginalJourney, candidates, options, originalPrice, travelClass, pricingSummary)
		}

		splitOptions, err := analyzer.Analyze(c.UserContext(), request.OriginalJourney, candidates, options, originalPrice, nil)
		if err != nil {
			log.Error().Err(err).Msg("Split analysis failed")

			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Failed to analyze split journeys",
			})
		}

		split.SortBySavings(splitOptions)
		if splitOptions == nil {
			splitOptions = []*split.Option{}
		}
		attachBookingLinks(splitOptions, travelClass)

		return c.JSON(fiber.Map{
			"success":        true,
			"splitOptions":   splitOptions,
			"originalPrice":  originalPrice,
			"pricingSummary": pricingSummary,
		})
	}
}

func travelClassNumber(travelClass string) int {
	if travelClass == "1" {
		return 1
	}

	return 2
}

// attachBookingLinks adds a booking site deeplink for every segment of every
// option. A segment that cannot be linked keeps an empty entry, the option
// itself is still valid.
func attachBookingLinks(options []*split.Option, travelClass int) {
	for _, option := range options {
		links := make([]string, 0, len(option.Segments))

		for _, segment := range option.Segments {
			link, err := bookinglink.SegmentURL(segment, travelClass)
			if err != nil {
				log.Debug().Err(err).Msg("Failed to build segment booking link")
				link = ""
			}

			links = append(links, link)
		}

		option.BookingLinks = links
	}
}

func buildSearchOptions(request splitJourneyRequest) journey.SearchOptions {
	options := journey.SearchOptions{
		Results:          1,
		Stopovers:        true,
		FirstClass:       request.TravelClass == "1",
		FlatFareDiscount: request.HasDeutschlandTicket,
	}

	if discount, err := strconv.Atoi(request.BahnCard); err == nil {
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

	if request.PassengerAge != nil {
		options.PassengerAge = *request.PassengerAge
	}

	return options
}

// streamSplitAnalysis delivers the analysis as server push events so the
// caller sees continuous feedback instead of one long blocking call
func streamSplitAnalysis(c *fiber.Ctx, analyzer *split.Analyzer, original *journey.Journey, candidates []split.Candidate, options journey.SearchOptions, originalPrice float64, travelClass int, pricingSummary fares.PricingSummary) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// The stream writer runs after this handler returns, so it gets its own
	// context. Cancelling it abandons the candidate loop when the consumer
	// disconnects.
	ctx, cancel := context.WithCancel(context.Background())

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		writeEvent := func(payload any) error {
			data, err := json.Marshal(payload)
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}

			return w.Flush()
		}

		writeEvent(fiber.Map{
			"type":    "progress",
			"checked": 0,
			"total":   len(candidates),
			"message": "Analyse gestartet...",
		})

		splitOptions, err := analyzer.Analyze(ctx, original, candidates, options, originalPrice, func(progress split.Progress) {
			if err := writeEvent(fiber.Map{
				"type":           "progress",
				"checked":        progress.Checked,
				"total":          progress.Total,
				"message":        progress.Message,
				"currentStation": progress.CurrentStation,
			}); err != nil {
				cancel()
			}
		})

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}

			log.Error().Err(err).Msg("Streaming split analysis failed")

			writeEvent(fiber.Map{
				"type":  "error",
				"error": "Failed to analyze split journeys",
			})

			return
		}

		split.SortBySavings(splitOptions)
		if splitOptions == nil {
			splitOptions = []*split.Option{}
		}
		attachBookingLinks(splitOptions, travelClass)

		writeEvent(fiber.Map{
			"type":           "complete",
			"success":        true,
			"splitOptions":   splitOptions,
			"originalPrice":  originalPrice,
			"pricingSummary": pricingSummary,
		})
	}))

	return nil
}
