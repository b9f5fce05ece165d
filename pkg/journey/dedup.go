package journey

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DepartureTolerance is how far a result's first leg departure may drift from
// a requested departure and still count as the same connection
const DepartureTolerance = time.Minute

// GenerateFunctionalSignature produces a canonical identity for a journey
// based on its legs and price. Two journeys with the same signature are
// considered duplicates of each other.
func (j *Journey) GenerateFunctionalSignature() string {
	var legParts []string

	for _, leg := range j.Legs {
		lineName := "walk"
		if leg.Line != nil && leg.Line.Name != "" {
			lineName = leg.Line.Name
		}

		originID := ""
		if leg.Origin != nil {
			originID = leg.Origin.ID
		}
		destinationID := ""
		if leg.Destination != nil {
			destinationID = leg.Destination.ID
		}

		legParts = append(legParts, fmt.Sprintf("%s-%s-%s-%s", lineName, originID, destinationID, leg.Departure.Format(time.RFC3339)))
	}

	price := "no-price"
	if j.Price != nil {
		price = fmt.Sprintf("%v", j.Price.Amount)
	}

	return fmt.Sprintf("%s-%s", strings.Join(legParts, "|"), price)
}

// FilterIdenticalJourneys removes duplicate journeys, keeping the first
// occurrence of each signature
func FilterIdenticalJourneys(journeys []*Journey) []*Journey {
	var filtered []*Journey

	matches := map[string]bool{}
	for _, journey := range journeys {
		signature := journey.GenerateFunctionalSignature()

		if !matches[signature] {
			filtered = append(filtered, journey)
			matches[signature] = true
		}
	}

	return filtered
}

// MatchesDeparture reports whether the journey's first leg departs within
// DepartureTolerance of the target time
func (j *Journey) MatchesDeparture(target time.Time) bool {
	if len(j.Legs) == 0 {
		return false
	}

	difference := j.Legs[0].Departure.Sub(target)
	if difference < 0 {
		difference = -difference
	}

	return difference <= DepartureTolerance
}

// FindMatchingJourney returns the first journey departing within
// DepartureTolerance of the target, or nil when none matches
func FindMatchingJourney(journeys []*Journey, target time.Time) *Journey {
	for _, journey := range journeys {
		if journey.MatchesDeparture(target) {
			return journey
		}
	}

	return nil
}

// RankSearchResults canonicalises a raw provider result set before it is
// shown or fed into split analysis.
//
// When a target departure is given it filters down to journeys that exactly
// match the requested origin, destination, and departure time, deduplicates
// them, and sorts ascending by price. If no exact match exists the raw set is
// returned untouched - better to show something than nothing.
//
// Without a target departure, journeys with no legs are dropped and the rest
// is deduplicated and sorted ascending by departure time.
func RankSearchResults(journeys []*Journey, originID string, destinationID string, targetDeparture *time.Time) []*Journey {
	if targetDeparture != nil {
		var exactMatches []*Journey
		for _, journey := range journeys {
			if len(journey.Legs) == 0 {
				continue
			}

			origin := journey.Origin()
			destination := journey.Destination()

			if origin == nil || destination == nil {
				continue
			}

			if origin.ID == originID && destination.ID == destinationID && journey.MatchesDeparture(*targetDeparture) {
				exactMatches = append(exactMatches, journey)
			}
		}

		if len(exactMatches) == 0 {
			return journeys
		}

		exactMatches = FilterIdenticalJourneys(exactMatches)

		sort.Slice(exactMatches, func(i, j int) bool {
			return exactMatches[i].PriceAmount() < exactMatches[j].PriceAmount()
		})

		return exactMatches
	}

	var withLegs []*Journey
	for _, journey := range journeys {
		if len(journey.Legs) == 0 {
			continue
		}

		withLegs = append(withLegs, journey)
	}

	unique := FilterIdenticalJourneys(withLegs)

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].DepartureTime().Before(unique[j].DepartureTime())
	})

	return unique
}
