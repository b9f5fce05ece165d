package split

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"github.com/sourcegraph/conc"
	"github.com/splitfare/splitfare/pkg/journey"
)

// Gateway is the journey search provider the evaluator queries for segment
// fares
type Gateway interface {
	Journeys(ctx context.Context, originID string, destinationID string, options journey.SearchOptions) ([]*journey.Journey, error)
}

// Evaluator prices a single split candidate against the original through
// fare
type Evaluator struct {
	Gateway Gateway
}

// Evaluate issues the two segment searches for one candidate - origin to
// split station pinned to the original departure, split station to
// destination pinned to the candidate's own departure - and compares the
// combined price against the original.
//
// Returns nil when no result in either segment matches the pinned departure
// within tolerance, or when the combined fare is no cheaper. Provider errors
// propagate to the caller, the orchestrator decides how to isolate them.
func (e *Evaluator) Evaluate(ctx context.Context, original *journey.Journey, candidate Candidate, options journey.SearchOptions, originalPrice float64) (*Option, error) {
	if len(original.Legs) == 0 {
		return nil, errors.New("original journey has no legs")
	}

	origin := original.Origin()
	destination := original.Destination()
	if origin == nil || destination == nil {
		return nil, errors.New("original journey is missing origin or destination")
	}

	originalDeparture := original.Legs[0].Departure
	splitDeparture := candidate.Departure

	var firstOptions journey.SearchOptions
	copier.Copy(&firstOptions, &options)
	firstOptions.Departure = &originalDeparture

	var secondOptions journey.SearchOptions
	copier.Copy(&secondOptions, &options)
	secondOptions.Departure = &splitDeparture

	var firstSegment, secondSegment []*journey.Journey
	var firstErr, secondErr error

	var waitGroup conc.WaitGroup
	waitGroup.Go(func() {
		firstSegment, firstErr = e.Gateway.Journeys(ctx, origin.ID, candidate.Station.ID, firstOptions)
	})
	waitGroup.Go(func() {
		secondSegment, secondErr = e.Gateway.Journeys(ctx, candidate.Station.ID, destination.ID, secondOptions)
	})
	waitGroup.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if secondErr != nil {
		return nil, secondErr
	}

	firstJourney := journey.FindMatchingJourney(firstSegment, originalDeparture)
	if firstJourney == nil {
		return nil, nil
	}
	secondJourney := journey.FindMatchingJourney(secondSegment, splitDeparture)
	if secondJourney == nil {
		return nil, nil
	}

	totalPrice := firstJourney.PriceAmount() + secondJourney.PriceAmount()

	if totalPrice > 0 && totalPrice < originalPrice {
		return newSingleSplitOption(candidate.Station, []*journey.Journey{firstJourney, secondJourney}, totalPrice, originalPrice, candidate.Line), nil
	}

	return nil, nil
}
