package fares

import "github.com/splitfare/splitfare/pkg/journey"

const flatFareMonthlyPrice = 49
const longDistanceEstimate = 89

// LegAnalysis describes the flat fare coverage of one train leg
type LegAnalysis struct {
	Leg        *journey.Leg `json:"leg"`
	IsCovered  bool         `json:"isCovered"`
	TrainType  string       `json:"trainType"`
	IsRegional bool         `json:"isRegional"`
}

// PricingSummary is the effective pricing of a journey once the flat fare
// ticket is taken into account
type PricingSummary struct {
	TotalPrice      float64 `json:"totalPrice"`
	OriginalPrice   float64 `json:"originalPrice"`
	FlatFareSavings float64 `json:"flatFareSavings"`
	FinalPrice      float64 `json:"finalPrice"`

	HasRegionalTrains    bool `json:"hasRegionalTrains"`
	IsOnlyRegionalTrains bool `json:"isOnlyRegionalTrains"`

	IsFullyCovered     bool `json:"isFullyCovered"`
	HasPartialCoverage bool `json:"hasPartialCoverage"`

	CoveredLegs   []LegAnalysis `json:"coveredLegs"`
	UncoveredLegs []LegAnalysis `json:"uncoveredLegs"`

	// CannotShowPrice is set when the provider returned no price and no
	// sensible estimate exists
	CannotShowPrice bool `json:"cannotShowPrice"`
}

func trainLegs(original *journey.Journey) []*journey.Leg {
	var legs []*journey.Leg

	for index := range original.Legs {
		if original.Legs[index].Walking {
			continue
		}

		legs = append(legs, &original.Legs[index])
	}

	return legs
}

// CalculateJourneyPricing works out what a journey effectively costs for a
// passenger, factoring in flat fare ticket coverage and falling back to
// estimates when the provider returned no price
func CalculateJourneyPricing(original *journey.Journey, hasFlatFare bool) PricingSummary {
	legs := trainLegs(original)

	isFullyCovered := true
	hasRegionalTrains := false
	isOnlyRegionalTrains := len(legs) > 0

	for _, leg := range legs {
		if !IsLegCoveredByFlatFare(leg, hasFlatFare) {
			isFullyCovered = false
		}

		if IsRegionalTrain(leg) {
			hasRegionalTrains = true
		} else {
			isOnlyRegionalTrains = false
		}
	}

	summary := PricingSummary{
		HasRegionalTrains:    hasRegionalTrains,
		IsOnlyRegionalTrains: isOnlyRegionalTrains,
	}

	if original.Price == nil || original.Price.Amount == 0 {
		if hasFlatFare && isFullyCovered {
			summary.IsFullyCovered = true
			return summary
		}

		var estimatedPrice float64
		if hasFlatFare && (hasRegionalTrains || isFullyCovered) {
			estimatedPrice = flatFareMonthlyPrice
		}

		summary.TotalPrice = estimatedPrice
		summary.OriginalPrice = estimatedPrice
		summary.FinalPrice = estimatedPrice
		summary.IsFullyCovered = hasFlatFare && isFullyCovered
		summary.CannotShowPrice = !hasFlatFare && hasRegionalTrains

		return summary
	}

	apiPrice := original.Price.Amount

	var legAnalysis []LegAnalysis
	for _, leg := range legs {
		trainType := "unknown"
		if leg.Line != nil && leg.Line.Product != "" {
			trainType = leg.Line.Product
		}

		legAnalysis = append(legAnalysis, LegAnalysis{
			Leg:        leg,
			IsCovered:  IsLegCoveredByFlatFare(leg, hasFlatFare),
			TrainType:  trainType,
			IsRegional: IsRegionalTrain(leg),
		})
	}

	var coveredLegs, uncoveredLegs []LegAnalysis
	for _, analysis := range legAnalysis {
		if analysis.IsCovered {
			coveredLegs = append(coveredLegs, analysis)
		} else {
			uncoveredLegs = append(uncoveredLegs, analysis)
		}
	}

	hasPartialCoverage := len(coveredLegs) > 0 && len(uncoveredLegs) > 0

	finalPrice := apiPrice
	originalPrice := apiPrice
	var flatFareSavings float64

	if hasFlatFare && (isFullyCovered || hasPartialCoverage) {
		if isFullyCovered {
			originalPrice = apiPrice
			if originalPrice <= 0 {
				originalPrice = flatFareMonthlyPrice
				if !hasRegionalTrains {
					originalPrice = longDistanceEstimate
				}
			}
			flatFareSavings = originalPrice
			finalPrice = 0
		} else {
			coverageRatio := float64(len(coveredLegs)) / float64(len(legs))
			if apiPrice > 0 {
				originalPrice = apiPrice / (1 - coverageRatio*0.6)
			} else {
				originalPrice = flatFareMonthlyPrice
			}
			flatFareSavings = originalPrice - apiPrice
		}
	}

	summary.TotalPrice = apiPrice
	summary.OriginalPrice = originalPrice
	summary.FlatFareSavings = flatFareSavings
	summary.FinalPrice = finalPrice
	summary.IsFullyCovered = isFullyCovered
	summary.HasPartialCoverage = hasPartialCoverage
	summary.CoveredLegs = coveredLegs
	summary.UncoveredLegs = uncoveredLegs

	return summary
}
