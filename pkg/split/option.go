package split

import (
	"fmt"
	"sort"

	"github.com/splitfare/splitfare/pkg/journey"
)

// Option is a split ticketing opportunity - the same physical journey bought
// as two consecutive tickets for less than the through fare
type Option struct {
	Type string `json:"type"`

	SplitStations []journey.Station  `json:"splitStations"`
	Segments      []*journey.Journey `json:"segments"`

	TotalPrice    float64 `json:"totalPrice"`
	OriginalPrice float64 `json:"originalPrice"`

	Savings           float64 `json:"savings"`
	SavingsPercentage string  `json:"savingsPercentage"`

	TrainInfo TrainInfo `json:"trainInfo"`

	// BookingLinks holds one booking site deeplink per segment, attached by
	// the API layer after analysis
	BookingLinks []string `json:"bookingLinks,omitempty"`
}

type TrainInfo struct {
	Line    string `json:"line"`
	Product string `json:"product"`
}

func newSingleSplitOption(station journey.Station, segments []*journey.Journey, totalPrice float64, originalPrice float64, line *journey.Line) *Option {
	savings := originalPrice - totalPrice

	trainInfo := TrainInfo{
		Line:    "Unknown",
		Product: "Unknown",
	}
	if line != nil {
		if line.Name != "" {
			trainInfo.Line = line.Name
		}
		if line.Product != "" {
			trainInfo.Product = line.Product
		}
	}

	return &Option{
		Type:              "same-train-single-split",
		SplitStations:     []journey.Station{station},
		Segments:          segments,
		TotalPrice:        totalPrice,
		OriginalPrice:     originalPrice,
		Savings:           savings,
		SavingsPercentage: fmt.Sprintf("%.1f", (savings/originalPrice)*100),
		TrainInfo:         trainInfo,
	}
}

// SortBySavings orders options by savings descending, biggest win first
func SortBySavings(options []*Option) {
	sort.Slice(options, func(i, j int) bool {
		return options[i].Savings > options[j].Savings
	})
}
