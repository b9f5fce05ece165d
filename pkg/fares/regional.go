package fares

import (
	"regexp"
	"strings"

	"github.com/splitfare/splitfare/pkg/journey"
	"golang.org/x/exp/slices"
)

var regionalProducts = []string{
	"regional",
	"regionalbahn",
	"regionalexpress",
	"sbahn",
	"suburban",
}

var regionalLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^re\s*\d+`),
	regexp.MustCompile(`(?i)^rb\s*\d+`),
	regexp.MustCompile(`(?i)^s\s*\d+`),
	regexp.MustCompile(`(?i)^s-bahn`),
}

// IsRegionalTrain reports whether a leg is operated by a regional service
func IsRegionalTrain(leg *journey.Leg) bool {
	if leg == nil || leg.Walking || leg.Line == nil {
		return false
	}

	product := strings.ToLower(leg.Line.Product)
	if product != "" && slices.Contains(regionalProducts, product) {
		return true
	}

	lineName := strings.ToLower(leg.Line.Name)
	for _, pattern := range regionalLinePatterns {
		if pattern.MatchString(lineName) {
			return true
		}
	}

	return false
}

var flixTrainPattern = regexp.MustCompile(`FLX|FLIXTRAIN`)

// IsFlixTrain reports whether a leg is a FlixTrain service, which is never
// covered by the flat fare ticket
func IsFlixTrain(leg *journey.Leg) bool {
	if leg == nil || leg.Line == nil {
		return false
	}

	name := strings.ToUpper(leg.Line.Name)
	product := strings.ToUpper(leg.Line.Product)

	return flixTrainPattern.MatchString(name + product)
}
