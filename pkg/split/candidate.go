package split

import (
	"time"

	"github.com/splitfare/splitfare/pkg/journey"
)

// Candidate is an intermediate station considered as a possible split point.
// Candidates are derived fresh from a journey for each analysis and never
// cached.
type Candidate struct {
	Station journey.Station `json:"station"`

	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`

	Line *journey.Line `json:"trainLine,omitempty"`

	LegIndex  int `json:"legIndex"`
	StopIndex int `json:"stopIndex"`
}

// ExtractCandidates scans a journey's interior stopovers and returns the
// unique split candidates in discovery order. The journey's own origin and
// destination are never candidates, and repeated visits to the same station
// keep only the first occurrence - resplitting at the same physical stop
// twice adds no information.
//
// A journey without legs yields an empty list.
func ExtractCandidates(original *journey.Journey) []Candidate {
	var candidates []Candidate
	seenStations := map[string]bool{}

	for legIndex, leg := range original.Legs {
		if leg.Walking || len(leg.Stopovers) == 0 {
			continue
		}

		for stopIndex, stopover := range leg.Stopovers {
			if legIndex == 0 && stopIndex == 0 {
				continue
			}
			if legIndex == len(original.Legs)-1 && stopIndex == len(leg.Stopovers)-1 {
				continue
			}

			if stopover.Arrival == nil || stopover.Departure == nil || stopover.Stop == nil {
				continue
			}

			if seenStations[stopover.Stop.ID] {
				continue
			}
			seenStations[stopover.Stop.ID] = true

			candidates = append(candidates, Candidate{
				Station: journey.Station{
					ID:   stopover.Stop.ID,
					Name: stopover.Stop.Name,
				},
				Arrival:   *stopover.Arrival,
				Departure: *stopover.Departure,
				Line:      leg.Line,
				LegIndex:  legIndex,
				StopIndex: stopIndex,
			})
		}
	}

	return candidates
}
