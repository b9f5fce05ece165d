package split

import (
	"testing"
	"time"

	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeAt(hour int, minute int) time.Time {
	return time.Date(2026, 9, 14, hour, minute, 0, 0, time.UTC)
}

func stopover(id string, name string, arrival time.Time, departure time.Time) journey.Stopover {
	return journey.Stopover{
		Stop:      &journey.Station{ID: id, Name: name},
		Arrival:   &arrival,
		Departure: &departure,
	}
}

func berlinMunichJourney() *journey.Journey {
	price := &journey.Price{Amount: 89, Currency: "EUR"}

	return &journey.Journey{
		Price: price,
		Legs: []journey.Leg{
			{
				Origin:      &journey.Station{ID: "8011160", Name: "Berlin Hbf"},
				Destination: &journey.Station{ID: "8000261", Name: "München Hbf"},
				Departure:   timeAt(8, 0),
				Arrival:     timeAt(12, 0),
				Line:        &journey.Line{Name: "ICE 501", Product: "nationalexpress"},
				Stopovers: []journey.Stopover{
					stopover("8011160", "Berlin Hbf", timeAt(8, 0), timeAt(8, 0)),
					stopover("8000115", "Fulda", timeAt(9, 30), timeAt(9, 32)),
					stopover("8000284", "Nürnberg Hbf", timeAt(10, 45), timeAt(10, 47)),
					stopover("8000261", "München Hbf", timeAt(12, 0), timeAt(12, 0)),
				},
			},
		},
	}
}

func TestExtractCandidatesExcludesEndpoints(t *testing.T) {
	candidates := ExtractCandidates(berlinMunichJourney())

	require.Len(t, candidates, 2)
	assert.Equal(t, "Fulda", candidates[0].Station.Name)
	assert.Equal(t, "Nürnberg Hbf", candidates[1].Station.Name)

	for _, candidate := range candidates {
		assert.NotEqual(t, "8011160", candidate.Station.ID)
		assert.NotEqual(t, "8000261", candidate.Station.ID)
	}
}

func TestExtractCandidatesDeduplicatesByStationID(t *testing.T) {
	original := berlinMunichJourney()

	// A looping route visits Fulda a second time with later times
	original.Legs[0].Stopovers = append(original.Legs[0].Stopovers[:3],
		stopover("8000115", "Fulda", timeAt(11, 0), timeAt(11, 2)),
		original.Legs[0].Stopovers[3],
	)

	candidates := ExtractCandidates(original)

	require.Len(t, candidates, 2)
	assert.Equal(t, "8000115", candidates[0].Station.ID)
	// First occurrence wins
	assert.Equal(t, timeAt(9, 32), candidates[0].Departure)
}

func TestExtractCandidatesSkipsWalkingLegs(t *testing.T) {
	departure := timeAt(9, 40)
	arrival := timeAt(9, 35)

	original := &journey.Journey{
		Legs: []journey.Leg{
			berlinMunichJourney().Legs[0],
			{
				Origin:      &journey.Station{ID: "walk-a", Name: "München Hbf"},
				Destination: &journey.Station{ID: "walk-b", Name: "München Hbf Gl.27-36"},
				Departure:   arrival,
				Arrival:     departure,
				Walking:     true,
				Stopovers: []journey.Stopover{
					stopover("walk-x", "Somewhere", arrival, departure),
				},
			},
			{
				Origin:      &journey.Station{ID: "walk-b", Name: "München Hbf Gl.27-36"},
				Destination: &journey.Station{ID: "8000262", Name: "München Ost"},
				Departure:   timeAt(9, 45),
				Arrival:     timeAt(9, 55),
				Line:        &journey.Line{Name: "S 3", Product: "suburban"},
			},
		},
	}

	candidates := ExtractCandidates(original)

	for _, candidate := range candidates {
		assert.NotEqual(t, "walk-x", candidate.Station.ID)
	}
}

func TestExtractCandidatesSkipsIncompleteStopovers(t *testing.T) {
	original := berlinMunichJourney()
	original.Legs[0].Stopovers[1].Arrival = nil

	candidates := ExtractCandidates(original)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Nürnberg Hbf", candidates[0].Station.Name)
}

func TestExtractCandidatesEmptyJourney(t *testing.T) {
	candidates := ExtractCandidates(&journey.Journey{})

	assert.Empty(t, candidates)
}
