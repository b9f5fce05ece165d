package journey

import "time"

// Station is a stop as identified by the journey provider. Identity is the
// provider id - two stations with the same id are the same physical place
// regardless of name variants.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Line holds the information about the specific train service
type Line struct {
	Name    string `json:"name"`
	Product string `json:"product,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Stopover is a point along a leg with its own arrival/departure times
type Stopover struct {
	Stop      *Station   `json:"stop"`
	Arrival   *time.Time `json:"arrival"`
	Departure *time.Time `json:"departure"`
}

// Leg is a single continuous part of a journey - one train ride or one
// walking transfer. Walking legs carry no line.
type Leg struct {
	Origin      *Station `json:"origin"`
	Destination *Station `json:"destination"`

	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`

	Line    *Line `json:"line,omitempty"`
	Walking bool  `json:"walking,omitempty"`

	Platform  string `json:"platform,omitempty"`
	Delay     *int   `json:"delay,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`

	Stopovers []Stopover `json:"stopovers,omitempty"`
}

// Journey is one complete trip proposal from an origin to a destination,
// as returned by the provider. Treated as immutable once returned.
type Journey struct {
	Legs  []Leg  `json:"legs"`
	Price *Price `json:"price,omitempty"`
}

// PriceAmount returns the through price, or 0 when the provider returned none
func (j *Journey) PriceAmount() float64 {
	if j.Price == nil {
		return 0
	}

	return j.Price.Amount
}

func (j *Journey) Origin() *Station {
	if len(j.Legs) == 0 {
		return nil
	}

	return j.Legs[0].Origin
}

func (j *Journey) Destination() *Station {
	if len(j.Legs) == 0 {
		return nil
	}

	return j.Legs[len(j.Legs)-1].Destination
}

func (j *Journey) DepartureTime() time.Time {
	if len(j.Legs) == 0 {
		return time.Time{}
	}

	return j.Legs[0].Departure
}

// LoyaltyCard is a discount card applied to every price query.
// Discount is one of 25, 50, 100.
type LoyaltyCard struct {
	Discount int `json:"discount"`
	Class    int `json:"class"`
}

// SearchOptions is the configuration bag threaded through every provider
// query. The zero value means second class, no discount.
type SearchOptions struct {
	Results   int
	Stopovers bool

	// ExactTimeOnly disables alternative route widening when a precise
	// departure was requested
	ExactTimeOnly bool

	Departure *time.Time

	LoyaltyCard      *LoyaltyCard
	PassengerAge     int
	FlatFareDiscount bool
	FirstClass       bool
}
