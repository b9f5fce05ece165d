package stats

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const rateLimitWindow = 1 * time.Minute
const maxRequestsPerMinute = 60

// RequestCounter tracks how many provider requests a search has made and how
// close the process is to the provider's rate limit. One counter is shared by
// all gateway calls and reset at the start of each new top level search.
type RequestCounter struct {
	mutex sync.Mutex

	total        int
	requestTimes []time.Time
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

// Increment records one provider request and returns the running total
func (c *RequestCounter) Increment(endpoint string, description string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.total += 1

	now := time.Now()
	c.requestTimes = append(c.requestTimes, now)

	var withinWindow []time.Time
	for _, requestTime := range c.requestTimes {
		if now.Sub(requestTime) < rateLimitWindow {
			withinWindow = append(withinWindow, requestTime)
		}
	}
	c.requestTimes = withinWindow

	requestLogger := log.With().
		Int("total", c.total).
		Int("window", len(c.requestTimes)).
		Str("endpoint", endpoint).
		Str("description", description).
		Logger()

	switch {
	case len(c.requestTimes) >= maxRequestsPerMinute:
		requestLogger.Warn().Msg("Provider rate limit reached")
	case len(c.requestTimes) >= maxRequestsPerMinute*8/10:
		requestLogger.Warn().Msg("Approaching provider rate limit")
	default:
		requestLogger.Debug().Msg("Provider request")
	}

	return c.total
}

func (c *RequestCounter) Total() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.total
}

// Reset starts a fresh count for a new top level search
func (c *RequestCounter) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.total = 0
	c.requestTimes = nil
}
