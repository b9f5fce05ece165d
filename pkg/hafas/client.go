package hafas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/journey"
	"github.com/splitfare/splitfare/pkg/stats"
	"github.com/splitfare/splitfare/pkg/util"
)

const defaultBaseURL = "https://v6.db.transport.rest"
const defaultUserAgent = "splitfare/1.0"

const maxRetries = 3

// Client is the adapter to the external journey search provider
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	counter *stats.RequestCounter
	cache   *ResponseCache
}

func NewClient(counter *stats.RequestCounter, cache *ResponseCache) *Client {
	baseURL := defaultBaseURL

	env := util.GetEnvironmentVariables()
	if env["SPLITFARE_HAFAS_ADDRESS"] != "" {
		baseURL = env["SPLITFARE_HAFAS_ADDRESS"]
	}

	userAgent := defaultUserAgent
	if env["SPLITFARE_HAFAS_USER_AGENT"] != "" {
		userAgent = env["SPLITFARE_HAFAS_USER_AGENT"]
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		userAgent:  userAgent,
		counter:    counter,
		cache:      cache,
	}
}

type journeysResponse struct {
	Journeys []*journey.Journey `json:"journeys"`
}

// Journeys queries the provider for connections between the two stations
func (c *Client) Journeys(ctx context.Context, originID string, destinationID string, options journey.SearchOptions) ([]*journey.Journey, error) {
	requestURL := fmt.Sprintf("%s/journeys?%s", c.baseURL, buildQuery(originID, destinationID, options).Encode())

	if c.counter != nil {
		c.counter.Increment("JOURNEY_SEARCH", fmt.Sprintf("%s -> %s", originID, destinationID))
	}

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var response journeysResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode journeys response: %w", err)
	}

	return response.Journeys, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, requestURL); err == nil {
			return []byte(cached), nil
		}
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 500 * time.Millisecond

	var body []byte

	operation := func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		// Public APIs often block default Go user agents
		request.Header.Set("User-Agent", c.userAgent)

		response, err := c.httpClient.Do(request)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer response.Body.Close()

		switch response.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("transient status code: %d", response.StatusCode)
		}

		if response.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", response.StatusCode))
		}

		body, err = io.ReadAll(response.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, maxRetries), ctx))
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, requestURL, string(body)); err != nil {
			log.Debug().Err(err).Msg("Failed to cache provider response")
		}
	}

	return body, nil
}

func buildQuery(originID string, destinationID string, options journey.SearchOptions) url.Values {
	query := url.Values{}
	query.Set("from", originID)
	query.Set("to", destinationID)

	if options.Results > 0 {
		query.Set("results", strconv.Itoa(options.Results))
	}

	if options.Stopovers {
		query.Set("stopovers", "true")
	}

	if options.Departure != nil {
		query.Set("departure", options.Departure.Format(time.RFC3339))
	}

	if options.ExactTimeOnly {
		// Only fast direct connections when an exact departure was requested,
		// alternatives are noise for exact time matching
		query.Set("notOnlyFastRoutes", "false")
	}

	if options.LoyaltyCard != nil {
		query.Set("loyaltyCard", fmt.Sprintf("bahncard-%d-%d", options.LoyaltyCard.Class, options.LoyaltyCard.Discount))
	}

	if options.PassengerAge > 0 {
		query.Set("age", strconv.Itoa(options.PassengerAge))
	}

	if options.FlatFareDiscount {
		query.Set("deutschlandTicketDiscount", "true")
	}

	if options.FirstClass {
		query.Set("firstClass", "true")
	} else {
		query.Set("firstClass", "false")
	}

	return query
}
