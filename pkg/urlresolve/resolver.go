// Package urlresolve turns a shared booking site link into the canonical
// origin/destination/time parameters a journey search needs.
package urlresolve

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// JourneyDetails are the search parameters recovered from a booking site URL
type JourneyDetails struct {
	FromStation   string `json:"fromStation"`
	FromStationID string `json:"fromStationId"`
	ToStation     string `json:"toStation"`
	ToStationID   string `json:"toStationId"`

	Date  string `json:"date"`
	Time  string `json:"time"`
	Class string `json:"class"`
}

type Resolver struct {
	httpClient *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Resolve follows the redirects behind a shared link and extracts the
// journey details from the final URL. When the link cannot be fetched the
// original URL is parsed directly as a fallback.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*JourneyDetails, error) {
	finalURL := rawURL

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := r.httpClient.Do(request)
	if err != nil {
		log.Debug().Err(err).Msg("Shared link fetch failed, parsing original URL directly")
	} else {
		response.Body.Close()
		finalURL = response.Request.URL.String()
	}

	return ExtractJourneyDetails(finalURL)
}

var stationIDPattern = regexp.MustCompile(`@L=(\d+)`)
var stationNamePattern = regexp.MustCompile(`@O=([^@]+)`)

var fragmentParameterPatterns = map[string]*regexp.Regexp{
	"soid": regexp.MustCompile(`soid=([^&]+)`),
	"zoid": regexp.MustCompile(`zoid=([^&]+)`),
	"hd":   regexp.MustCompile(`hd=([^&]+)`),
	"ht":   regexp.MustCompile(`ht=([^&]+)`),
	"kl":   regexp.MustCompile(`kl=([^&]+)`),
}

// ExtractJourneyDetails pulls the station, date, time and class parameters
// out of a booking site URL's fragment
func ExtractJourneyDetails(rawURL string) (*JourneyDetails, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	fragment := parsed.EscapedFragment()
	if fragment == "" {
		return nil, errors.New("URL carries no journey parameters")
	}

	parameters := map[string]string{}
	for name, pattern := range fragmentParameterPatterns {
		match := pattern.FindStringSubmatch(fragment)
		if match == nil {
			continue
		}

		value, err := url.QueryUnescape(match[1])
		if err != nil {
			value = match[1]
		}

		parameters[name] = value
	}

	details := &JourneyDetails{
		Class: parameters["kl"],
	}

	if soid := parameters["soid"]; soid != "" {
		details.FromStationID = extractStationID(soid)
		details.FromStation = extractStationName(soid)
	}

	if zoid := parameters["zoid"]; zoid != "" {
		details.ToStationID = extractStationID(zoid)
		details.ToStation = extractStationName(zoid)
	}

	if dateValue := parameters["hd"]; dateValue != "" {
		if strings.Contains(dateValue, "T") {
			dateParts := strings.SplitN(dateValue, "T", 2)
			details.Date = dateParts[0]
			details.Time = strings.TrimSuffix(dateParts[1], ":00")
		} else {
			details.Date = dateValue
		}
	}

	if details.Time == "" && parameters["ht"] != "" {
		details.Time = parameters["ht"]
	}

	if details.FromStationID == "" && details.ToStationID == "" {
		return nil, errors.New("URL carries no station identifiers")
	}

	return details, nil
}

func extractStationID(blob string) string {
	match := stationIDPattern.FindStringSubmatch(blob)
	if match == nil {
		return ""
	}

	return match[1]
}

func extractStationName(blob string) string {
	match := stationNamePattern.FindStringSubmatch(blob)
	if match != nil {
		return strings.TrimSpace(strings.ReplaceAll(match[1], "+", " "))
	}

	namePart := strings.SplitN(blob, "@L=", 2)[0]

	return strings.TrimSpace(strings.ReplaceAll(namePart, "+", " "))
}
