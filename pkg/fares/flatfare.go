package fares

import (
	"strings"

	"github.com/splitfare/splitfare/pkg/journey"
)

// flatFareLongDistanceRoute is an IC/ICE corridor that the nationwide flat
// fare ticket covers despite being a long distance service
type flatFareLongDistanceRoute struct {
	Name     string
	Stations []string
	// Trains restricts coverage to specific services. "IC" matches any IC
	// that is not an ICE, "ICE" any ICE, anything else is matched as a
	// literal line name. Empty means every train on the corridor.
	Trains []string
}

var flatFareLongDistanceRoutes = []flatFareLongDistanceRoute{
	{
		Name:     "Berlin - BER - Elsterwerda",
		Stations: []string{"Berlin Hbf", "Flughafen BER Terminal 1-2", "BER", "Doberlug-Kirchhain", "Elsterwerda"},
		Trains:   []string{"IC", "ICE 1076"},
	},
	{
		Name:     "Berlin - Prenzlau",
		Stations: []string{"Berlin Südkreuz", "Berlin Spandau", "Berlin Gesundbrunnen", "Prenzlau"},
		Trains:   []string{"IC", "ICE"},
	},
	{
		Name:     "Potsdam - Berlin - Cottbus",
		Stations: []string{"Potsdam", "Berlin Hbf", "Cottbus"},
		Trains:   []string{"IC 2431", "IC 2432"},
	},
	{
		Name:     "Dresden - Freiberg - Chemnitz",
		Stations: []string{"Dresden", "Freiberg", "Chemnitz"},
	},
	{
		Name: "Dortmund - Siegen - Dillenburg",
		Stations: []string{
			"Dortmund Hbf", "Witten Hbf", "Iserlohn-Letmathe", "Altena (Westf)", "Werdohl", "Plettenberg",
			"Finnentrop", "Lennestadt-Grevenbrück", "Lennestadt-Altenhundem", "Kreuztal", "Siegen-Weidenau",
			"Siegen Hbf", "Dillenburg",
		},
		Trains: []string{
			"IC 2223", "IC 2225", "IC 2229", "IC 2323", "IC 2325", "IC 2327",
			"IC 2222", "IC 2224", "IC 2226", "IC 2320", "IC 2324", "IC 2326", "IC 2328",
		},
	},
	{
		Name: "Bremen - Oldenburg - Emden - Norddeich",
		Stations: []string{
			"Bremen Hbf", "Delmenhorst", "Hude", "Oldenburg(Oldb)Hbf", "Bad Zwischenahn",
			"Westerstede-Ocholt", "Augustfehn", "Leer(Ostfriesl)", "Emden Hbf",
		},
	},
	{
		Name:     "Rostock - Stralsund",
		Stations: []string{"Rostock", "Ribnitz-Damgarten", "Velgast", "Stralsund"},
	},
	{
		Name:     "Erfurt - Weimar - Jena - Gera",
		Stations: []string{"Erfurt", "Weimar", "Jena", "Gera"},
	},
	{
		Name:     "Stuttgart - Horb - Singen - Konstanz",
		Stations: []string{"Stuttgart", "Horb", "Singen", "Konstanz"},
	},
}

func stationOnRoute(stationName string, routeStations []string) bool {
	for _, routeStation := range routeStations {
		routeStationLower := strings.ToLower(routeStation)

		if strings.Contains(stationName, routeStationLower) || strings.Contains(routeStationLower, stationName) {
			return true
		}
	}

	return false
}

// IsLongDistanceRouteCoveredByFlatFare reports whether a long distance leg
// runs on one of the IC/ICE corridors included in the flat fare ticket
func IsLongDistanceRouteCoveredByFlatFare(leg *journey.Leg) bool {
	if leg == nil || leg.Line == nil || leg.Origin == nil || leg.Destination == nil {
		return false
	}

	product := strings.ToLower(leg.Line.Product)
	if product != "national" && product != "nationalexpress" {
		return false
	}

	originName := strings.ToLower(leg.Origin.Name)
	destinationName := strings.ToLower(leg.Destination.Name)
	lineName := strings.ToUpper(leg.Line.Name)

	for _, route := range flatFareLongDistanceRoutes {
		if !stationOnRoute(originName, route.Stations) || !stationOnRoute(destinationName, route.Stations) {
			continue
		}

		if len(route.Trains) == 0 {
			return true
		}

		for _, trainPattern := range route.Trains {
			switch trainPattern {
			case "IC":
				if strings.Contains(lineName, "IC") && !strings.Contains(lineName, "ICE") {
					return true
				}
			case "ICE":
				if strings.Contains(lineName, "ICE") {
					return true
				}
			default:
				if strings.Contains(lineName, trainPattern) {
					return true
				}
			}
		}
	}

	return false
}

// IsLegCoveredByFlatFare reports whether a single leg rides free with the
// nationwide flat fare ticket
func IsLegCoveredByFlatFare(leg *journey.Leg, hasFlatFare bool) bool {
	if !hasFlatFare {
		return false
	}
	if leg.Walking {
		return true
	}
	if leg.Line == nil || IsFlixTrain(leg) {
		return false
	}

	product := strings.ToLower(leg.Line.Product)
	if product == "national" || product == "nationalexpress" {
		return IsLongDistanceRouteCoveredByFlatFare(leg)
	}

	return true
}
