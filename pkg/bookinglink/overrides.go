package bookinglink

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/util"
	"gopkg.in/yaml.v3"
)

// Some provider station ids resolve to the wrong place on the booking site.
// Links for those stations fall back to the name only search.
var problematicStationIDs = map[string]string{
	"8002235": "Senden",
}

type stationOverridesFile struct {
	ProblematicStationIDs map[string]string `yaml:"problematic_station_ids"`
}

// LoadStationOverrides merges additional known bad station id mappings from
// the YAML file named by SPLITFARE_STATION_OVERRIDES
func LoadStationOverrides() error {
	env := util.GetEnvironmentVariables()

	path := env["SPLITFARE_STATION_OVERRIDES"]
	if path == "" {
		return nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overrides stationOverridesFile
	if err := yaml.Unmarshal(contents, &overrides); err != nil {
		return err
	}

	for stationID, name := range overrides.ProblematicStationIDs {
		problematicStationIDs[stationID] = name
	}

	log.Info().Int("count", len(overrides.ProblematicStationIDs)).Msg("Loaded station override list")

	return nil
}

func shouldUseStationID(stationID string, stationName string) bool {
	if stationID == "" || stationName == "" {
		return false
	}

	problematicName, found := problematicStationIDs[stationID]
	if found && !strings.Contains(strings.ToLower(stationName), strings.ToLower(problematicName)) {
		log.Warn().
			Str("stationID", stationID).
			Str("stationName", stationName).
			Str("mapsTo", problematicName).
			Msg("Skipping problematic station id")

		return false
	}

	return true
}
