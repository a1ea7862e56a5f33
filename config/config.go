// Package config provides the sources the controller reads its temperature band from.
package config

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/alittlebrighter/bandstat"
)

// ParseBand reads a band from a line of whitespace separated values: the first is the
// minimum temperature and the second the maximum. Anything after them is ignored. It returns
// nil when the line holds fewer than two values or either one is not a number.
func ParseBand(line string) *bandstat.Band {
	values := strings.Fields(line)
	if len(values) < 2 {
		log.Warn().Str("line", line).Msg("Did not enter correct config values")
		return nil
	}

	minTemp, err := strconv.ParseFloat(values[0], 64)
	if err != nil {
		log.Warn().Err(err).Str("line", line).Msg("Failed to convert min temp to a number")
		return nil
	}

	maxTemp, err := strconv.ParseFloat(values[1], 64)
	if err != nil {
		log.Warn().Err(err).Str("line", line).Msg("Failed to convert max temp to a number")
		return nil
	}

	return &bandstat.Band{Min: minTemp, Max: maxTemp}
}
