package bandstat

import "errors"

var (
	// ErrConfigRead means the band could not be fetched from its source.
	ErrConfigRead = errors.New("failed to read config")
	// ErrConfigInvalid means the source answered but held no usable band.
	ErrConfigInvalid = errors.New("failed to parse config")
	// ErrSensorUnavailable means no temperature reading could be acquired.
	ErrSensorUnavailable = errors.New("failed to read sensor data")
	// ErrActuationFailed means the modifier could not reach its target. It is only
	// returned from Update once the failure limit set by WithMaxActuationFailures is exceeded.
	ErrActuationFailed = errors.New("failed to reach target temperature")
)
