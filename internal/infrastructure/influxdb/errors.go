package influxdb

import "errors"

var (
	// ErrConnectionFailed is returned by Connect when the server cannot be
	// pinged or reports itself unhealthy.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when the influxdb section is off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
