package weather

import "errors"

var (
	// ErrLocationNotFound means geocoding resolved no match for a city
	// name. Fatal for the request that named the city.
	ErrLocationNotFound = errors.New("location not found")

	// ErrUpstreamUnavailable marks a provider call that failed in a way
	// callers should treat as "no data from this source": transport
	// errors, non-success statuses, or a payload missing required fields.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
