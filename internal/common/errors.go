package common

import "errors"

var (
	// ErrInvalidInput is returned when a required query parameter is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamUnavailable covers network failures and non-2xx answers from a provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrProviderMisconfigured means a provider-side dependency is unusable (missing or rejected key).
	ErrProviderMisconfigured = errors.New("provider misconfigured")
)
