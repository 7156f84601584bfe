package utils

import "errors"

// Common application errors used across services.
var (
	ErrUpstreamUnavailable = errors.New("UPSTREAM_UNAVAILABLE")
	ErrUpstreamMalformed   = errors.New("UPSTREAM_MALFORMED")
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrGroupNotFound       = errors.New("GROUP_NOT_FOUND")
)
