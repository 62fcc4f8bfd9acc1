package router

import "errors"

// ErrNoValidRoute reports that no candidate path survived simulation.
var ErrNoValidRoute = errors.New("router: no valid route")

// ErrLimitPriceNotMet reports that candidates completed but none satisfied
// the order's limit.
var ErrLimitPriceNotMet = errors.New("router: limit price not met")

// ErrTimeout reports that the deadline expired before any candidate
// completed.
var ErrTimeout = errors.New("router: request timed out")
