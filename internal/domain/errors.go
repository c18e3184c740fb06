package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure: no infrastructure dependency.

var (
	// Progress errors
	ErrUnknownAction      = errors.New("unknown action kind")
	ErrNegativeExperience = errors.New("experience amount must not be negative")
	ErrInvalidDate        = errors.New("invalid calendar date")
	ErrBadgeNotFound      = errors.New("badge not found")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Library errors
	ErrFavoriteNotFound  = errors.New("favorite not found")
	ErrDailyLimitReached = errors.New("daily free limit reached")
	ErrEmptyTopic        = errors.New("topic must not be empty")
)
