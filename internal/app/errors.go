package app

import "errors"

// Application-level errors. Entity-not-found and status-race errors are
// defined next to the repositories (internal/infra/database) and mail
// transport errors next to the transport interface (internal/domain/mail);
// this file holds the errors only the services themselves produce.
var (
	// ErrConfig marks malformed per-athlete settings. The scheduler skips
	// that athlete's tick; other athletes are unaffected.
	ErrConfig = errors.New("invalid athlete configuration")

	// ErrAthleteInactive means the athlete exists but has been deactivated
	// and must not be scheduled.
	ErrAthleteInactive = errors.New("athlete is not active")
)
