package session

import "errors"

var (
	// ErrNotAuthorized reports a denied platform permission request.
	ErrNotAuthorized = errors.New("session: not authorized")

	// ErrInvalidSelection reports an attempt to save a selection holding
	// neither apps nor domains.
	ErrInvalidSelection = errors.New("session: selection has no apps or domains")

	// ErrFailedToCreateDefaultList wraps a repository failure while looking
	// up or creating the well-known default list.
	ErrFailedToCreateDefaultList = errors.New("session: failed to create default list")

	// ErrNoActiveSession reports that no monitoring window is running.
	ErrNoActiveSession = errors.New("session: no active session")
)
