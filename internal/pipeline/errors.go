package pipeline

import "errors"

var (
	// ErrWatchLimitExceeded means the owner already watches the maximum
	// number of accounts.
	ErrWatchLimitExceeded = errors.New("watch limit reached")

	// ErrAlreadyWatched means an active watch for the account exists.
	ErrAlreadyWatched = errors.New("account is already watched")

	// ErrNotWatched means no active watch exists for the account.
	ErrNotWatched = errors.New("account is not watched")
)
