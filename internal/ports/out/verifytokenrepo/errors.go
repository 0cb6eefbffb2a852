package verifytokenrepo

import "errors"

var (
	// ErrNotFound indicates the token does not exist, expired, or was
	// already consumed.
	ErrNotFound = errors.New("verification token not found")

	// ErrAlreadyExists indicates a token with the same value already exists.
	ErrAlreadyExists = errors.New("verification token already exists")
)
