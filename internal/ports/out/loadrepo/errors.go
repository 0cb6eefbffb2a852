package loadrepo

import "errors"

var (
	// ErrNotFound indicates the requested load does not exist.
	ErrNotFound = errors.New("load not found")

	// ErrAlreadyExists indicates a load already exists with the provided ID.
	ErrAlreadyExists = errors.New("load already exists")

	// ErrInvalidTransition indicates the requested status change is not an
	// edge in the load lifecycle graph.
	ErrInvalidTransition = errors.New("invalid load status transition")
)
