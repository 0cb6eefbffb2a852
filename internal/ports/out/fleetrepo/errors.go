package fleetrepo

import "errors"

var (
	// ErrNotFound indicates the requested fleet does not exist.
	ErrNotFound = errors.New("fleet not found")

	// ErrNameTaken indicates a fleet already exists with the provided name.
	ErrNameTaken = errors.New("fleet name already taken")

	// ErrAlreadyExists indicates a fleet already exists with the provided ID.
	ErrAlreadyExists = errors.New("fleet already exists")

	// ErrDriverAlreadyInFleet indicates the driver is already in the
	// target fleet's driver set.
	ErrDriverAlreadyInFleet = errors.New("driver already in fleet")

	// ErrDriverInOtherFleet indicates the driver's membership mirror points
	// at a different fleet.
	ErrDriverInOtherFleet = errors.New("driver belongs to another fleet")
)
