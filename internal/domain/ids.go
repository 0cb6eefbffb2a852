package domain

// UserID is an internal identifier for a user record.
type UserID string

// FleetID is an internal identifier for a fleet record.
type FleetID string

// LoadID is an internal identifier for a load record.
type LoadID string
