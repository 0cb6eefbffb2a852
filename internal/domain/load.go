package domain

import "time"

type LoadStatus string

const (
	LoadStatusPosted    LoadStatus = "posted"
	LoadStatusAssigned  LoadStatus = "assigned"
	LoadStatusInTransit LoadStatus = "in_transit"
	LoadStatusDelivered LoadStatus = "delivered"
	LoadStatusCancelled LoadStatus = "cancelled"
)

// ParseLoadStatus validates a status string against the canonical set.
func ParseLoadStatus(s string) (LoadStatus, bool) {
	switch LoadStatus(s) {
	case LoadStatusPosted, LoadStatusAssigned, LoadStatusInTransit,
		LoadStatusDelivered, LoadStatusCancelled:
		return LoadStatus(s), true
	}
	return "", false
}

// loadTransitions is the lifecycle graph: forward-only along
// posted → assigned → in_transit → delivered, with cancellation reachable
// from every non-terminal state. Delivered and cancelled are terminal.
var loadTransitions = map[LoadStatus][]LoadStatus{
	LoadStatusPosted:    {LoadStatusAssigned, LoadStatusCancelled},
	LoadStatusAssigned:  {LoadStatusInTransit, LoadStatusCancelled},
	LoadStatusInTransit: {LoadStatusDelivered, LoadStatusCancelled},
	LoadStatusDelivered: nil,
	LoadStatusCancelled: nil,
}

// CanTransitionTo reports whether next is a legal edge from s.
func (s LoadStatus) CanTransitionTo(next LoadStatus) bool {
	for _, n := range loadTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s LoadStatus) Terminal() bool {
	return len(loadTransitions[s]) == 0
}

// Load is a shippable job offered by a shipper and tracked to delivery or
// cancellation. Carrier is nil until the load is assigned.
type Load struct {
	ID      LoadID
	Shipper UserID
	Carrier *UserID

	Origin      string
	Destination string
	CargoType   string
	Weight      float64
	Price       float64

	PickupDate   time.Time
	DeliveryDate *time.Time

	Status LoadStatus
	Notes  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
