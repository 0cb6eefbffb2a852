package loads

import (
	"time"

	"github.com/scc-freight/freight-api/internal/domain"
)

type PostLoadInput struct {
	Origin      string
	Destination string
	CargoType   string
	Weight      float64
	Price       float64

	PickupDate   time.Time
	DeliveryDate *time.Time

	Notes *string
}

type UpdateStatusInput struct {
	Status string

	// CarrierID optionally records the assigned carrier; it is only
	// meaningful on the transition into assigned.
	CarrierID *domain.UserID
}
