package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/domain"
)

// --- requests ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name          nullable.Nullable[string] `json:"name,omitempty"`
	CompanyName   nullable.Nullable[string] `json:"companyName,omitempty"`
	ContactNumber nullable.Nullable[string] `json:"contactNumber,omitempty"`
	Address       nullable.Nullable[string] `json:"address,omitempty"`
	Bio           nullable.Nullable[string] `json:"bio,omitempty"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

type createFleetRequest struct {
	Name     string `json:"name"`
	MCNumber string `json:"mcNumber"`
}

type postLoadRequest struct {
	Origin       string              `json:"origin"`
	Destination  string              `json:"destination"`
	CargoType    string              `json:"cargoType"`
	Weight       float64             `json:"weight"`
	Price        float64             `json:"price"`
	PickupDate   openapi_types.Date  `json:"pickupDate"`
	DeliveryDate *openapi_types.Date `json:"deliveryDate,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

type updateLoadStatusRequest struct {
	Status    string  `json:"status"`
	CarrierID *string `json:"carrierId,omitempty"`
}

// --- responses ---

type userDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`

	FleetID *string `json:"fleetId,omitempty"`

	CompanyName   *string `json:"companyName,omitempty"`
	ContactNumber *string `json:"contactNumber,omitempty"`
	Address       *string `json:"address,omitempty"`
	Bio           *string `json:"bio,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type fleetDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MCNumber string   `json:"mcNumber"`
	Status   string   `json:"status"`
	OwnerID  string   `json:"ownerId"`
	Drivers  []string `json:"drivers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type loadDTO struct {
	ID        string  `json:"id"`
	ShipperID string  `json:"shipperId"`
	CarrierID *string `json:"carrierId,omitempty"`

	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	CargoType   string  `json:"cargoType"`
	Weight      float64 `json:"weight"`
	Price       float64 `json:"price"`

	PickupDate   openapi_types.Date  `json:"pickupDate"`
	DeliveryDate *openapi_types.Date `json:"deliveryDate,omitempty"`

	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userFromDomain(u domain.User) userDTO {
	out := userDTO{
		ID:            string(u.ID),
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		Verified:      u.Verified,
		Active:        u.Active,
		CompanyName:   u.Profile.CompanyName,
		ContactNumber: u.Profile.ContactNumber,
		Address:       u.Profile.Address,
		Bio:           u.Profile.Bio,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.FleetID != nil {
		v := string(*u.FleetID)
		out.FleetID = &v
	}
	return out
}

func fleetFromDomain(f domain.Fleet) fleetDTO {
	drivers := make([]string, 0, len(f.Drivers))
	for _, d := range f.Drivers {
		drivers = append(drivers, string(d))
	}
	return fleetDTO{
		ID:        string(f.ID),
		Name:      f.Name,
		MCNumber:  f.MCNumber,
		Status:    string(f.Status),
		OwnerID:   string(f.Owner),
		Drivers:   drivers,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func loadFromDomain(l domain.Load) loadDTO {
	out := loadDTO{
		ID:          string(l.ID),
		ShipperID:   string(l.Shipper),
		Origin:      l.Origin,
		Destination: l.Destination,
		CargoType:   l.CargoType,
		Weight:      l.Weight,
		Price:       l.Price,
		PickupDate:  openapi_types.Date{Time: l.PickupDate},
		Status:      string(l.Status),
		Notes:       l.Notes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Carrier != nil {
		v := string(*l.Carrier)
		out.CarrierID = &v
	}
	if l.DeliveryDate != nil {
		out.DeliveryDate = &openapi_types.Date{Time: *l.DeliveryDate}
	}
	return out
}

// optionalFromNullable converts the wire tri-state into the service's
// Optional.
func optionalFromNullable(n nullable.Nullable[string]) accounts.Optional[string] {
	if !n.IsSpecified() {
		return accounts.Unspecified[string]()
	}
	if n.IsNull() {
		return accounts.Null[string]()
	}
	v, err := n.Get()
	if err != nil {
		return accounts.Unspecified[string]()
	}
	return accounts.Some(v)
}
