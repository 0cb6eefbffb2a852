package fleets

type CreateFleetInput struct {
	Name     string
	MCNumber string
}
