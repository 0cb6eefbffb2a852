package httpapi

import (
	"github.com/rs/zerolog"

	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/app/fleets"
	"github.com/scc-freight/freight-api/internal/app/loads"
)

// Server is the HTTP adapter. It decodes requests, delegates to the app
// services, and maps their typed errors onto the wire.
type Server struct {
	Accounts *accounts.Service
	Fleets   *fleets.Service
	Loads    *loads.Service

	log zerolog.Logger
}

func NewServer(accountsSvc *accounts.Service, fleetsSvc *fleets.Service, loadsSvc *loads.Service, log zerolog.Logger) *Server {
	return &Server{
		Accounts: accountsSvc,
		Fleets:   fleetsSvc,
		Loads:    loadsSvc,
		log:      log,
	}
}
