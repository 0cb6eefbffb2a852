package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scc-freight/freight-api/internal/app/fleets"
	"github.com/scc-freight/freight-api/internal/domain"
)

func (s *Server) handleCreateFleet(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	var req createFleetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	f, err := s.Fleets.Create(r.Context(), p.UserID, fleets.CreateFleetInput{
		Name:     req.Name,
		MCNumber: req.MCNumber,
	})
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"fleet": fleetFromDomain(f)})
}

func (s *Server) handleAddDriver(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	f, err := s.Fleets.AddDriver(r.Context(), p.UserID, domain.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fleet": fleetFromDomain(f)})
}

func (s *Server) handleRemoveDriver(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	f, err := s.Fleets.RemoveDriver(r.Context(), p.UserID, domain.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fleet": fleetFromDomain(f)})
}

func (s *Server) handleMyFleet(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	f, err := s.Fleets.MyFleet(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fleet": fleetFromDomain(f)})
}

func (s *Server) handleListFleets(w http.ResponseWriter, r *http.Request) {
	fs, err := s.Fleets.List(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]fleetDTO, 0, len(fs))
	for _, f := range fs {
		out = append(out, fleetFromDomain(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"fleets": out})
}
