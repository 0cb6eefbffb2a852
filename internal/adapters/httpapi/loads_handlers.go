package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scc-freight/freight-api/internal/app/loads"
	"github.com/scc-freight/freight-api/internal/domain"
)

func (s *Server) handlePostLoad(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	var req postLoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	in := loads.PostLoadInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		CargoType:   req.CargoType,
		Weight:      req.Weight,
		Price:       req.Price,
		PickupDate:  req.PickupDate.Time,
		Notes:       req.Notes,
	}
	if req.DeliveryDate != nil {
		d := req.DeliveryDate.Time
		in.DeliveryDate = &d
	}
	l, err := s.Loads.Post(r.Context(), p.UserID, in)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"load": loadFromDomain(l)})
}

func (s *Server) handleListLoads(w http.ResponseWriter, r *http.Request) {
	ls, err := s.Loads.List(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loads": loadsFromDomain(ls)})
}

func (s *Server) handleListMyLoads(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	ls, err := s.Loads.ListMine(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loads": loadsFromDomain(ls)})
}

func (s *Server) handleUpdateLoadStatus(w http.ResponseWriter, r *http.Request) {
	var req updateLoadStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	in := loads.UpdateStatusInput{Status: req.Status}
	if req.CarrierID != nil {
		id := domain.UserID(*req.CarrierID)
		in.CarrierID = &id
	}
	l, err := s.Loads.UpdateStatus(r.Context(), domain.LoadID(chi.URLParam(r, "id")), in)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"load": loadFromDomain(l)})
}

func (s *Server) handleDeleteLoad(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	if err := s.Loads.Delete(r.Context(), p, domain.LoadID(chi.URLParam(r, "id"))); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func loadsFromDomain(ls []domain.Load) []loadDTO {
	out := make([]loadDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, loadFromDomain(l))
	}
	return out
}
