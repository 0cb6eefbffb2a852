package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	u, err := s.Accounts.Register(r.Context(), accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	u, err := s.Accounts.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	res, err := s.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": res.Token,
		"user":  userFromDomain(res.User),
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	u, err := s.Accounts.GetAccount(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	p := MustPrincipal(r.Context())
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	u, err := s.Accounts.UpdateMyProfile(r.Context(), p.UserID, accounts.UpdateProfileInput{
		Name:          optionalFromNullable(req.Name),
		CompanyName:   optionalFromNullable(req.CompanyName),
		ContactNumber: optionalFromNullable(req.ContactNumber),
		Address:       optionalFromNullable(req.Address),
		Bio:           optionalFromNullable(req.Bio),
	})
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.Accounts.ListUsers(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]userDTO, 0, len(us))
	for _, u := range us {
		out = append(out, userFromDomain(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	u, err := s.Accounts.ChangeRole(r.Context(), domain.UserID(chi.URLParam(r, "id")), req.Role)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userFromDomain(u)})
}
