package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/td-studios/auth-api/internal/application/accesscode"
	"github.com/td-studios/auth-api/internal/domain"
)

// AccessCodeHandler handles the admin access code endpoints.
type AccessCodeHandler struct {
	svc accesscode.Service
}

func NewAccessCodeHandler(svc accesscode.Service) *AccessCodeHandler {
	return &AccessCodeHandler{svc: svc}
}

func (h *AccessCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if codes == nil {
		codes = []domain.AccessCode{}
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *AccessCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ac, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ac)
}

func (h *AccessCodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ac, err := h.svc.Update(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

func (h *AccessCodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "access code deleted"})
}

func (h *AccessCodeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
