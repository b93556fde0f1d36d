package employee

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmarieta/chatarra/internal/employee"
)

type Handler struct {
	svc *employee.Service
}

func NewHandler(svc *employee.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/advances/{id}/settle", h.settleAdvance)
}

func (h *Handler) settleAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid advance id", http.StatusBadRequest)
		return
	}

	if err := h.svc.SettleAdvance(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
