package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmarieta/chatarra/internal/attachment"
	"github.com/dmarieta/chatarra/internal/http/auth"
	"github.com/dmarieta/chatarra/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.save)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

type payloadRequest struct {
	Ref         string `json:"ref,omitempty"`
	Data        []byte `json:"data,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

type lineItemRequest struct {
	Name        string           `json:"name"`
	WeightGrams *int64           `json:"weight_grams,omitempty"`
	PieceCount  *int64           `json:"piece_count,omitempty"`
	UnitPrice   int64            `json:"unit_price"`
	Images      []payloadRequest `json:"images,omitempty"`
}

type saveTransactionRequest struct {
	ID           string                   `json:"id,omitempty"` // empty opens a new session
	Kind         transaction.Kind         `json:"kind"`
	Status       transaction.Status       `json:"status,omitempty"`
	SessionType  transaction.SessionType  `json:"session_type"`
	Expenses     int64                    `json:"expenses"`
	Employee     string                   `json:"employee"`
	CustomerName string                   `json:"customer_name,omitempty"`
	CustomerKind transaction.CustomerKind `json:"customer_kind,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Timestamp    *time.Time               `json:"timestamp,omitempty"`
	Items        []lineItemRequest        `json:"items"`
	Attachments  []payloadRequest         `json:"attachments,omitempty"`
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req saveTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.svc.Begin(r.Context(), transaction.BeginParams{
		ID:          req.ID,
		Kind:        req.Kind,
		SessionType: req.SessionType,
		Employee:    req.Employee,
		Location:    req.Location,
	})

	if req.Status != "" {
		tx.Status = req.Status
	}

	tx.Expenses = req.Expenses
	tx.CustomerName = req.CustomerName
	tx.CustomerKind = req.CustomerKind

	if req.Timestamp != nil {
		tx.Timestamp = *req.Timestamp
	}

	tx.Attachments = toPayloads(req.Attachments)

	for _, item := range req.Items {
		tx.LineItems = append(tx.LineItems, transaction.LineItem{
			Name:        item.Name,
			WeightGrams: item.WeightGrams,
			PieceCount:  item.PieceCount,
			UnitPrice:   item.UnitPrice,
			Images:      toPayloads(item.Images),
		})
	}

	created, err := h.svc.Save(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := transaction.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("kind"); s != "" {
		kind := transaction.Kind(s)
		filter.Kind = &kind
	}

	if s := r.URL.Query().Get("employee"); s != "" {
		employee := s
		filter.Employee = &employee
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Status == transaction.StatusForPayment {
		switch auth.Role(r.Context()) {
		case "manager", "owner":
		default:
			http.Error(w, "advancing to for_payment requires an authorized role", http.StatusForbidden)
			return
		}
	}

	if err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPayloads(reqs []payloadRequest) []attachment.Payload {
	payloads := make([]attachment.Payload, len(reqs))
	for i, p := range reqs {
		payloads[i] = attachment.Payload{
			Ref:         p.Ref,
			Data:        p.Data,
			ContentType: p.ContentType,
		}
	}

	return payloads
}

// writeError maps the engine's error taxonomy onto status codes. Anything
// unclassified is the generic "could not save" the caller must not read
// more into.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, transaction.ErrIllegalTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	default:
		http.Error(w, "could not save", http.StatusInternalServerError)
	}
}
