package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmarieta/chatarra/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/balance", h.balance)
	r.Get("/subtotals", h.subtotals)
	r.Get("/entries", h.list)
	r.Post("/entries", h.append)
}

// rangeFromQuery reads optional from/to date bounds, closed-open.
func rangeFromQuery(r *http.Request) ledger.Range {
	var rng ledger.Range

	if s := r.URL.Query().Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			rng.From = &t
		}
	}

	if s := r.URL.Query().Get("to"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			rng.To = &t
		}
	}

	return rng
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Balance(r.Context(), rangeFromQuery(r))
	if err != nil {
		http.Error(w, "could not compute balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(balanceResponse{Balance: balance}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type subtotalsResponse struct {
	Opening            int64 `json:"opening"`
	TransactionIncome  int64 `json:"transaction_income"`
	TransactionExpense int64 `json:"transaction_expense"`
	GeneralExpense     int64 `json:"general_expense"`
	Adjustment         int64 `json:"adjustment"`
}

func (h *Handler) subtotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Subtotals(r.Context(), rangeFromQuery(r))
	if err != nil {
		http.Error(w, "could not compute subtotals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(subtotalsResponse{
		Opening:            totals.Opening,
		TransactionIncome:  totals.TransactionIncome,
		TransactionExpense: totals.TransactionExpense,
		GeneralExpense:     totals.GeneralExpense,
		Adjustment:         totals.Adjustment,
	})
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type entryResponse struct {
	ID            string      `json:"id"`
	Kind          ledger.Kind `json:"kind"`
	Amount        int64       `json:"amount"`
	Description   string      `json:"description,omitempty"`
	Employee      string      `json:"employee,omitempty"`
	TransactionID *string     `json:"transaction_id,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context(), rangeFromQuery(r))
	if err != nil {
		http.Error(w, "could not list entries", http.StatusInternalServerError)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:            e.ID.String(),
			Kind:          e.Kind,
			Amount:        e.Amount,
			Description:   e.Description,
			Employee:      e.Employee,
			TransactionID: e.TransactionID,
			Timestamp:     e.Timestamp,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type appendEntryRequest struct {
	Kind        ledger.Kind `json:"kind"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description,omitempty"`
	Employee    string      `json:"employee,omitempty"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
}

func (h *Handler) append(w http.ResponseWriter, r *http.Request) {
	var req appendEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := ledger.AppendParams{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		Employee:    req.Employee,
	}

	if req.Timestamp != nil {
		params.Timestamp = *req.Timestamp
	}

	entry, err := h.svc.Append(r.Context(), params)
	if err != nil {
		if errors.Is(err, ledger.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "could not append entry", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(entryResponse{
		ID:          entry.ID.String(),
		Kind:        entry.Kind,
		Amount:      entry.Amount,
		Description: entry.Description,
		Employee:    entry.Employee,
		Timestamp:   entry.Timestamp,
	})
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
