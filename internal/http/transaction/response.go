package transaction

import (
	"time"

	"github.com/dmarieta/chatarra/internal/attachment"
	"github.com/dmarieta/chatarra/internal/transaction"
)

type lineItemResponse struct {
	Name        string   `json:"name"`
	WeightGrams *int64   `json:"weight_grams,omitempty"`
	PieceCount  *int64   `json:"piece_count,omitempty"`
	UnitPrice   int64    `json:"unit_price"`
	LineTotal   int64    `json:"line_total"`
	Images      []string `json:"images,omitempty"`
}

type transactionResponse struct {
	ID           string                   `json:"id"`
	Kind         transaction.Kind         `json:"kind"`
	Status       transaction.Status       `json:"status"`
	SessionType  transaction.SessionType  `json:"session_type"`
	Subtotal     int64                    `json:"subtotal"`
	Expenses     int64                    `json:"expenses"`
	Total        int64                    `json:"total"`
	Employee     string                   `json:"employee"`
	CustomerName string                   `json:"customer_name,omitempty"`
	CustomerKind transaction.CustomerKind `json:"customer_kind,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Items        []lineItemResponse       `json:"items"`
	Attachments  []string                 `json:"attachments,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
	CreatedAt    time.Time                `json:"created_at"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:           tx.ID,
		Kind:         tx.Kind,
		Status:       tx.Status,
		SessionType:  tx.SessionType,
		Subtotal:     tx.Subtotal,
		Expenses:     tx.Expenses,
		Total:        tx.Total,
		Employee:     tx.Employee,
		CustomerName: tx.CustomerName,
		CustomerKind: tx.CustomerKind,
		Location:     tx.Location,
		Attachments:  attachment.Refs(tx.Attachments),
		Timestamp:    tx.Timestamp,
		CreatedAt:    tx.CreatedAt,
		CompletedAt:  tx.CompletedAt,
	}

	resp.Items = make([]lineItemResponse, len(tx.LineItems))
	for i, item := range tx.LineItems {
		resp.Items[i] = lineItemResponse{
			Name:        item.Name,
			WeightGrams: item.WeightGrams,
			PieceCount:  item.PieceCount,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Images:      attachment.Refs(item.Images),
		}
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
