package ledger

import "time"

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Item is one order line. Subtotal is always Price * Quantity.
type Item struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Transaction is one ledger entry. Filename is assigned at creation and is
// the stable handle for the invoice mirror and shared links.
type Transaction struct {
	ID              string    `json:"id"`
	InvoiceNumber   string    `json:"invoiceNumber"`
	Filename        string    `json:"filename"`
	TenantID        string    `json:"userId,omitempty"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerAddress string    `json:"customerAddress"`
	Items           []Item    `json:"items"`
	Total           float64   `json:"total"`
	Notes           string    `json:"notes"`
	Date            time.Time `json:"date"`
	Status          Status    `json:"status"`
}

// InvoiceDocument is the standalone persisted form of a Transaction, read by
// the rendering path without loading the ledger.
type InvoiceDocument = Transaction

// ItemInput is an order line as sent by the client. Subtotals are computed
// by the store.
type ItemInput struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0,cents"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
}

// CreateTransactionRequest is the draft of a new sale.
type CreateTransactionRequest struct {
	CustomerName    string      `json:"customerName" validate:"required"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress"`
	Items           []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes           string      `json:"notes"`
	Status          Status      `json:"status,omitempty" validate:"omitempty,oneof=completed pending cancelled"`
}

// UpdateTransactionRequest edits a sale. Nil fields are left unchanged; a
// non-nil field replaces the stored value.
type UpdateTransactionRequest struct {
	CustomerName    *string     `json:"customerName,omitempty"`
	CustomerPhone   *string     `json:"customerPhone,omitempty"`
	CustomerAddress *string     `json:"customerAddress,omitempty"`
	Items           []ItemInput `json:"items,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	Status          *Status     `json:"status,omitempty"`
}

// Presentable drops records lacking both id and filename, which only
// partially written legacy data produces.
func Presentable(txs []*Transaction) []*Transaction {
	out := make([]*Transaction, 0, len(txs))
	for _, t := range txs {
		if t == nil || (t.ID == "" && t.Filename == "") {
			continue
		}
		out = append(out, t)
	}
	return out
}
