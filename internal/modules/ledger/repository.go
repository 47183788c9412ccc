package ledger

import "github.com/georgemunganga/nota-backend/internal/modules/tenant"

// Repository defines data access for a tenant's ledger document.
type Repository interface {
	// Lock serializes ledger mutations of one tenant. The ledger and its
	// mirrors are written under the same lock.
	Lock(ns tenant.Namespace) (unlock func())
	Load(ns tenant.Namespace) ([]*Transaction, error)
	Save(ns tenant.Namespace, txs []*Transaction) error
	// MaxInvoiceNumber returns the highest invoice number in the ledger.
	MaxInvoiceNumber(ns tenant.Namespace) (int, error)
}

// MirrorRepository maps filename to one invoice document file.
type MirrorRepository interface {
	Put(ns tenant.Namespace, doc *InvoiceDocument) error
	Get(ns tenant.Namespace, filename string) (*InvoiceDocument, error)
	Delete(ns tenant.Namespace, filename string) error
}
