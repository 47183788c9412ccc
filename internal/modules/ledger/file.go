package ledger

import (
	"errors"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/invoicing"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const ledgerDoc = "transactions.json"

// Seed provisions an empty ledger for new tenants.
var Seed = tenant.Seed{Name: ledgerDoc, Default: func() interface{} { return []*Transaction{} }}

type fileRepo struct{ store *storage.Store }

// NewFileRepository stores the ledger as one JSON array per tenant.
func NewFileRepository(store *storage.Store) Repository { return &fileRepo{store: store} }

func (r *fileRepo) Lock(ns tenant.Namespace) func() {
	return r.store.Lock(ns.Storage(), ledgerDoc)
}

func (r *fileRepo) Load(ns tenant.Namespace) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.store.ReadJSON(ns.Storage(), ledgerDoc, &txs)
	if errors.Is(err, apperr.ErrNotFound) {
		return []*Transaction{}, nil
	}
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*Transaction{}
	}
	return txs, nil
}

func (r *fileRepo) Save(ns tenant.Namespace, txs []*Transaction) error {
	if txs == nil {
		txs = []*Transaction{}
	}
	return r.store.WriteJSON(ns.Storage(), ledgerDoc, txs)
}

func (r *fileRepo) MaxInvoiceNumber(ns tenant.Namespace) (int, error) {
	txs, err := r.Load(ns)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, t := range txs {
		if t == nil {
			continue
		}
		if n, ok := invoicing.Parse(t.InvoiceNumber); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}
