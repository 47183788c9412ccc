package ledger

import (
	"path"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

// InvoicesDir is the mirror directory inside a tenant namespace.
const InvoicesDir = "invoices"

type fileMirror struct{ store *storage.Store }

// NewFileMirror keeps one JSON file per invoice under InvoicesDir.
func NewFileMirror(store *storage.Store) MirrorRepository { return &fileMirror{store: store} }

// MirrorName is the document name of filename inside a namespace.
func MirrorName(filename string) string {
	return path.Join(InvoicesDir, filename+".json")
}

func (m *fileMirror) Put(ns tenant.Namespace, doc *InvoiceDocument) error {
	if !ValidFilename(doc.Filename) {
		return apperr.InvalidInput("invalid invoice filename")
	}
	return m.store.WriteJSON(ns.Storage(), MirrorName(doc.Filename), doc)
}

func (m *fileMirror) Get(ns tenant.Namespace, filename string) (*InvoiceDocument, error) {
	if !ValidFilename(filename) {
		return nil, apperr.NotFound("invoice not found")
	}
	doc := &InvoiceDocument{}
	if err := m.store.ReadJSON(ns.Storage(), MirrorName(filename), doc); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.NotFound("invoice not found")
		}
		return nil, err
	}
	return doc, nil
}

func (m *fileMirror) Delete(ns tenant.Namespace, filename string) error {
	if !ValidFilename(filename) {
		return apperr.NotFound("invoice not found")
	}
	return m.store.Delete(ns.Storage(), MirrorName(filename))
}
