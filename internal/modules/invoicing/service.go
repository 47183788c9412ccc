// Package invoicing issues per-tenant sequential invoice numbers.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

const counterDoc = "counter.json"

// Counter is the persisted state: the number the next sale will receive.
type Counter struct {
	Next int `json:"next"`
}

// FloorFunc returns the highest invoice number already recorded for ns. It is
// consulted only when the counter document is missing or unreadable.
type FloorFunc func(ns tenant.Namespace) (int, error)

// NewSeed provisions the counter one past floor, so a namespace whose counter
// was lost resumes after the highest recorded number. A nil floor starts at 1.
func NewSeed(floor FloorFunc) tenant.Seed {
	return tenant.Seed{
		Name:    counterDoc,
		Default: func() interface{} { return Counter{Next: 1} },
		Derive: func(ns tenant.Namespace) (interface{}, error) {
			if floor == nil {
				return Counter{Next: 1}, nil
			}
			highest, err := floor(ns)
			if err != nil {
				return nil, err
			}
			return Counter{Next: highest + 1}, nil
		},
	}
}

// Service defines invoice numbering.
type Service interface {
	// NextInvoiceNumber burns and returns the next number. The advanced
	// counter is on disk before the number is returned.
	NextInvoiceNumber(ctx context.Context, ns tenant.Namespace) (int, error)
	// PeekInvoiceNumber returns the number the next sale would get without
	// burning it.
	PeekInvoiceNumber(ctx context.Context, ns tenant.Namespace) (int, error)
}

type service struct {
	store *storage.Store
	floor FloorFunc
	log   logrus.FieldLogger
}

// NewService builds a file-backed numbering service. floor may be nil.
func NewService(store *storage.Store, floor FloorFunc, log logrus.FieldLogger) Service {
	return &service{store: store, floor: floor, log: log}
}

func (s *service) NextInvoiceNumber(ctx context.Context, ns tenant.Namespace) (int, error) {
	var issued int
	err := s.store.WithLock(ns.Storage(), counterDoc, func() error {
		c, err := s.load(ns)
		if err != nil {
			return err
		}
		issued = c.Next
		return s.store.WriteJSON(ns.Storage(), counterDoc, Counter{Next: issued + 1})
	})
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"tenant": ns.TenantID(), "number": issued}).Debug("invoice number issued")
	return issued, nil
}

func (s *service) PeekInvoiceNumber(ctx context.Context, ns tenant.Namespace) (int, error) {
	unlock := s.store.Lock(ns.Storage(), counterDoc)
	defer unlock()
	c, err := s.load(ns)
	if err != nil {
		return 0, err
	}
	return c.Next, nil
}

// load reads the counter, rebuilding it from the floor when the document is
// missing or corrupt. Caller holds the counter lock.
func (s *service) load(ns tenant.Namespace) (Counter, error) {
	var c Counter
	err := s.store.ReadJSON(ns.Storage(), counterDoc, &c)
	switch {
	case err == nil && c.Next >= 1:
		return c, nil
	case err == nil, errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrCorruptDocument):
		// rebuild below
	default:
		return Counter{}, err
	}

	highest := 0
	if s.floor != nil {
		h, ferr := s.floor(ns)
		if ferr != nil {
			return Counter{}, ferr
		}
		highest = h
	}
	s.log.WithFields(logrus.Fields{
		"tenant": ns.TenantID(),
		"next":   highest + 1,
	}).Warn("invoice counter missing or unreadable, rebuilt from ledger")
	return Counter{Next: highest + 1}, nil
}

// Format renders n as INV/NNNN. Numbers past 9999 grow in width.
func Format(n int) string {
	return fmt.Sprintf("INV/%04d", n)
}

// Parse extracts the numeric part of a formatted invoice number. It also
// accepts the older INV-N form.
func Parse(s string) (int, bool) {
	var digits string
	switch {
	case strings.HasPrefix(s, "INV/"):
		digits = strings.TrimPrefix(s, "INV/")
	case strings.HasPrefix(s, "INV-"):
		digits = strings.TrimPrefix(s, "INV-")
	default:
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
