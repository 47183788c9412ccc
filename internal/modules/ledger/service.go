package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/invoicing"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Service defines the transaction ledger. Every mutation writes the ledger
// first and the invoice mirror second, under one per-tenant lock.
type Service interface {
	CreateTransaction(ctx context.Context, ns tenant.Namespace, req CreateTransactionRequest) (*Transaction, error)
	UpdateTransaction(ctx context.Context, ns tenant.Namespace, filename string, req UpdateTransactionRequest) (*Transaction, error)
	DeleteTransaction(ctx context.Context, ns tenant.Namespace, filename string) error
	ListTransactions(ctx context.Context, ns tenant.Namespace) ([]*Transaction, error)
	GetInvoiceDocument(ctx context.Context, ns tenant.Namespace, filename string) (*InvoiceDocument, error)
	// RebuildMirrors rewrites every mirror from the ledger and returns how
	// many were written.
	RebuildMirrors(ctx context.Context, ns tenant.Namespace) (int, error)
}

type service struct {
	repo     Repository
	mirror   MirrorRepository
	numbers  invoicing.Service
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithClock replaces time.Now. Tests use it to force filename collisions.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// cents accepts amounts with at most two decimal places.
func cents(fl validator.FieldLevel) bool {
	return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
}

func NewService(repo Repository, mirror MirrorRepository, numbers invoicing.Service, log logrus.FieldLogger, opts ...Option) Service {
	v := validator.New()
	_ = v.RegisterValidation("cents", cents)
	s := &service{
		repo:     repo,
		mirror:   mirror,
		numbers:  numbers,
		validate: v,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) CreateTransaction(ctx context.Context, ns tenant.Namespace, req CreateTransactionRequest) (*Transaction, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return nil, apperr.InvalidInput("customerName is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.InvalidInput("items must not be empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}
	items, total := priceItems(req.Items)
	status := req.Status
	if status == "" {
		status = StatusCompleted
	}

	unlock := s.repo.Lock(ns)
	defer unlock()

	txs, err := s.repo.Load(ns)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	filename := NewFilename(req.CustomerName, createdAt)
	for containsFilename(txs, filename) {
		createdAt = createdAt.Add(time.Nanosecond)
		filename = NewFilename(req.CustomerName, createdAt)
	}

	number, err := s.numbers.NextInvoiceNumber(ctx, ns)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:              "tr_" + uuid.NewString(),
		InvoiceNumber:   invoicing.Format(number),
		Filename:        filename,
		TenantID:        ns.TenantID(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Items:           items,
		Total:           total,
		Notes:           req.Notes,
		Date:            createdAt.UTC(),
		Status:          status,
	}

	if err := s.repo.Save(ns, append(txs, tx)); err != nil {
		s.log.WithFields(logrus.Fields{
			"tenant":  ns.TenantID(),
			"invoice": tx.InvoiceNumber,
		}).WithError(err).Error("ledger write failed, invoice number burned")
		return nil, err
	}
	s.writeMirror(ns, tx)

	s.log.WithFields(logrus.Fields{
		"tenant":   ns.TenantID(),
		"filename": tx.Filename,
		"invoice":  tx.InvoiceNumber,
	}).Info("transaction created")
	return tx, nil
}

func (s *service) UpdateTransaction(ctx context.Context, ns tenant.Namespace, filename string, req UpdateTransactionRequest) (*Transaction, error) {
	filename = normalizeFilename(filename)
	if err := s.validatePatch(&req); err != nil {
		return nil, err
	}

	unlock := s.repo.Lock(ns)
	defer unlock()

	txs, err := s.repo.Load(ns)
	if err != nil {
		return nil, err
	}
	idx := indexOf(txs, filename)
	if idx < 0 {
		return nil, apperr.NotFound("transaction %s not found", filename)
	}

	updated := *txs[idx]
	if req.CustomerName != nil {
		updated.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		updated.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.CustomerAddress != nil {
		updated.CustomerAddress = strings.TrimSpace(*req.CustomerAddress)
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.Items != nil {
		updated.Items, updated.Total = priceItems(req.Items)
	} else {
		// keep the invariant even if the stored record predates it
		updated.Items, updated.Total = repriceItems(updated.Items)
	}
	if updated.TenantID == "" {
		updated.TenantID = ns.TenantID()
	}

	txs[idx] = &updated
	if err := s.repo.Save(ns, txs); err != nil {
		return nil, err
	}
	s.writeMirror(ns, &updated)

	s.log.WithFields(logrus.Fields{
		"tenant":   ns.TenantID(),
		"filename": filename,
	}).Info("transaction updated")
	return &updated, nil
}

func (s *service) DeleteTransaction(ctx context.Context, ns tenant.Namespace, filename string) error {
	filename = normalizeFilename(filename)

	unlock := s.repo.Lock(ns)
	defer unlock()

	txs, err := s.repo.Load(ns)
	if err != nil {
		return err
	}
	idx := indexOf(txs, filename)
	if idx < 0 {
		return apperr.NotFound("transaction %s not found", filename)
	}

	target := txs[idx]
	kept := make([]*Transaction, 0, len(txs)-1)
	for i, t := range txs {
		if i == idx || (target.ID != "" && t.ID == target.ID) {
			continue
		}
		kept = append(kept, t)
	}
	if err := s.repo.Save(ns, kept); err != nil {
		return err
	}

	if err := s.mirror.Delete(ns, filename); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.log.WithFields(logrus.Fields{
			"tenant":   ns.TenantID(),
			"filename": filename,
		}).WithError(err).Warn("invoice mirror not removed")
	}

	s.log.WithFields(logrus.Fields{
		"tenant":   ns.TenantID(),
		"filename": filename,
	}).Info("transaction deleted")
	return nil
}

func (s *service) ListTransactions(ctx context.Context, ns tenant.Namespace) ([]*Transaction, error) {
	return s.repo.Load(ns)
}

func (s *service) GetInvoiceDocument(ctx context.Context, ns tenant.Namespace, filename string) (*InvoiceDocument, error) {
	return s.mirror.Get(ns, normalizeFilename(filename))
}

func (s *service) RebuildMirrors(ctx context.Context, ns tenant.Namespace) (int, error) {
	unlock := s.repo.Lock(ns)
	defer unlock()

	txs, err := s.repo.Load(ns)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, t := range txs {
		if t == nil || !ValidFilename(t.Filename) {
			continue
		}
		if err := s.mirror.Put(ns, t); err != nil {
			return written, err
		}
		written++
	}
	s.log.WithFields(logrus.Fields{"tenant": ns.TenantID(), "count": written}).Info("invoice mirrors rebuilt")
	return written, nil
}

// writeMirror stores the mirror of tx. The ledger is already durable at this
// point and the mirror can be rebuilt from it, so a failure is logged only.
func (s *service) writeMirror(ns tenant.Namespace, tx *Transaction) {
	if err := s.mirror.Put(ns, tx); err != nil {
		s.log.WithFields(logrus.Fields{
			"tenant":   ns.TenantID(),
			"filename": tx.Filename,
		}).WithError(err).Error("invoice mirror write failed; run reindex to repair")
	}
}

func (s *service) validatePatch(req *UpdateTransactionRequest) error {
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return apperr.InvalidInput("customerName is required")
		}
		req.CustomerName = &name
	}
	if req.Items != nil {
		if len(req.Items) == 0 {
			return apperr.InvalidInput("items must not be empty")
		}
		for _, it := range req.Items {
			if err := s.validate.Struct(it); err != nil {
				return apperr.FromValidation(err)
			}
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusCompleted, StatusPending, StatusCancelled:
		default:
			return apperr.InvalidInput("invalid status %q", string(*req.Status))
		}
	}
	return nil
}

// priceItems computes subtotals and the total in decimal to avoid float
// drift. Prices are held to two places, so the stored price times quantity
// is exactly the stored subtotal.
func priceItems(in []ItemInput) ([]Item, float64) {
	items := make([]Item, 0, len(in))
	total := decimal.Zero
	for _, it := range in {
		price := decimal.NewFromFloat(it.Price).Round(2)
		sub := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(sub)
		items = append(items, Item{
			ProductID: it.ProductID,
			Name:      strings.TrimSpace(it.Name),
			Price:     price.InexactFloat64(),
			Quantity:  it.Quantity,
			Subtotal:  sub.InexactFloat64(),
		})
	}
	return items, total.Round(2).InexactFloat64()
}

func repriceItems(items []Item) ([]Item, float64) {
	in := make([]ItemInput, 0, len(items))
	for _, it := range items {
		in = append(in, ItemInput{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return priceItems(in)
}

func indexOf(txs []*Transaction, filename string) int {
	if filename == "" {
		return -1
	}
	for i, t := range txs {
		if t != nil && t.Filename == filename {
			return i
		}
	}
	return -1
}

func containsFilename(txs []*Transaction, filename string) bool {
	return indexOf(txs, filename) >= 0
}
