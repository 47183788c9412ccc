// Package migration relocates invoice files written before tenants existed
// into their owners' namespaces. It runs once, before the server takes
// traffic.
package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/ledger"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const unknownTenant = "null"

// Report summarizes one run.
type Report struct {
	Migrated int
	Skipped  int
	// BucketRemoved is true when the legacy bucket is gone after the run.
	BucketRemoved bool
}

// legacyHeader is the part of a legacy invoice that decides ownership.
type legacyHeader struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

// Migrator moves files out of the legacy bucket.
type Migrator struct {
	store    *storage.Store
	resolver *tenant.Resolver
	bucket   storage.Namespace
	log      logrus.FieldLogger
}

// New builds a Migrator for bucket, a directory relative to the store root.
func New(store *storage.Store, resolver *tenant.Resolver, bucket string, log logrus.FieldLogger) *Migrator {
	return &Migrator{
		store:    store,
		resolver: resolver,
		bucket:   storage.Namespace(bucket),
		log:      log.WithField("component", "migration"),
	}
}

// Run processes every file in the bucket. A file whose owner cannot be
// determined, or that does not parse, is left in place. Running it against a
// missing or empty bucket does nothing.
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	var rep Report
	files, err := m.store.List(m.bucket, ".")
	if err != nil {
		return rep, err
	}
	if len(files) == 0 {
		removed, err := m.store.RemoveDirIfEmpty(m.bucket)
		rep.BucketRemoved = removed
		return rep, err
	}

	m.log.WithField("files", len(files)).Info("migrating legacy invoices")
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if m.migrate(file) {
			rep.Migrated++
		} else {
			rep.Skipped++
		}
	}

	removed, err := m.store.RemoveDirIfEmpty(m.bucket)
	if err != nil {
		return rep, err
	}
	rep.BucketRemoved = removed
	m.log.WithFields(logrus.Fields{
		"migrated":       rep.Migrated,
		"skipped":        rep.Skipped,
		"bucket_removed": removed,
	}).Info("legacy migration finished")
	return rep, nil
}

// migrate moves one file and reports whether it did.
func (m *Migrator) migrate(file string) bool {
	log := m.log.WithField("file", file)

	stem := strings.TrimSuffix(file, ".json")
	if stem == file || !ledger.ValidFilename(stem) {
		log.Warn("skipping file with unexpected name")
		return false
	}

	var hdr legacyHeader
	if err := m.store.ReadJSON(m.bucket, file, &hdr); err != nil {
		log.WithError(err).Warn("skipping unreadable legacy invoice")
		return false
	}

	owner, ok := m.owner(hdr, stem)
	if !ok {
		log.Warn("could not determine owning tenant, left in place")
		return false
	}
	ns, err := m.resolver.Resolve(owner)
	if err != nil {
		log.WithField("tenant", owner).Warn("owner is not a valid tenant id, left in place")
		return false
	}
	if err := m.resolver.Provision(ns); err != nil {
		log.WithError(err).Error("could not provision owning tenant")
		return false
	}

	err = m.store.Move(m.bucket, file, ns.Storage(), ledger.MirrorName(stem))
	switch {
	case err == nil:
		log.WithField("tenant", owner).Info("legacy invoice migrated")
		return true
	case errors.Is(err, apperr.ErrConflict):
		log.WithField("tenant", owner).Warn("tenant already holds this invoice, left in place")
	default:
		log.WithError(err).Error("legacy invoice not moved")
	}
	return false
}

// owner prefers an id embedded in the document. Failing that it looks for an
// existing tenant named in an invoice_<tenant>_<rest> filename, longest match
// first, since tenant ids may themselves contain underscores.
func (m *Migrator) owner(hdr legacyHeader, stem string) (string, bool) {
	for _, id := range []string{hdr.UserID, hdr.TenantID} {
		if id != "" && id != unknownTenant {
			return id, true
		}
	}

	parts := strings.Split(stem, "_")
	if len(parts) < 3 || parts[0] != "invoice" {
		return "", false
	}
	for end := len(parts) - 1; end >= 2; end-- {
		candidate := strings.Join(parts[1:end], "_")
		if candidate == unknownTenant || !tenant.ValidID(candidate) {
			continue
		}
		ok, err := m.resolver.Exists(candidate)
		if err != nil {
			m.log.WithError(err).Warn("tenant lookup failed")
			return "", false
		}
		if ok {
			return candidate, true
		}
	}
	return "", false
}
