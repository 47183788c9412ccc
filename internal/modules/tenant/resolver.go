package tenant

import (
	"context"
	"sync"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// Seed is a document every tenant namespace starts with.
type Seed struct {
	Name    string
	Default func() interface{}
	// Derive, when set, builds the document from what the namespace already
	// holds instead of Default. On error the seed is skipped and the owning
	// module creates the document on first use.
	Derive func(ns Namespace) (interface{}, error)
}

// Resolver hands out namespaces and provisions them on first touch.
type Resolver struct {
	store *storage.Store
	seeds []Seed
	log   logrus.FieldLogger

	provisioned sync.Map // tenant id -> struct{}
}

// NewResolver builds a resolver that seeds every new namespace with seeds.
func NewResolver(store *storage.Store, log logrus.FieldLogger, seeds ...Seed) *Resolver {
	return &Resolver{store: store, seeds: seeds, log: log}
}

// Resolve validates tenantID and returns its namespace without provisioning.
// Used by read paths that must not create anything, such as public links.
func (r *Resolver) Resolve(tenantID string) (Namespace, error) {
	if !ValidID(tenantID) {
		return Namespace{}, apperr.Unauthorized("unknown tenant")
	}
	return Namespace{tenantID: tenantID}, nil
}

// ForIdentity returns the caller's namespace, provisioning it once per
// process.
func (r *Resolver) ForIdentity(id Identity) (Namespace, error) {
	ns, err := r.Resolve(id.TenantID)
	if err != nil {
		return Namespace{}, err
	}
	if _, done := r.provisioned.Load(ns.tenantID); done {
		return ns, nil
	}
	if err := r.Provision(ns); err != nil {
		return Namespace{}, err
	}
	return ns, nil
}

// Authorize returns the caller's namespace if target names it, and refuses
// otherwise. Every request that carries a tenant id in its path goes through
// here.
func (r *Resolver) Authorize(caller Identity, target string) (Namespace, error) {
	if target != caller.TenantID {
		r.log.WithFields(logrus.Fields{
			"tenant": caller.TenantID,
			"target": target,
		}).Warn("cross-tenant access refused")
		return Namespace{}, apperr.Unauthorized("access to another tenant is not allowed")
	}
	return r.ForIdentity(caller)
}

// FromContext returns the namespace of the identity attached to ctx.
func (r *Resolver) FromContext(ctx context.Context) (Namespace, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Namespace{}, apperr.Unauthorized("no verified identity")
	}
	return r.ForIdentity(id)
}

// AuthorizeContext is Authorize for the identity attached to ctx.
func (r *Resolver) AuthorizeContext(ctx context.Context, target string) (Namespace, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Namespace{}, apperr.Unauthorized("no verified identity")
	}
	return r.Authorize(id, target)
}

// Provision writes every missing seed document. Existing documents are left
// alone, so calling it on every login is safe.
func (r *Resolver) Provision(ns Namespace) error {
	sns := ns.Storage()
	if err := r.store.EnsureDir(sns, "invoices"); err != nil {
		return err
	}
	for _, seed := range r.seeds {
		seed := seed
		err := r.store.WithLock(sns, seed.Name, func() error {
			ok, err := r.store.Exists(sns, seed.Name)
			if err != nil || ok {
				return err
			}
			if seed.Derive == nil {
				return r.store.WriteJSON(sns, seed.Name, seed.Default())
			}
			doc, err := seed.Derive(ns)
			if err != nil {
				r.log.WithFields(logrus.Fields{
					"tenant": ns.tenantID,
					"doc":    seed.Name,
				}).WithError(err).Warn("seed not derived, left for first use")
				return nil
			}
			return r.store.WriteJSON(sns, seed.Name, doc)
		})
		if err != nil {
			return err
		}
	}
	if _, loaded := r.provisioned.LoadOrStore(ns.tenantID, struct{}{}); !loaded {
		r.log.WithField("tenant", ns.tenantID).Debug("tenant namespace provisioned")
	}
	return nil
}

// Exists reports whether tenantID already has a namespace on disk.
func (r *Resolver) Exists(tenantID string) (bool, error) {
	ns, err := r.Resolve(tenantID)
	if err != nil {
		return false, nil
	}
	return r.store.Exists(ns.Storage(), ".")
}

// Tenants lists the ids of every namespace on disk.
func (r *Resolver) Tenants() ([]string, error) {
	names, err := r.store.ListDirs(storage.Namespace(tenantsDir), ".")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		if ValidID(n) {
			ids = append(ids, n)
		}
	}
	return ids, nil
}
