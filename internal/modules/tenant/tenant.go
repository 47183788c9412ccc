// Package tenant maps verified identities to isolated storage namespaces.
package tenant

import (
	"context"
	"path"
	"regexp"

	"github.com/georgemunganga/nota-backend/internal/storage"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidID reports whether id can name a tenant namespace.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// Identity is the caller as verified by the auth collaborator. The store
// trusts it without further checks.
type Identity struct {
	TenantID string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Namespace is one tenant's storage root. Only the Resolver hands these out.
type Namespace struct {
	tenantID string
}

func (n Namespace) TenantID() string { return n.tenantID }

// Storage returns the namespace directory relative to the store root.
func (n Namespace) Storage() storage.Namespace {
	return storage.Namespace(path.Join(tenantsDir, n.tenantID))
}

const tenantsDir = "tenants"

type ctxKey struct{}

// WithIdentity attaches a verified identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity attached by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
