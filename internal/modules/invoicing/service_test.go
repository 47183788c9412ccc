package invoicing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/georgemunganga/nota-backend/internal/logger"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, floor FloorFunc) (Service, *tenant.Resolver, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	log := logger.Discard()
	return NewService(store, floor, log), tenant.NewResolver(store, log, NewSeed(floor)), store
}

func TestNextInvoiceNumber_StrictlyIncreasing(t *testing.T) {
	svc, resolver, _ := setup(t, nil)
	ns, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)
	ctx := context.Background()

	peek, err := svc.PeekInvoiceNumber(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, 1, peek)

	prev := 0
	for i := 0; i < 5; i++ {
		n, err := svc.NextInvoiceNumber(ctx, ns)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, 5, prev)

	peek, err = svc.PeekInvoiceNumber(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, 6, peek, "peek does not burn")
	peek, err = svc.PeekInvoiceNumber(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, 6, peek)
}

func TestNextInvoiceNumber_PersistedBeforeReturn(t *testing.T) {
	svc, resolver, store := setup(t, nil)
	ns, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)

	n, err := svc.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)

	var c Counter
	require.NoError(t, store.ReadJSON(ns.Storage(), counterDoc, &c))
	assert.Equal(t, n+1, c.Next)

	// A fresh service over the same directory (a restart) continues.
	restarted := NewService(store, nil, logger.Discard())
	m, err := restarted.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)
	assert.Equal(t, n+1, m)
}

func TestNextInvoiceNumber_ConcurrentCallsNeverCollide(t *testing.T) {
	svc, resolver, _ := setup(t, nil)
	ns, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)

	const workers = 40
	var (
		mu   sync.Mutex
		seen = map[int]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.NextInvoiceNumber(context.Background(), ns)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[n], "number %d issued twice", n)
			seen[n] = true
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers)
}

func TestNextInvoiceNumber_TenantsAreIndependent(t *testing.T) {
	svc, resolver, _ := setup(t, nil)
	a, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)
	b, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_b"})
	require.NoError(t, err)

	_, err = svc.NextInvoiceNumber(context.Background(), a)
	require.NoError(t, err)
	n, err := svc.NextInvoiceNumber(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextInvoiceNumber_RebuildsFromFloor(t *testing.T) {
	recorded := 17 // highest number in the ledger
	floor := func(ns tenant.Namespace) (int, error) { return recorded, nil }
	svc, resolver, store := setup(t, floor)
	ns, err := resolver.Resolve("user_a")
	require.NoError(t, err)

	// no counter document at all
	n, err := svc.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	recorded = n

	require.NoError(t, store.WriteBytes(ns.Storage(), counterDoc, []byte("garbage")))
	n, err = svc.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)
	assert.Equal(t, 19, n)
}

func TestNewSeed_StartsAfterFloor(t *testing.T) {
	floor := func(ns tenant.Namespace) (int, error) { return 41, nil }
	svc, resolver, store := setup(t, floor)
	ns, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)

	var c Counter
	require.NoError(t, store.ReadJSON(ns.Storage(), counterDoc, &c))
	assert.Equal(t, 42, c.Next)

	n, err := svc.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestNewSeed_FloorErrorLeavesCounterToFirstUse(t *testing.T) {
	failing := true
	floor := func(ns tenant.Namespace) (int, error) {
		if failing {
			return 0, errors.New("ledger unreadable")
		}
		return 3, nil
	}
	svc, resolver, store := setup(t, floor)
	ns, err := resolver.ForIdentity(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err, "provisioning does not fail on a bad floor")

	ok, err := store.Exists(ns.Storage(), counterDoc)
	require.NoError(t, err)
	assert.False(t, ok)

	failing = false
	n, err := svc.NextInvoiceNumber(context.Background(), ns)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "INV/0001", Format(1))
	assert.Equal(t, "INV/0420", Format(420))
	assert.Equal(t, "INV/9999", Format(9999))
	assert.Equal(t, "INV/10000", Format(10000))

	n, ok := Parse("INV/0042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)
	n, ok = Parse("INV-7")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = Parse("X-1")
	assert.False(t, ok)
	_, ok = Parse("INV/abc")
	assert.False(t, ok)
}
