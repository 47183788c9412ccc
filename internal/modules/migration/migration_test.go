package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/nota-backend/internal/logger"
	"github.com/georgemunganga/nota-backend/internal/modules/ledger"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const bucket = "invoice/null"

type fixture struct {
	root     string
	store    *storage.Store
	resolver *tenant.Resolver
	m        *Migrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := storage.New(root)
	require.NoError(t, err)
	resolver := tenant.NewResolver(store, logger.Discard(), ledger.Seed)
	return &fixture{
		root:     root,
		store:    store,
		resolver: resolver,
		m:        New(store, resolver, bucket, logger.Discard()),
	}
}

func (f *fixture) legacy(t *testing.T, name, content string) {
	t.Helper()
	dir := filepath.Join(f.root, filepath.FromSlash(bucket))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func (f *fixture) bucketExists(t *testing.T) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(bucket)))
	return err == nil
}

func TestRun_NoBucket(t *testing.T) {
	f := newFixture(t)

	rep, err := f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{BucketRemoved: true}, rep)

	rep, err = f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{BucketRemoved: true}, rep, "a repeat run is a no-op")
}

func TestRun_EmbeddedOwner(t *testing.T) {
	f := newFixture(t)
	f.legacy(t, "invoice_null_budi-1.json", `{"userId":"user_1","customerName":"Budi","total":20000}`)

	rep, err := f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Migrated)
	assert.Equal(t, 0, rep.Skipped)
	assert.True(t, rep.BucketRemoved)
	assert.False(t, f.bucketExists(t))

	ns, err := f.resolver.Resolve("user_1")
	require.NoError(t, err)
	doc, err := ledger.NewFileMirror(f.store).Get(ns, "invoice_null_budi-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", doc.CustomerName)
	assert.Equal(t, 20000.0, doc.Total)

	rep, err = f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Migrated)
}

func TestRun_OwnerFromFilename(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.ForIdentity(tenant.Identity{TenantID: "user_1712"})
	require.NoError(t, err)
	f.legacy(t, "invoice_user_1712_budi-santoso-99.json", `{"customerName":"Budi"}`)

	rep, err := f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Migrated)

	ok, err := f.store.Exists(storage.Namespace("tenants/user_1712"), "invoices/invoice_user_1712_budi-santoso-99.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_SkipsWhatItCannotPlace(t *testing.T) {
	f := newFixture(t)
	f.legacy(t, "invoice_null_x_1.json", `{"userId":"null"}`)
	f.legacy(t, "invoice_ghost_2.json", `{}`)
	f.legacy(t, "broken.json", `{not json`)
	f.legacy(t, "notes.txt", `hello`)
	f.legacy(t, "invoice_evil_3.json", `{"userId":"../escape"}`)

	rep, err := f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Migrated)
	assert.Equal(t, 5, rep.Skipped)
	assert.False(t, rep.BucketRemoved)
	assert.True(t, f.bucketExists(t))

	ok, err := f.resolver.Exists("ghost")
	require.NoError(t, err)
	assert.False(t, ok, "filename guesses never create tenants")
}

func TestRun_ConflictLeavesFileInPlace(t *testing.T) {
	f := newFixture(t)
	ns, err := f.resolver.ForIdentity(tenant.Identity{TenantID: "user_1"})
	require.NoError(t, err)
	require.NoError(t, f.store.WriteJSON(ns.Storage(), ledger.MirrorName("invoice_user_1_a"), map[string]string{"customerName": "kept"}))
	f.legacy(t, "invoice_user_1_a.json", `{"userId":"user_1","customerName":"legacy"}`)

	rep, err := f.m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)

	doc, err := ledger.NewFileMirror(f.store).Get(ns, "invoice_user_1_a")
	require.NoError(t, err)
	assert.Equal(t, "kept", doc.CustomerName)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.legacy(t, "invoice_null_a.json", `{"userId":"user_1"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, f.bucketExists(t))
}
