package auth

import (
	"errors"
	"strings"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

// SystemNamespace holds documents that belong to no tenant.
const SystemNamespace storage.Namespace = "system"

const usersDoc = "users.json"

// Repository defines account storage.
type Repository interface {
	FindByUsername(username string) (*Account, error)
	Get(tenantID string) (*Account, error)
	// Create stores acc and fails with Conflict if the username is taken.
	Create(acc *Account) error
	SetPasswordHash(tenantID, hash string) error
}

type fileRepo struct{ store *storage.Store }

// NewFileRepository keeps all accounts in one document keyed by tenant id.
func NewFileRepository(store *storage.Store) Repository { return &fileRepo{store: store} }

func (r *fileRepo) load() (map[string]*Account, error) {
	accounts := map[string]*Account{}
	err := r.store.ReadJSON(SystemNamespace, usersDoc, &accounts)
	if errors.Is(err, apperr.ErrNotFound) {
		return map[string]*Account{}, nil
	}
	if err != nil {
		return nil, apperr.AsStorage(err)
	}
	return accounts, nil
}

func (r *fileRepo) FindByUsername(username string) (*Account, error) {
	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	for id, acc := range accounts {
		if strings.EqualFold(acc.Username, username) {
			acc.TenantID = id
			return acc, nil
		}
	}
	return nil, apperr.NotFound("account not found")
}

func (r *fileRepo) Get(tenantID string) (*Account, error) {
	accounts, err := r.load()
	if err != nil {
		return nil, err
	}
	acc, ok := accounts[tenantID]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	acc.TenantID = tenantID
	return acc, nil
}

func (r *fileRepo) Create(acc *Account) error {
	return r.store.WithLock(SystemNamespace, usersDoc, func() error {
		accounts, err := r.load()
		if err != nil {
			return err
		}
		for _, existing := range accounts {
			if strings.EqualFold(existing.Username, acc.Username) {
				return apperr.Conflict("username is already taken")
			}
		}
		if _, ok := accounts[acc.TenantID]; ok {
			return apperr.Conflict("account already exists")
		}
		accounts[acc.TenantID] = acc
		return r.store.WriteJSON(SystemNamespace, usersDoc, accounts)
	})
}

func (r *fileRepo) SetPasswordHash(tenantID, hash string) error {
	return r.store.WithLock(SystemNamespace, usersDoc, func() error {
		accounts, err := r.load()
		if err != nil {
			return err
		}
		acc, ok := accounts[tenantID]
		if !ok {
			return apperr.NotFound("account not found")
		}
		acc.PasswordHash = hash
		return r.store.WriteJSON(SystemNamespace, usersDoc, accounts)
	})
}
