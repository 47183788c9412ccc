package settings

import (
	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

const (
	settingsDoc = "settings.json"
	logoDoc     = "logo.png"
)

// Seed provisions default settings for new tenants.
var Seed = tenant.Seed{Name: settingsDoc, Default: func() interface{} { return Defaults() }}

// Repository defines data access for settings and the logo image.
type Repository interface {
	Get(ns tenant.Namespace) (StoreSettings, error)
	Save(ns tenant.Namespace, s StoreSettings) error
	// Update runs fn on the stored settings under the settings lock.
	Update(ns tenant.Namespace, fn func(*StoreSettings)) (StoreSettings, error)
	SaveLogo(ns tenant.Namespace, png []byte) error
	GetLogo(ns tenant.Namespace) ([]byte, error)
}

type fileRepo struct{ store *storage.Store }

func NewFileRepository(store *storage.Store) Repository { return &fileRepo{store: store} }

func (r *fileRepo) Get(ns tenant.Namespace) (StoreSettings, error) {
	var s StoreSettings
	if err := r.store.ReadJSON(ns.Storage(), settingsDoc, &s); err != nil {
		return StoreSettings{}, apperr.AsStorage(err)
	}
	return s, nil
}

func (r *fileRepo) Save(ns tenant.Namespace, s StoreSettings) error {
	return r.store.Put(ns.Storage(), settingsDoc, s)
}

func (r *fileRepo) Update(ns tenant.Namespace, fn func(*StoreSettings)) (StoreSettings, error) {
	var out StoreSettings
	err := r.store.WithLock(ns.Storage(), settingsDoc, func() error {
		var s StoreSettings
		err := r.store.ReadJSON(ns.Storage(), settingsDoc, &s)
		if err != nil && apperr.CodeOf(err) != apperr.CodeNotFound {
			return apperr.AsStorage(err)
		}
		if err != nil {
			s = Defaults()
		}
		fn(&s)
		out = s
		return r.store.WriteJSON(ns.Storage(), settingsDoc, s)
	})
	return out, err
}

func (r *fileRepo) SaveLogo(ns tenant.Namespace, png []byte) error {
	return r.store.WithLock(ns.Storage(), logoDoc, func() error {
		return r.store.WriteBytes(ns.Storage(), logoDoc, png)
	})
}

func (r *fileRepo) GetLogo(ns tenant.Namespace) ([]byte, error) {
	data, err := r.store.ReadBytes(ns.Storage(), logoDoc)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.NotFound("logo not found")
		}
		return nil, err
	}
	return data, nil
}
