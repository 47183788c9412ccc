package settings

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

const maxLogoBytes = 2 << 20

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Service defines store settings business logic.
type Service interface {
	GetSettings(ctx context.Context, ns tenant.Namespace) (StoreSettings, error)
	SaveSettings(ctx context.Context, ns tenant.Namespace, s StoreSettings) (StoreSettings, error)
	PublicSettings(ctx context.Context, ns tenant.Namespace) (PublicSettings, error)
	UploadLogo(ctx context.Context, ns tenant.Namespace, req UploadLogoRequest) (string, error)
	GetLogo(ctx context.Context, ns tenant.Namespace) ([]byte, string, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) Service {
	return &service{repo: repo, validate: validator.New(), log: log}
}

func (s *service) GetSettings(ctx context.Context, ns tenant.Namespace) (StoreSettings, error) {
	st, err := s.repo.Get(ns)
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return Defaults(), nil
	}
	return st, err
}

func (s *service) SaveSettings(ctx context.Context, ns tenant.Namespace, st StoreSettings) (StoreSettings, error) {
	if err := s.validate.Struct(st); err != nil {
		return StoreSettings{}, apperr.FromValidation(err)
	}
	// storeLogo is owned by UploadLogo.
	saved, err := s.repo.Update(ns, func(cur *StoreSettings) {
		logo := cur.StoreLogo
		*cur = st
		cur.StoreLogo = logo
	})
	if err != nil {
		return StoreSettings{}, err
	}
	s.log.WithField("tenant", ns.TenantID()).Info("settings saved")
	return saved, nil
}

func (s *service) PublicSettings(ctx context.Context, ns tenant.Namespace) (PublicSettings, error) {
	st, err := s.GetSettings(ctx, ns)
	if err != nil {
		return PublicSettings{}, err
	}
	st = st.WithDefaults()
	return PublicSettings{
		StoreName:    st.StoreName,
		StoreAddress: st.StoreAddress,
		StorePhone:   st.StorePhone,
		StoreFooter:  st.StoreFooter,
		StoreTagline: st.StoreTagline,
		Layout:       st.Layout,
	}, nil
}

func (s *service) UploadLogo(ctx context.Context, ns tenant.Namespace, req UploadLogoRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", apperr.FromValidation(err)
	}
	raw := dataURLPrefix.ReplaceAllString(strings.TrimSpace(req.LogoData), "")
	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", apperr.InvalidInput("logoData is not valid base64")
	}
	if len(img) == 0 || len(img) > maxLogoBytes {
		return "", apperr.InvalidInput("logo must be between 1 byte and %d bytes", maxLogoBytes)
	}
	if mt := mimetype.Detect(img); !strings.HasPrefix(mt.String(), "image/") {
		return "", apperr.InvalidInput("logo must be an image")
	}

	if err := s.repo.SaveLogo(ns, img); err != nil {
		return "", err
	}
	url := LogoURL(ns.TenantID())
	if _, err := s.repo.Update(ns, func(st *StoreSettings) { st.StoreLogo = url }); err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"tenant": ns.TenantID(), "bytes": len(img)}).Info("logo uploaded")
	return url, nil
}

func (s *service) GetLogo(ctx context.Context, ns tenant.Namespace) ([]byte, string, error) {
	img, err := s.repo.GetLogo(ns)
	if err != nil {
		return nil, "", err
	}
	return img, mimetype.Detect(img).String(), nil
}

// LogoURL is the authenticated path of a tenant's logo.
func LogoURL(tenantID string) string {
	return fmt.Sprintf("/api/v1/tenants/%s/logo", tenantID)
}
