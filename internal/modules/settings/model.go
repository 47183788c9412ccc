package settings

// StoreSettings is the per-tenant display and templating record. A save
// replaces it whole.
type StoreSettings struct {
	StoreName               string `json:"storeName"`
	StoreAddress            string `json:"storeAddress"`
	StorePhone              string `json:"storePhone"`
	StoreEmail              string `json:"storeEmail" validate:"omitempty,email"`
	StoreFooter             string `json:"storeFooter"`
	StoreLogo               string `json:"storeLogo,omitempty"`
	StoreTagline            string `json:"storeTagline"`
	WhatsappMessageTemplate string `json:"whatsappMessageTemplate"`
	Layout                  string `json:"layout,omitempty" validate:"omitempty,oneof=classic compact thermal"`
}

// Defaults is what a new tenant starts with.
func Defaults() StoreSettings {
	return StoreSettings{
		StoreName:               "Toko Saya",
		StoreAddress:            "Jl. Contoh No. 123",
		StorePhone:              "08123456789",
		StoreEmail:              "toko@example.com",
		StoreFooter:             "Terima kasih telah berbelanja di toko kami!",
		StoreTagline:            "Jual Eceran Harga Grosir",
		WhatsappMessageTemplate: "Halo {{customerName}}, berikut adalah nota transaksi Anda dari {{storeName}}:\n\n{{notaLink}}\n\nTerima kasih!",
		Layout:                  "classic",
	}
}

// WithDefaults fills empty fields from Defaults. Used when the settings are
// shown on a public invoice page.
func (s StoreSettings) WithDefaults() StoreSettings {
	d := Defaults()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.StoreName, d.StoreName)
	fill(&s.StoreAddress, d.StoreAddress)
	fill(&s.StorePhone, d.StorePhone)
	fill(&s.StoreEmail, d.StoreEmail)
	fill(&s.StoreFooter, d.StoreFooter)
	fill(&s.StoreTagline, d.StoreTagline)
	fill(&s.WhatsappMessageTemplate, d.WhatsappMessageTemplate)
	fill(&s.Layout, d.Layout)
	return s
}

// PublicSettings is the subset safe to serve without authentication.
type PublicSettings struct {
	StoreName    string `json:"storeName"`
	StoreAddress string `json:"storeAddress"`
	StorePhone   string `json:"storePhone"`
	StoreFooter  string `json:"storeFooter"`
	StoreTagline string `json:"storeTagline"`
	Layout       string `json:"layout"`
}

// UploadLogoRequest carries a base64 image, optionally as a data URL.
type UploadLogoRequest struct {
	LogoData string `json:"logoData" validate:"required"`
}
