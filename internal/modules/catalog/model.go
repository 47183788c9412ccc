package catalog

// Product is one entry of a tenant's catalog. The catalog is stored and
// replaced as one document.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description"`
}

// ProductInput is a product as sent by a client. ID is honoured only by
// ReplaceProducts, and only when it is not already taken in the same request.
type ProductInput struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string  `json:"name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
}
