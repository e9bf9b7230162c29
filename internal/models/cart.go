// internal/models/cart.go
package models

// CartItem is the client-held cart line shape. It is never persisted as-is;
// checkout derives gateway amounts from it and fulfillment turns it into
// OrderItem and License rows.
type CartItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"productId" validate:"required"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Price        float64 `json:"price" validate:"gte=0"`
	LicenseTier  string  `json:"licenseTier"`
	DownloadLink string  `json:"downloadLink,omitempty"`
	PaymentLink  string  `json:"paymentLink,omitempty"`
}
