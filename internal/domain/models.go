package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a specific purchasable configuration of a product
type Variant struct {
	ID       string `json:"id"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Material string `json:"material,omitempty"`
	SKU      string `json:"sku,omitempty"`
}

// CartItem is a line in the cart. Identity is (ProductID, VariantID); an
// empty VariantID means the product has no variant.
type CartItem struct {
	ProductID string              `json:"product_id"`
	VariantID string              `json:"variant_id,omitempty"`
	Name      string              `json:"name"`
	Price     decimal.Decimal     `json:"price"`
	SalePrice decimal.NullDecimal `json:"sale_price"`
	ImageURL  string              `json:"image_url"`
	Quantity  int                 `json:"quantity"`
	Variant   *Variant            `json:"variant,omitempty"`
	ShopID    string              `json:"shop_id,omitempty"`
}

// UnitPrice returns the sale price when present, the list price otherwise
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.SalePrice.Valid {
		return i.SalePrice.Decimal
	}
	return i.Price
}

// LineTotal returns UnitPrice multiplied by Quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SameLine reports whether the item has the given identity
func (i CartItem) SameLine(productID, variantID string) bool {
	return i.ProductID == productID && i.VariantID == variantID
}

// Product is the normalized product shape served to the feed
type Product struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	SalePrice   decimal.NullDecimal `json:"sale_price"`
	Currency    string              `json:"currency"`
	Stock       int                 `json:"stock_quantity"`
	Rating      float64             `json:"rating"`
	Description string              `json:"description"`
	ImageURL    string              `json:"image_url"`
	SalesCount  int                 `json:"sales_count"`
	ShopID      string              `json:"shop_id,omitempty"`
	Variants    []Variant           `json:"variants,omitempty"`
}

// Post is a normalized video post
type Post struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	AuthorID     string    `json:"author_id"`
	ShopID       string    `json:"shop_id,omitempty"`
	ProductIDs   []string  `json:"product_ids,omitempty"`
	Views        int       `json:"views"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Shop is a normalized storefront
type Shop struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	Description string  `json:"description"`
	Followers   int     `json:"followers"`
	Rating      float64 `json:"rating"`
}

// User is a normalized user profile
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

// Order is a checkout created from the cart or the buy-now slot
type Order struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	UserID    string          `json:"user_id,omitempty"`
	Source    CheckoutSource  `json:"source"`
	Status    OrderStatus     `json:"status"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem is a line of an order
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ShopID    string          `json:"shop_id,omitempty"`
}
