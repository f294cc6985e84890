package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/feedshop/internal/config"
	"github.com/jafarshop/feedshop/internal/domain"
)

// flexID accepts ids sent as JSON strings or numbers
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// number accepts numeric fields sent as JSON numbers, strings, "" or null
type number struct {
	decimal.NullDecimal
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		n.Valid = false
		return nil
	}
	return n.NullDecimal.UnmarshalJSON(b)
}

func intOf(nums ...number) int {
	for _, n := range nums {
		if n.Valid {
			return int(n.Decimal.IntPart())
		}
	}
	return 0
}

func floatOf(n number) float64 {
	if !n.Valid {
		return 0
	}
	return n.Decimal.InexactFloat64()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// firstImage reads an images field holding URLs or {url} objects
func firstImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return firstNonEmpty(urls...)
	}
	var objs []struct {
		URL string `json:"url"`
		Src string `json:"src"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		for _, o := range objs {
			if u := firstNonEmpty(o.URL, o.Src); u != "" {
				return u
			}
		}
	}
	return ""
}

type remoteVariant struct {
	ID       flexID `json:"id"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Material string `json:"material"`
	SKU      string `json:"sku"`
}

type remoteProduct struct {
	ID            flexID          `json:"id"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Price         number          `json:"price"`
	SalePrice     number          `json:"sale_price"`
	StockQuantity number          `json:"stock_quantity"`
	Stock         number          `json:"stock"`
	Rating        number          `json:"rating"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	Thumbnail     string          `json:"thumbnail"`
	Images        json.RawMessage `json:"images"`
	Sold          number          `json:"sold"`
	SalesCount    number          `json:"sales_count"`
	ShopID        flexID          `json:"shop_id"`
	Variants      []remoteVariant `json:"variants"`
}

type remotePost struct {
	ID           flexID   `json:"id"`
	Caption      string   `json:"caption"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	VideoURL     string   `json:"video_url"`
	Video        string   `json:"video"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Thumbnail    string   `json:"thumbnail"`
	AuthorID     flexID   `json:"author_id"`
	UserID       flexID   `json:"user_id"`
	ShopID       flexID   `json:"shop_id"`
	ProductIDs   []flexID `json:"product_ids"`
	Views        number   `json:"views"`
	ViewCount    number   `json:"view_count"`
	Likes        number   `json:"likes"`
	LikeCount    number   `json:"like_count"`
	Comments     number   `json:"comments"`
	CommentCount number   `json:"comment_count"`
	CreatedAt    string   `json:"created_at"`
}

type remoteShop struct {
	ID            flexID `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Logo          string `json:"logo"`
	Description   string `json:"description"`
	Followers     number `json:"followers"`
	FollowerCount number `json:"follower_count"`
	Rating        number `json:"rating"`
}

type remoteUser struct {
	ID          flexID `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
	Avatar      string `json:"avatar"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

type remoteViews struct {
	Views     number `json:"views"`
	ViewCount number `json:"view_count"`
}

// normalizer maps remote schemas to the local shapes
type normalizer struct {
	rate         decimal.Decimal
	precision    int32
	currency     string
	defaultImage string
}

func newNormalizer(cfg config.CatalogConfig) normalizer {
	rate := cfg.CurrencyRate
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(1)
	}
	return normalizer{
		rate:         rate,
		precision:    cfg.CurrencyPrecision,
		currency:     cfg.CurrencyCode,
		defaultImage: cfg.DefaultImageURL,
	}
}

func (n normalizer) convert(d decimal.Decimal) decimal.Decimal {
	return d.Mul(n.rate).Round(n.precision)
}

func (n normalizer) image(candidates ...string) string {
	if img := firstNonEmpty(candidates...); img != "" {
		return img
	}
	return n.defaultImage
}

func (n normalizer) product(r remoteProduct) domain.Product {
	p := domain.Product{
		ID:          string(r.ID),
		Name:        firstNonEmpty(r.Name, r.Title),
		Price:       n.convert(r.Price.Decimal),
		Currency:    n.currency,
		Stock:       intOf(r.StockQuantity, r.Stock),
		Rating:      floatOf(r.Rating),
		Description: r.Description,
		ImageURL:    n.image(r.Image, r.Thumbnail, firstImage(r.Images)),
		SalesCount:  intOf(r.Sold, r.SalesCount),
		ShopID:      string(r.ShopID),
	}
	if r.SalePrice.Valid && r.SalePrice.Decimal.IsPositive() {
		p.SalePrice = decimal.NewNullDecimal(n.convert(r.SalePrice.Decimal))
	}
	for _, v := range r.Variants {
		p.Variants = append(p.Variants, domain.Variant{
			ID:       string(v.ID),
			Color:    v.Color,
			Size:     v.Size,
			Material: v.Material,
			SKU:      v.SKU,
		})
	}
	return p
}

func (n normalizer) post(r remotePost) domain.Post {
	p := domain.Post{
		ID:           string(r.ID),
		Caption:      firstNonEmpty(r.Caption, r.Title, r.Description),
		VideoURL:     firstNonEmpty(r.VideoURL, r.Video),
		ThumbnailURL: n.image(r.ThumbnailURL, r.Thumbnail),
		AuthorID:     firstNonEmpty(string(r.AuthorID), string(r.UserID)),
		ShopID:       string(r.ShopID),
		Views:        intOf(r.Views, r.ViewCount),
		Likes:        intOf(r.Likes, r.LikeCount),
		Comments:     intOf(r.Comments, r.CommentCount),
	}
	for _, id := range r.ProductIDs {
		p.ProductIDs = append(p.ProductIDs, string(id))
	}
	if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		p.CreatedAt = ts.UTC()
	}
	return p
}

func (n normalizer) shop(r remoteShop) domain.Shop {
	return domain.Shop{
		ID:          string(r.ID),
		Name:        r.Name,
		AvatarURL:   n.image(r.Avatar, r.Logo),
		Description: r.Description,
		Followers:   intOf(r.Followers, r.FollowerCount),
		Rating:      floatOf(r.Rating),
	}
}

func (n normalizer) user(r remoteUser) domain.User {
	return domain.User{
		ID:          string(r.ID),
		Username:    r.Username,
		DisplayName: firstNonEmpty(r.DisplayName, r.FullName, r.Name, r.Username),
		AvatarURL:   n.image(r.AvatarURL, r.Avatar),
		Bio:         r.Bio,
	}
}
