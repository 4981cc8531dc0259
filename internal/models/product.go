package models

import "time"

// Product is a catalog entry.
type Product struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SKU              string    `gorm:"column:sku;uniqueIndex;not null;size:64" json:"sku" yaml:"sku"`
	Name             string    `gorm:"size:255;not null;index" json:"name" yaml:"name"`
	Category         string    `gorm:"size:100;not null;default:General;index" json:"category" yaml:"category"`
	Price            float64   `gorm:"not null" json:"price" yaml:"price"`
	MRP              float64   `gorm:"column:mrp" json:"mrp" yaml:"mrp"`
	Discount         string    `gorm:"size:50" json:"discount" yaml:"discount"`
	URL              string    `gorm:"type:text" json:"url" yaml:"url"`
	ImageURL         string    `gorm:"type:text" json:"image_url" yaml:"image_url"`
	Points           []string  `gorm:"serializer:json" json:"points" yaml:"points"`
	Rating           float64   `json:"rating" yaml:"rating"`
	Reviews          int       `json:"reviews" yaml:"reviews"`
	CarbonFootprint  float64   `gorm:"not null" json:"carbon_footprint" yaml:"carbon_footprint"`
	EcoScore         float64   `gorm:"not null" json:"eco_score" yaml:"eco_score"`
	IsEcoFriendly    bool      `gorm:"not null" json:"is_eco_friendly" yaml:"is_eco_friendly"`
	GroupBuyEligible bool      `gorm:"not null" json:"group_buy_eligible" yaml:"group_buy_eligible"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"-"`
}

// TableName specifies the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// Snapshot captures the fields copied into carts and orders.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Name:            p.Name,
		Price:           p.Price,
		Category:        p.Category,
		ImageURL:        p.ImageURL,
		CarbonFootprint: p.CarbonFootprint,
		EcoScore:        p.EcoScore,
		IsEcoFriendly:   p.IsEcoFriendly,
	}
}

// ProductSnapshot is a point-in-time copy of a product.
type ProductSnapshot struct {
	Name            string  `gorm:"size:255" json:"name"`
	Price           float64 `json:"price"`
	Category        string  `gorm:"size:100" json:"category"`
	ImageURL        string  `gorm:"type:text" json:"image_url"`
	CarbonFootprint float64 `json:"carbon_footprint"`
	EcoScore        float64 `json:"eco_score"`
	IsEcoFriendly   bool    `json:"is_eco_friendly"`
}

// CartItem is one line of a user's cart.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	UserID    uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   ProductSnapshot `gorm:"embedded;embeddedPrefix:product_" json:"product"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
}

// TableName specifies the table name for CartItem model.
func (CartItem) TableName() string {
	return "cart_items"
}
