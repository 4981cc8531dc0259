package models

import "time"

// Order statuses and sources.
const (
	OrderStatusPlaced = "placed"

	OrderSourceCart   = "cart"
	OrderSourceBuyNow = "buy_now"
)

// Order is an immutable record of one purchase.
type Order struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	UserID           uint        `gorm:"not null;index" json:"user_id"`
	OrderNumber      string      `gorm:"uniqueIndex;not null;size:36" json:"order_number"`
	Items            []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount      float64     `gorm:"not null" json:"total_amount"`
	TotalEcoScore    float64     `gorm:"not null" json:"total_eco_score"`
	TotalCarbonSaved float64     `gorm:"not null" json:"total_carbon_saved"`
	MoneySaved       float64     `gorm:"not null" json:"money_saved"`
	// CarbonFootprint is an externally supplied order-level figure. When set
	// it takes precedence over TotalCarbonSaved in weekly evaluation.
	CarbonFootprint *float64  `json:"carbon_footprint,omitempty"`
	EcoScore        float64   `gorm:"not null;default:0" json:"eco_score"`
	IsEcoFriendly   bool      `gorm:"not null;default:false" json:"is_eco_friendly"`
	Status          string    `gorm:"size:20;not null" json:"status"`
	Source          string    `gorm:"size:20;not null" json:"source"`
	PlacedAt        time.Time `gorm:"not null;index" json:"placed_at"`
}

// TableName specifies the table name for Order model.
func (Order) TableName() string {
	return "orders"
}

// IsEcoQualifying reports whether the order counts toward challenges: the
// order-level flag, a positive order eco score, or any qualifying item.
func (o *Order) IsEcoQualifying() bool {
	if o.IsEcoFriendly || o.EcoScore > 0 {
		return true
	}
	for i := range o.Items {
		if o.Items[i].IsEcoQualifying() {
			return true
		}
	}
	return false
}

// CarbonFigure returns the order's carbon figure for weekly evaluation.
func (o *Order) CarbonFigure() float64 {
	if o.CarbonFootprint != nil {
		return *o.CarbonFootprint
	}
	return o.TotalCarbonSaved
}

// OrderItem is a point-in-time snapshot of a purchased product.
type OrderItem struct {
	ID              uint    `gorm:"primaryKey" json:"-"`
	OrderID         uint    `gorm:"not null;index" json:"-"`
	ProductID       uint    `gorm:"not null" json:"product_id"`
	Name            string  `gorm:"size:255;not null" json:"name"`
	Quantity        int     `gorm:"not null" json:"quantity"`
	Price           float64 `gorm:"not null" json:"price"`
	Category        string  `gorm:"size:100" json:"category"`
	CarbonFootprint float64 `json:"carbon_footprint"`
	EcoScore        float64 `json:"eco_score"`
	IsEcoFriendly   bool    `json:"is_eco_friendly"`
}

// TableName specifies the table name for OrderItem model.
func (OrderItem) TableName() string {
	return "order_items"
}

// IsEcoQualifying reports whether the item is flagged eco-friendly or has a
// positive eco score.
func (i *OrderItem) IsEcoQualifying() bool {
	return i.IsEcoFriendly || i.EcoScore > 0
}
