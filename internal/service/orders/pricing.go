package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/amazongreen/storefront/internal/models"
)

// DiscountRate returns the eco discount for an item's eco score.
func DiscountRate(ecoScore float64) float64 {
	switch {
	case ecoScore > 80:
		return 0.10
	case ecoScore > 60:
		return 0.05
	default:
		return 0
	}
}

// LineMoneySaved is the discount granted on one order line.
func LineMoneySaved(item models.OrderItem) float64 {
	return item.Price * float64(item.Quantity) * DiscountRate(item.EcoScore)
}

// SnapshotItem captures a product's current figures as an order line. The
// eco flag is set when the product is flagged or has a positive eco score.
func SnapshotItem(productID uint, p models.ProductSnapshot, quantity int) models.OrderItem {
	return models.OrderItem{
		ProductID:       productID,
		Name:            p.Name,
		Quantity:        quantity,
		Price:           p.Price,
		Category:        p.Category,
		CarbonFootprint: p.CarbonFootprint,
		EcoScore:        p.EcoScore,
		IsEcoFriendly:   p.IsEcoFriendly || p.EcoScore > 0,
	}
}

// BuildOrder totals the lines into a new order. TotalEcoScore is the
// quantity-weighted mean item eco score.
func BuildOrder(items []models.OrderItem, source string, placedAt time.Time) models.Order {
	o := models.Order{
		OrderNumber: uuid.NewString(),
		Items:       items,
		Status:      models.OrderStatusPlaced,
		Source:      source,
		PlacedAt:    placedAt,
	}

	var weighted float64
	var units int
	for i := range items {
		it := &items[i]
		qty := float64(it.Quantity)
		o.TotalAmount += it.Price * qty
		o.TotalCarbonSaved += it.CarbonFootprint * qty
		o.MoneySaved += LineMoneySaved(*it)
		weighted += it.EcoScore * qty
		units += it.Quantity
		if it.IsEcoQualifying() {
			o.IsEcoFriendly = true
		}
	}
	if units > 0 {
		o.TotalEcoScore = weighted / float64(units)
	}
	o.EcoScore = o.TotalEcoScore

	return o
}

// applyOrder appends the order and folds it into the user's aggregates.
func applyOrder(user *models.User, o models.Order) {
	user.Orders = append(user.Orders, o)
	user.EcoScore = (user.EcoScore + o.TotalEcoScore) / 2
	user.CarbonSaved += o.TotalCarbonSaved
	user.MoneySaved += o.MoneySaved
}
