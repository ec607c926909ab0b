package handlers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// sameCartLine reports whether an item matches the (productId, size, color)
// identity key. Two lines never share the same key within a cart.
func sameCartLine(item models.CartItem, productID primitive.ObjectID, size, color string) bool {
	return item.ProductID == productID && item.Size == size && item.Color == color
}

func findCartLine(items []models.CartItem, productID primitive.ObjectID, size, color string) int {
	for i, item := range items {
		if sameCartLine(item, productID, size, color) {
			return i
		}
	}
	return -1
}

// upsertCartLine adds a line to the cart. A line matching an existing identity
// key increments that line's quantity instead of appending a duplicate.
func upsertCartLine(items []models.CartItem, line models.CartItem) []models.CartItem {
	if i := findCartLine(items, line.ProductID, line.Size, line.Color); i >= 0 {
		items[i].Quantity += line.Quantity
		return items
	}
	return append(items, line)
}

// mergeCartItems folds guest cart lines into the user cart. Matching identity
// keys sum quantities; the rest are appended in guest-cart order.
func mergeCartItems(into, from []models.CartItem) []models.CartItem {
	for _, line := range from {
		into = upsertCartLine(into, line)
	}
	return into
}

func removeCartLine(items []models.CartItem, productID primitive.ObjectID, size, color string) ([]models.CartItem, bool) {
	i := findCartLine(items, productID, size, color)
	if i < 0 {
		return items, false
	}
	return append(items[:i], items[i+1:]...), true
}

func cartTotal(items []models.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// effectivePrice is what a customer pays now: the discount price when one is
// set below the regular price.
func effectivePrice(price, discountPrice float64) float64 {
	if discountPrice > 0 && discountPrice < price {
		return discountPrice
	}
	return price
}
