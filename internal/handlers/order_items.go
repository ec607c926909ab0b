package handlers

import (
	"crypto/rand"
	"math/big"

	"backend/internal/models"
)

// newOrderNumber draws a random number in [100000, 999999]. The space is only
// 900k values, so the orders collection keeps a unique index on orderNumber
// and the insert retries on duplicate-key errors.
func newOrderNumber() int {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 100000
	}
	return int(n.Int64()) + 100000
}

func orderTotal(items []models.OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// averageOrderValue guards the empty-collection case: no orders means an
// average of zero, not a division by zero.
func averageOrderValue(count int64, revenue float64) float64 {
	if count <= 0 {
		return 0
	}
	return revenue / float64(count)
}

func validOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled:
		return true
	}
	return false
}

func isTerminalOrderStatus(status string) bool {
	return status == models.OrderStatusDelivered || status == models.OrderStatusCancelled
}

// canTransitionOrderStatus enforces the forward-only lifecycle:
// Pending → Processing → Shipped → Delivered, with Cancelled reachable from
// any non-terminal state. Delivered and Cancelled are terminal.
func canTransitionOrderStatus(from, to string) bool {
	if !validOrderStatus(from) || !validOrderStatus(to) || from == to {
		return false
	}
	if isTerminalOrderStatus(from) {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusProcessing ||
			to == models.OrderStatusShipped ||
			to == models.OrderStatusDelivered
	case models.OrderStatusProcessing:
		return to == models.OrderStatusShipped || to == models.OrderStatusDelivered
	case models.OrderStatusShipped:
		return to == models.OrderStatusDelivered
	}
	return false
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodCOD, models.PaymentMethodPayPal, models.PaymentMethodUPI:
		return true
	}
	return false
}

// creationPaymentStatus resolves the initial payment status: Paid is allowed
// for completed PayPal/UPI flows, everything else starts Pending.
func creationPaymentStatus(requested string) string {
	if requested == models.PaymentStatusPaid {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPending
}

// snapshotOrderItem freezes the product's current name, image and effective
// price into the order so later catalog edits cannot change it.
func snapshotOrderItem(product models.Product, quantity int, size, color string) models.OrderItem {
	return models.OrderItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     firstImage(product.Images),
		Price:     effectivePrice(product.Price, product.DiscountPrice),
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}
}
