package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestNewOrderNumberStaysSixDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := newOrderNumber()
		if n < 100000 || n > 999999 {
			t.Fatalf("expected a 6-digit order number, got %d", n)
		}
	}
}

func TestOrderTotalMatchesSnapshotPrices(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: primitive.NewObjectID(), Price: 25, Quantity: 2},
		{ProductID: primitive.NewObjectID(), Price: 9.5, Quantity: 3},
	}

	if got := orderTotal(items); got != 25*2+9.5*3 {
		t.Fatalf("expected total %v, got %v", 25*2+9.5*3, got)
	}
	if got := orderTotal(nil); got != 0 {
		t.Fatalf("expected empty order total 0, got %v", got)
	}
}

func TestAverageOrderValueIsZeroWithoutOrders(t *testing.T) {
	if got := averageOrderValue(0, 0); got != 0 {
		t.Fatalf("expected average 0 for an empty collection, got %v", got)
	}
	if got := averageOrderValue(4, 100); got != 25 {
		t.Fatalf("expected average 25, got %v", got)
	}
}

func TestSnapshotOrderItemFreezesProductState(t *testing.T) {
	product := models.Product{
		ID:            primitive.NewObjectID(),
		Name:          "Classic Tee",
		Price:         40,
		DiscountPrice: 30,
		Images:        []string{"https://cdn.example.com/tee.jpg"},
	}

	item := snapshotOrderItem(product, 2, "M", "Red")

	if item.Price != 30 {
		t.Fatalf("expected snapshot to use the effective price 30, got %v", item.Price)
	}
	if item.Name != "Classic Tee" || item.Image != "https://cdn.example.com/tee.jpg" {
		t.Fatalf("expected product fields copied into the item, got %+v", item)
	}

	// Later catalog edits must not leak into the snapshot.
	product.Price = 99
	product.Name = "Renamed Tee"
	if item.Price != 30 || item.Name != "Classic Tee" {
		t.Fatalf("expected snapshot to be independent of product edits, got %+v", item)
	}
}

func TestOrderStatusTransitionsForwardOnly(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusProcessing},
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusProcessing, models.OrderStatusDelivered},
		{models.OrderStatusProcessing, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !canTransitionOrderStatus(tc.from, tc.to) {
			t.Fatalf("expected transition %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{models.OrderStatusProcessing, models.OrderStatusPending},
		{models.OrderStatusShipped, models.OrderStatusProcessing},
		{models.OrderStatusDelivered, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusProcessing},
		{models.OrderStatusPending, models.OrderStatusPending},
		{models.OrderStatusPending, "Refunded"},
	}
	for _, tc := range denied {
		if canTransitionOrderStatus(tc.from, tc.to) {
			t.Fatalf("expected transition %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalOrderStatuses(t *testing.T) {
	if !isTerminalOrderStatus(models.OrderStatusDelivered) || !isTerminalOrderStatus(models.OrderStatusCancelled) {
		t.Fatal("expected Delivered and Cancelled to be terminal")
	}
	if isTerminalOrderStatus(models.OrderStatusPending) || isTerminalOrderStatus(models.OrderStatusShipped) {
		t.Fatal("expected Pending and Shipped to be non-terminal")
	}
}

func TestCreationPaymentStatusDefaultsToPending(t *testing.T) {
	if got := creationPaymentStatus(models.PaymentStatusPaid); got != models.PaymentStatusPaid {
		t.Fatalf("expected Paid to be kept, got %s", got)
	}
	for _, requested := range []string{"", models.PaymentStatusPending, models.PaymentStatusFailed, "anything"} {
		if got := creationPaymentStatus(requested); got != models.PaymentStatusPending {
			t.Fatalf("expected %q to resolve to Pending, got %s", requested, got)
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, method := range []string{models.PaymentMethodCOD, models.PaymentMethodPayPal, models.PaymentMethodUPI} {
		if !validPaymentMethod(method) {
			t.Fatalf("expected %s to be a valid payment method", method)
		}
	}
	if validPaymentMethod("Bitcoin") || validPaymentMethod("") {
		t.Fatal("expected unknown payment methods to be rejected")
	}
}
