package handlers

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func cartLine(productID primitive.ObjectID, size, color string, qty int, price float64) models.CartItem {
	return models.CartItem{
		ProductID: productID,
		Name:      "Classic Tee",
		Price:     price,
		Size:      size,
		Color:     color,
		Quantity:  qty,
	}
}

func TestUpsertCartLineSumsQuantitiesForSameKey(t *testing.T) {
	productID := primitive.NewObjectID()

	items := upsertCartLine(nil, cartLine(productID, "M", "Red", 2, 20))
	items = upsertCartLine(items, cartLine(productID, "M", "Red", 3, 20))

	if len(items) != 1 {
		t.Fatalf("expected a single line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestUpsertCartLineAppendsForDifferentSizeOrColor(t *testing.T) {
	productID := primitive.NewObjectID()

	items := upsertCartLine(nil, cartLine(productID, "M", "Red", 1, 20))
	items = upsertCartLine(items, cartLine(productID, "L", "Red", 1, 20))
	items = upsertCartLine(items, cartLine(productID, "M", "Blue", 1, 20))

	if len(items) != 3 {
		t.Fatalf("expected 3 line items, got %d", len(items))
	}
}

func TestMergeCartItemsSumsMatchingKeys(t *testing.T) {
	productID := primitive.NewObjectID()

	userItems := []models.CartItem{cartLine(productID, "M", "Red", 3, 20)}
	guestItems := []models.CartItem{cartLine(productID, "M", "Red", 2, 20)}

	merged := mergeCartItems(userItems, guestItems)

	if len(merged) != 1 {
		t.Fatalf("expected one merged line, got %d", len(merged))
	}
	if merged[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged[0].Quantity)
	}
}

func TestMergeCartItemsAppendsNonMatchingKeys(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	userItems := []models.CartItem{cartLine(first, "M", "Red", 1, 20)}
	guestItems := []models.CartItem{
		cartLine(first, "S", "Red", 1, 20),
		cartLine(second, "M", "Black", 4, 35),
	}

	merged := mergeCartItems(userItems, guestItems)

	if len(merged) != 3 {
		t.Fatalf("expected 3 lines after merge, got %d", len(merged))
	}
	if merged[2].ProductID != second || merged[2].Quantity != 4 {
		t.Fatalf("expected guest-only line appended last, got %+v", merged[2])
	}
}

func TestMergeCartItemsIntoEmptyUserCart(t *testing.T) {
	productID := primitive.NewObjectID()

	merged := mergeCartItems(nil, []models.CartItem{cartLine(productID, "M", "Red", 1, 20)})

	if len(merged) != 1 || merged[0].Quantity != 1 {
		t.Fatalf("expected guest cart carried over unchanged, got %+v", merged)
	}
}

func TestRemoveCartLine(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	items := []models.CartItem{
		cartLine(first, "M", "Red", 1, 20),
		cartLine(second, "L", "Blue", 2, 30),
	}

	remaining, removed := removeCartLine(items, first, "M", "Red")
	if !removed {
		t.Fatal("expected line to be removed")
	}
	if len(remaining) != 1 || remaining[0].ProductID != second {
		t.Fatalf("expected only the second line to remain, got %+v", remaining)
	}

	_, removed = removeCartLine(remaining, first, "M", "Red")
	if removed {
		t.Fatal("expected removal of a missing line to report false")
	}
}

func TestCartTotal(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	items := []models.CartItem{
		cartLine(first, "M", "Red", 2, 19.99),
		cartLine(second, "L", "Blue", 1, 35),
	}

	if got := cartTotal(items); got != 2*19.99+35 {
		t.Fatalf("expected total %v, got %v", 2*19.99+35, got)
	}
	if got := cartTotal(nil); got != 0 {
		t.Fatalf("expected empty cart total 0, got %v", got)
	}
}

func TestNewGuestIDMintsUniquePrefixedIDs(t *testing.T) {
	first := newGuestID()
	second := newGuestID()

	if !strings.HasPrefix(first, "guest_") || !strings.HasPrefix(second, "guest_") {
		t.Fatalf("expected guest_ prefix, got %q and %q", first, second)
	}
	if first == second {
		t.Fatalf("expected distinct guest ids, got %q twice", first)
	}
}

func TestNewCartForOwnerAnonymousCallerGetsMintedGuestID(t *testing.T) {
	cart := newCartForOwner(nil, newGuestID())

	if cart.UserID != nil {
		t.Fatalf("expected no user id on a guest cart, got %v", cart.UserID)
	}
	if !strings.HasPrefix(cart.GuestID, "guest_") {
		t.Fatalf("expected minted guest id in the cart, got %q", cart.GuestID)
	}
}

func TestEffectivePriceUsesDiscountOnlyWhenBelowPrice(t *testing.T) {
	if got := effectivePrice(100, 75); got != 75 {
		t.Fatalf("expected discount price 75, got %v", got)
	}
	if got := effectivePrice(100, 0); got != 100 {
		t.Fatalf("expected regular price when no discount, got %v", got)
	}
	if got := effectivePrice(100, 120); got != 100 {
		t.Fatalf("expected regular price when discount above price, got %v", got)
	}
}
