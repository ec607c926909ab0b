package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line in a cart. Lines are identified by the
// (productId, size, color) tuple; name, image and price are copied from the
// product when the line is created.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart belongs to either a registered user or a guest id, never both. Guest
// carts are folded into the user cart at login and then deleted.
type Cart struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	GuestID    string              `bson:"guestId,omitempty" json:"guestId,omitempty"`
	Items      []CartItem          `bson:"items" json:"items"`
	TotalPrice float64             `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}
