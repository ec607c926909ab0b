package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"

	PaymentMethodCOD    = "COD"
	PaymentMethodPayPal = "PayPal"
	PaymentMethodUPI    = "UPI"
)

// OrderItem is a frozen copy of the product at checkout time. Later catalog
// edits never change an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	FirstName  string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName   string `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	GuestID         string              `bson:"guestId,omitempty" json:"guestId,omitempty"`
	OrderNumber     int                 `bson:"orderNumber" json:"orderNumber"`
	Items           []OrderItem         `bson:"items" json:"items"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string              `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     string              `bson:"orderStatus" json:"orderStatus"`
	IsDelivered     bool                `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	TotalPrice      float64             `bson:"totalPrice" json:"totalPrice"`
	PayPalOrderID   string              `bson:"paypalOrderId,omitempty" json:"paypalOrderId,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
