package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice float64            `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	CountInStock  int                `bson:"countInStock" json:"countInStock"`
	SKU           string             `bson:"sku" json:"sku"`
	Category      string             `bson:"category" json:"category"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Sizes         []string           `bson:"sizes" json:"sizes"`
	Colors        []string           `bson:"colors" json:"colors"`
	Material      string             `bson:"material,omitempty" json:"material,omitempty"`
	Gender        string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Images        []string           `bson:"images" json:"images"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	IsBestSeller  bool               `bson:"isBestSeller" json:"isBestSeller"`
	Rating        float64            `bson:"rating" json:"rating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
