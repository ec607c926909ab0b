package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

var errNegativePrice = errors.New("price must not be negative")

type productRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required"`
	DiscountPrice float64  `json:"discountPrice"`
	CountInStock  int      `json:"countInStock"`
	SKU           string   `json:"sku" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Brand         string   `json:"brand"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Material      string   `json:"material"`
	Gender        string   `json:"gender"`
	Images        []string `json:"images"`
	IsFeatured    bool     `json:"isFeatured"`
	IsBestSeller  bool     `json:"isBestSeller"`
}

type productUpdateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price"`
	DiscountPrice *float64  `json:"discountPrice"`
	CountInStock  *int      `json:"countInStock"`
	SKU           *string   `json:"sku"`
	Category      *string   `json:"category"`
	Brand         *string   `json:"brand"`
	Sizes         *[]string `json:"sizes"`
	Colors        *[]string `json:"colors"`
	Material      *string   `json:"material"`
	Gender        *string   `json:"gender"`
	Images        *[]string `json:"images"`
	IsFeatured    *bool     `json:"isFeatured"`
	IsBestSeller  *bool     `json:"isBestSeller"`
}

// GET /api/admin/products
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products"

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"page":     page,
			"pages":    totalPages(total, limit),
			"total":    total,
		})
	}
}

// POST /api/admin/products
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:          strings.TrimSpace(req.Name),
			Description:   strings.TrimSpace(req.Description),
			Price:         req.Price,
			DiscountPrice: req.DiscountPrice,
			CountInStock:  req.CountInStock,
			SKU:           strings.TrimSpace(req.SKU),
			Category:      strings.TrimSpace(req.Category),
			Brand:         strings.TrimSpace(req.Brand),
			Sizes:         emptyIfNil(req.Sizes),
			Colors:        emptyIfNil(req.Colors),
			Material:      strings.TrimSpace(req.Material),
			Gender:        strings.TrimSpace(req.Gender),
			Images:        emptyIfNil(req.Images),
			IsFeatured:    req.IsFeatured,
			IsBestSeller:  req.IsBestSeller,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "sku already exists")
				return
			}
			log.Println("[PRODUCT] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		product.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[PRODUCT] [INFO] product created:", product.SKU)
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /api/admin/products/:id
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update, err := productUpdateFields(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{"$set": update})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "sku already exists")
				return
			}
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// DELETE /api/admin/products/:id
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

func productUpdateFields(req productUpdateRequest) (bson.M, error) {
	update := bson.M{}

	if req.Name != nil {
		update["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		update["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, errNegativePrice
		}
		update["price"] = *req.Price
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice < 0 {
			return nil, errNegativePrice
		}
		update["discountPrice"] = *req.DiscountPrice
	}
	if req.CountInStock != nil {
		update["countInStock"] = *req.CountInStock
	}
	if req.SKU != nil {
		update["sku"] = strings.TrimSpace(*req.SKU)
	}
	if req.Category != nil {
		update["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		update["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Sizes != nil {
		update["sizes"] = *req.Sizes
	}
	if req.Colors != nil {
		update["colors"] = *req.Colors
	}
	if req.Material != nil {
		update["material"] = strings.TrimSpace(*req.Material)
	}
	if req.Gender != nil {
		update["gender"] = strings.TrimSpace(*req.Gender)
	}
	if req.Images != nil {
		update["images"] = *req.Images
	}
	if req.IsFeatured != nil {
		update["isFeatured"] = *req.IsFeatured
	}
	if req.IsBestSeller != nil {
		update["isBestSeller"] = *req.IsBestSeller
	}

	return update, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
