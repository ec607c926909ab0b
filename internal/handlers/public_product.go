package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// GET /api/products
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := buildProductFilter(productQuery{
			Category: c.Query("category"),
			Gender:   c.Query("gender"),
			Color:    c.Query("color"),
			Size:     c.Query("size"),
			Material: c.Query("material"),
			Brand:    c.Query("brand"),
			MinPrice: c.Query("minPrice"),
			MaxPrice: c.Query("maxPrice"),
			Search:   c.Query("search"),
		})

		findOptions := options.Find().SetSort(productSort(c.Query("sortBy")))
		if limitStr := c.Query("limit"); limitStr != "" {
			limit, err := strconv.ParseInt(limitStr, 10, 64)
			if err != nil || limit < 1 {
				respondWithError(c, http.StatusBadRequest, route, "invalid limit")
				return
			}
			findOptions.SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
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

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

// GET /api/products/new-arrivals
func GetNewArrivals(db *mongo.Database) gin.HandlerFunc {
	return listProducts(db, "GET /api/products/new-arrivals", bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(8))
}

// GET /api/products/best-sellers
func GetBestSellers(db *mongo.Database) gin.HandlerFunc {
	return listProducts(db, "GET /api/products/best-sellers", bson.M{"isBestSeller": true},
		options.Find().SetSort(bson.D{{Key: "rating", Value: -1}}).SetLimit(8))
}

// GET /api/products/womens-tops
func GetWomensTops(db *mongo.Database) gin.HandlerFunc {
	return listProducts(db, "GET /api/products/womens-tops",
		bson.M{"gender": "Women", "category": "Top Wear"},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(8))
}

func listProducts(db *mongo.Database, route string, filter bson.M, findOptions *options.FindOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
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

		c.JSON(http.StatusOK, products)
	}
}

// GET /api/products/similar/:id
//
// Similar means same gender and category, excluding the product itself.
func GetSimilarProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/similar/:id"

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Product not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		cursor, err := db.Collection("products").Find(ctx,
			bson.M{
				"_id":      bson.M{"$ne": product.ID},
				"gender":   product.Gender,
				"category": product.Category,
			},
			options.Find().SetLimit(4),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		similar := make([]models.Product, 0)
		if err := cursor.All(ctx, &similar); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, similar)
	}
}

// GET /api/products/:id
func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Product not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
