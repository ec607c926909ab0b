package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/middleware"
	"backend/internal/models"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	GuestID   string `json:"guestId"`
}

type cartLineKeyRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	GuestID   string `json:"guestId"`
}

type mergeCartRequest struct {
	GuestID string `json:"guestId" binding:"required"`
}

var errNoCartOwner = errors.New("guestId is required for guest carts")

// cartOwnerFilter resolves who the cart belongs to: the authenticated user
// when present, otherwise the guest id from the request.
func cartOwnerFilter(user *models.User, guestID string) (bson.M, error) {
	if user != nil {
		return bson.M{"userId": user.ID}, nil
	}
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, errNoCartOwner
	}
	return bson.M{"guestId": guestID}, nil
}

func loadCart(ctx context.Context, db *mongo.Database, filter bson.M) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Collection("carts").FindOne(ctx, filter).Decode(&cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func saveCartItems(ctx context.Context, db *mongo.Database, cartID primitive.ObjectID, items []models.CartItem) error {
	_, err := db.Collection("carts").UpdateByID(ctx, cartID, bson.M{
		"$set": bson.M{
			"items":      items,
			"totalPrice": cartTotal(items),
			"updatedAt":  time.Now(),
		},
	})
	return err
}

// GET /api/cart
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"

		user, _ := middleware.CurrentUser(c)
		filter, err := cartOwnerFilter(user, c.Query("guestId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, filter)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Cart not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// POST /api/cart/add
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add"
		defer handlePanic(c, route)

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity < 1 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		user, _ := middleware.CurrentUser(c)
		guestID := strings.TrimSpace(req.GuestID)
		if user == nil && guestID == "" {
			// First add from an anonymous caller: mint the guest id here,
			// the client picks it up from the cart body.
			guestID = newGuestID()
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

		line := models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     firstImage(product.Images),
			Price:     effectivePrice(product.Price, product.DiscountPrice),
			Size:      strings.TrimSpace(req.Size),
			Color:     strings.TrimSpace(req.Color),
			Quantity:  req.Quantity,
		}

		filter, _ := cartOwnerFilter(user, guestID)
		cart, err := loadCart(ctx, db, filter)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				respondWithError(c, http.StatusInternalServerError, route, "Server Error")
				return
			}
			cart = newCartForOwner(user, guestID)
		}

		cart.Items = upsertCartLine(cart.Items, line)
		cart.TotalPrice = cartTotal(cart.Items)
		cart.UpdatedAt = time.Now()

		if cart.ID.IsZero() {
			res, err := db.Collection("carts").InsertOne(ctx, cart)
			if err != nil {
				log.Println("[CART] [ERROR] insert failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "Server Error")
				return
			}
			cart.ID, _ = res.InsertedID.(primitive.ObjectID)
		} else if err := saveCartItems(ctx, db, cart.ID, cart.Items); err != nil {
			log.Println("[CART] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// PUT /api/cart/update
func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/update"
		defer handlePanic(c, route)

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity < 1 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		user, _ := middleware.CurrentUser(c)
		filter, err := cartOwnerFilter(user, req.GuestID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, filter)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Cart not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		i := findCartLine(cart.Items, productID, strings.TrimSpace(req.Size), strings.TrimSpace(req.Color))
		if i < 0 {
			respondWithError(c, http.StatusNotFound, route, "Item not found in cart")
			return
		}
		cart.Items[i].Quantity = req.Quantity
		cart.TotalPrice = cartTotal(cart.Items)
		cart.UpdatedAt = time.Now()

		if err := saveCartItems(ctx, db, cart.ID, cart.Items); err != nil {
			log.Println("[CART] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// DELETE /api/cart/remove
func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/remove"
		defer handlePanic(c, route)

		var req cartLineKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		user, _ := middleware.CurrentUser(c)
		filter, err := cartOwnerFilter(user, req.GuestID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, filter)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Cart not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		items, removed := removeCartLine(cart.Items, productID, strings.TrimSpace(req.Size), strings.TrimSpace(req.Color))
		if !removed {
			respondWithError(c, http.StatusNotFound, route, "Item not found in cart")
			return
		}
		cart.Items = items
		cart.TotalPrice = cartTotal(items)
		cart.UpdatedAt = time.Now()

		if err := saveCartItems(ctx, db, cart.ID, cart.Items); err != nil {
			log.Println("[CART] [ERROR] remove failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// POST /api/cart/merge
//
// Folds the guest cart into the logged-in user's cart and deletes the guest
// cart. The guest id is not reusable afterwards.
func MergeCarts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/merge"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req mergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		guestID := strings.TrimSpace(req.GuestID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		guestCart, err := loadCart(ctx, db, bson.M{"guestId": guestID})
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Guest cart not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		userCart, err := loadCart(ctx, db, bson.M{"userId": user.ID})
		if err != nil && err != mongo.ErrNoDocuments {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if userCart == nil {
			// No user cart yet: the guest cart changes owner.
			_, err := db.Collection("carts").UpdateByID(ctx, guestCart.ID, bson.M{
				"$set":   bson.M{"userId": user.ID, "updatedAt": time.Now()},
				"$unset": bson.M{"guestId": ""},
			})
			if err != nil {
				log.Println("[CART] [ERROR] guest cart adoption failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "Server Error")
				return
			}
			guestCart.UserID = &user.ID
			guestCart.GuestID = ""
			log.Println("[CART] [INFO] guest cart adopted by user:", user.ID.Hex())
			c.JSON(http.StatusOK, guestCart)
			return
		}

		userCart.Items = mergeCartItems(userCart.Items, guestCart.Items)
		userCart.TotalPrice = cartTotal(userCart.Items)
		userCart.UpdatedAt = time.Now()

		if err := saveCartItems(ctx, db, userCart.ID, userCart.Items); err != nil {
			log.Println("[CART] [ERROR] merge save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"_id": guestCart.ID}); err != nil {
			log.Println("[CART] [ERROR] guest cart delete failed:", err)
		}

		log.Println("[CART] [INFO] guest cart merged into user:", user.ID.Hex())
		c.JSON(http.StatusOK, userCart)
	}
}

// newGuestID mints a guest identifier for anonymous callers that did not
// supply one. Guest ids are otherwise client-generated.
func newGuestID() string {
	return "guest_" + uuid.NewString()
}

func newCartForOwner(user *models.User, guestID string) *models.Cart {
	now := time.Now()
	cart := &models.Cart{
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user != nil {
		cart.UserID = &user.ID
	} else {
		cart.GuestID = guestID
	}
	return cart
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
