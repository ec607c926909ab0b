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

	"backend/internal/middleware"
	"backend/internal/models"
)

const orderNumberAttempts = 5

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress *models.ShippingAddress  `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod"`
	PaymentStatus   string                   `json:"paymentStatus"`
	PayPalOrderID   string                   `json:"paypalOrderId"`
	GuestID         string                   `json:"guestId"`
}

type updateOrderStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

// POST /api/orders (guest or authenticated)
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "No order items")
			return
		}
		if req.ShippingAddress == nil || strings.TrimSpace(req.ShippingAddress.Address) == "" ||
			strings.TrimSpace(req.ShippingAddress.City) == "" ||
			strings.TrimSpace(req.ShippingAddress.PostalCode) == "" ||
			strings.TrimSpace(req.ShippingAddress.Country) == "" {
			respondWithError(c, http.StatusBadRequest, route, "Shipping address is required")
			return
		}

		paymentMethod := req.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = models.PaymentMethodCOD
		}
		if !validPaymentMethod(paymentMethod) {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items, err := snapshotOrderItems(ctx, db, req.Items)
		if err != nil {
			var notFound productNotFoundError
			if errors.As(err, &notFound) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"message":   "Product not found",
					"productId": notFound.ProductID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		user, _ := middleware.CurrentUser(c)
		now := time.Now()
		order := models.Order{
			Items:           items,
			ShippingAddress: *req.ShippingAddress,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   creationPaymentStatus(req.PaymentStatus),
			OrderStatus:     models.OrderStatusPending,
			TotalPrice:      orderTotal(items),
			PayPalOrderID:   strings.TrimSpace(req.PayPalOrderID),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if user != nil {
			order.UserID = &user.ID
		} else if guestID := strings.TrimSpace(req.GuestID); guestID != "" {
			order.GuestID = guestID
		} else {
			order.GuestID = newGuestID()
		}

		if err := insertOrderWithNumber(ctx, db, &order); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "could not allocate an order number")
				return
			}
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if order.UserID != nil {
			log.Println("[ORDER] [INFO] order created for user:", order.UserID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created:", order.GuestID)
		}

		c.JSON(http.StatusCreated, order)
	}
}

// snapshotOrderItems resolves every requested product and freezes its current
// name, image and effective price into order items.
func snapshotOrderItems(ctx context.Context, db *mongo.Database, reqItems []createOrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqItems))
	for _, item := range reqItems {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, errors.New("invalid productId")
		}
		if item.Quantity < 1 {
			return nil, errors.New("quantity must be at least 1")
		}

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return nil, productNotFoundError{ProductID: productID}
		}
		if err != nil {
			return nil, err
		}

		items = append(items, snapshotOrderItem(product, item.Quantity, strings.TrimSpace(item.Size), strings.TrimSpace(item.Color)))
	}
	return items, nil
}

// insertOrderWithNumber assigns a random 6-digit order number and retries on
// unique-index collisions before giving up.
func insertOrderWithNumber(ctx context.Context, db *mongo.Database, order *models.Order) error {
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()
		res, err := db.Collection("orders").InsertOne(ctx, *order)
		if err == nil {
			order.ID, _ = res.InsertedID.(primitive.ObjectID)
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
		log.Println("[ORDER] [INFO] order number collision, retrying:", order.OrderNumber)
		lastErr = err
	}
	return lastErr
}

// GET /api/orders/myorders
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/myorders"

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx,
			bson.M{"userId": user.ID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:id
//
// A non-admin requester may only fetch an order they own. Guest orders carry
// no user reference and stay fetchable by id alone.
func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if order.UserID != nil {
			user, _ := middleware.CurrentUser(c)
			if user == nil || (!user.IsAdmin() && user.ID != *order.UserID) {
				respondWithError(c, http.StatusUnauthorized, route, "Not authorized")
				return
			}
		}

		c.JSON(http.StatusOK, order)
	}
}

// GET /api/orders/admin/all
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/admin/all"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// PUT /api/orders/:id/status
//
// The single authoritative status-update path: writes orderStatus, enforces
// the transition table, and stamps deliveredAt when the order is Delivered.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Order status is required")
			return
		}

		newStatus := strings.TrimSpace(req.OrderStatus)
		if !validOrderStatus(newStatus) {
			respondWithError(c, http.StatusBadRequest, route, "unknown order status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "Order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if !canTransitionOrderStatus(order.OrderStatus, newStatus) {
			respondWithError(c, http.StatusBadRequest, route,
				"cannot transition order from "+order.OrderStatus+" to "+newStatus)
			return
		}

		now := time.Now()
		update := bson.M{
			"orderStatus": newStatus,
			"updatedAt":   now,
		}
		if newStatus == models.OrderStatusDelivered {
			update["isDelivered"] = true
			update["deliveredAt"] = now
			if order.PaymentMethod == models.PaymentMethodCOD {
				update["paymentStatus"] = models.PaymentStatusPaid
			}
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": update}); err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		log.Printf("[ORDER] [INFO] order %s status -> %s", orderID.Hex(), newStatus)
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /api/orders/:id
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":        "Order deleted",
			"deletedOrderId": orderID.Hex(),
		})
	}
}

// GET /api/orders/stats
func GetOrderStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/stats"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, revenue, err := orderRevenue(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalOrders":       count,
			"totalRevenue":      revenue,
			"averageOrderValue": averageOrderValue(count, revenue),
		})
	}
}

// orderRevenue sums totalPrice across all orders with a single $group stage.
func orderRevenue(ctx context.Context, db *mongo.Database) (int64, float64, error) {
	cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalPrice"},
		}}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Count, results[0].Revenue, nil
}
