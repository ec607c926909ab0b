package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/subscribe
func Subscribe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/subscribe"
		defer handlePanic(c, route)

		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		subscriber := models.Subscriber{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			SubscribedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("subscribers").InsertOne(ctx, subscriber); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "Email is already subscribed")
				return
			}
			log.Println("[SUBSCRIBE] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Subscribed successfully"})
	}
}
