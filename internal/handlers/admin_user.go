package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type adminCreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type adminUpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func validRole(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

// GET /api/admin/users
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

// POST /api/admin/users
func AdminCreateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/users"
		defer handlePanic(c, route)

		var req adminCreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		role := strings.TrimSpace(req.Role)
		if role == "" {
			role = models.RoleUser
		}
		if !validRole(role) {
			respondWithError(c, http.StatusBadRequest, route, "invalid role")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		now := time.Now()
		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "User already exists")
				return
			}
			log.Println("[ADMIN] [ERROR] user insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, user)
	}
}

// PUT /api/admin/users/:id
func AdminUpdateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		var req adminUpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Name != nil {
			update["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			update["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.Role != nil {
			if !validRole(*req.Role) {
				respondWithError(c, http.StatusBadRequest, route, "invalid role")
				return
			}
			update["role"] = *req.Role
		}
		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{"$set": update})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "email already registered")
				return
			}
			log.Println("[ADMIN] [ERROR] user update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// DELETE /api/admin/users/:id
func AdminDeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/users/:id"

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
