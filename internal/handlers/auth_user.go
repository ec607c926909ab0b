package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
	"backend/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
}

// POST /api/users/register
func Register(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			respondWithError(c, http.StatusConflict, route, "User already exists")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		now := time.Now()
		user := models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "User already exists")
				return
			}
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		token, err := issueUserToken(user.ID, user.Role, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{
			"user":  userResponse(user),
			"token": token,
		})
	}
}

// POST /api/users/login
func Login(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login unknown email")
			respondWithError(c, http.StatusUnauthorized, route, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials for:", email)
			respondWithError(c, http.StatusUnauthorized, route, "Invalid email or password")
			return
		}

		token, err := issueUserToken(user.ID, user.Role, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{
			"user":  userResponse(user),
			"token": token,
		})
	}
}

// GET /api/users/profile
func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		c.JSON(http.StatusOK, userResponse(*user))
	}
}

func issueUserToken(userID primitive.ObjectID, role, secret string, accessTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"role":   role,
		"exp":    time.Now().Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
