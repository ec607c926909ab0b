package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

const userContextKey = "user"

var errNoToken = errors.New("no token provided")

// RequireAuth validates the bearer token, loads the user it names and injects
// it into the context. Any failure aborts with 401.
func RequireAuth(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userFromRequest(c, db, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and continues
// as guest otherwise. It never aborts the request.
func OptionalAuth(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userFromRequest(c, db, secret)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				log.Println("[AUTH] [INFO] invalid token, continuing as guest:", err)
			}
			c.Next()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminOnly composes after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth or OptionalAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func userFromRequest(c *gin.Context, db *mongo.Database, secret string) (*models.User, error) {
	tokenString, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}

	userID, err := subjectFromToken(tokenString, secret)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	return &user, nil
}

func bearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", errNoToken
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid token format")
	}

	return parts[1], nil
}

func subjectFromToken(tokenString, secret string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return primitive.NilObjectID, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return primitive.NilObjectID, errors.New("invalid userId claim")
	}

	return userID, nil
}
