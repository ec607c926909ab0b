package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestIssueUserTokenCarriesUserIDAndRole(t *testing.T) {
	const secret = "test-secret"
	userID := primitive.NewObjectID()

	tokenString, err := issueUserToken(userID, models.RoleAdmin, secret, time.Hour)
	if err != nil {
		t.Fatalf("issueUserToken returned error: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected a valid token, got err=%v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if claims["userId"] != userID.Hex() {
		t.Fatalf("expected userId claim %s, got %v", userID.Hex(), claims["userId"])
	}
	if claims["role"] != models.RoleAdmin {
		t.Fatalf("expected role claim admin, got %v", claims["role"])
	}
}

func TestUserResponseOmitsPasswordHash(t *testing.T) {
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         models.RoleUser,
	}

	resp := userResponse(user)

	if _, ok := resp["passwordHash"]; ok {
		t.Fatal("expected password hash to be excluded from the response")
	}
	if resp["email"] != user.Email || resp["name"] != user.Name || resp["role"] != models.RoleUser {
		t.Fatalf("expected user fields in response, got %v", resp)
	}
}
