package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func signTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token failed: %v", err)
	}
	return token
}

func TestBearerToken(t *testing.T) {
	if _, err := bearerToken(""); err != errNoToken {
		t.Fatalf("expected errNoToken for empty header, got %v", err)
	}
	if _, err := bearerToken("Basic abc"); err == nil {
		t.Fatal("expected error for non-bearer scheme")
	}
	if _, err := bearerToken("Bearer"); err == nil {
		t.Fatal("expected error for missing token part")
	}

	token, err := bearerToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("expected raw token, got %q", token)
	}

	if token, err := bearerToken("bearer abc"); err != nil || token != "abc" {
		t.Fatalf("expected case-insensitive scheme, got token=%q err=%v", token, err)
	}
}

func TestSubjectFromTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	userID := primitive.NewObjectID()

	tokenString := signTestToken(t, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, secret)

	got, err := subjectFromToken(tokenString, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected subject %s, got %s", userID.Hex(), got.Hex())
	}
}

func TestSubjectFromTokenRejectsBadTokens(t *testing.T) {
	const secret = "test-secret"
	userID := primitive.NewObjectID()

	expired := signTestToken(t, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}, secret)
	if _, err := subjectFromToken(expired, secret); err == nil {
		t.Fatal("expected error for expired token")
	}

	wrongSecret := signTestToken(t, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, "other-secret")
	if _, err := subjectFromToken(wrongSecret, secret); err == nil {
		t.Fatal("expected error for wrong signing secret")
	}

	missingClaim := signTestToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, secret)
	if _, err := subjectFromToken(missingClaim, secret); err == nil {
		t.Fatal("expected error for missing userId claim")
	}

	badID := signTestToken(t, jwt.MapClaims{
		"userId": "not-an-object-id",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, secret)
	if _, err := subjectFromToken(badID, secret); err == nil {
		t.Fatal("expected error for malformed userId claim")
	}
}

func TestAdminOnlyRejectsNonAdmins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/admin/stats", nil)
	c.Set(userContextKey, &models.User{Role: models.RoleUser})

	AdminOnly()(c)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin user, got %d", recorder.Code)
	}
}

func TestAdminOnlyRejectsMissingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/admin/stats", nil)

	AdminOnly()(c)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when no user attached, got %d", recorder.Code)
	}
}

func TestAdminOnlyPassesAdmins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/admin/stats", nil)
	c.Set(userContextKey, &models.User{Role: models.RoleAdmin})

	AdminOnly()(c)

	if c.IsAborted() {
		t.Fatal("expected admin request to pass through")
	}
}

func TestCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := CurrentUser(c); ok {
		t.Fatal("expected no user on a fresh context")
	}

	user := &models.User{Role: models.RoleUser}
	c.Set(userContextKey, user)
	got, ok := CurrentUser(c)
	if !ok || got != user {
		t.Fatal("expected the attached user to be returned")
	}
}
