package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"github.com/DeUskov/rezumy09/internal/database"
)

func TestLogoutSuccess(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	blacklistStore := NewInMemoryBlacklistStore()
	logoutController := NewLogoutController(blacklistStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+accessToken)

	// Parse and set claims in context (simulating middleware behavior)
	token, err := ValidatedToken(accessToken)
	assert.NoError(t, err)
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	assert.True(t, ok)
	c.Set("claims", claims)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "Successfully logged out", resp["message"])

	isBlacklisted, err := blacklistStore.IsBlacklisted(accessToken)
	assert.NoError(t, err)
	assert.True(t, isBlacklisted, "Token should be blacklisted after logout")
}

func TestLogoutMissingToken(t *testing.T) {
	blacklistStore := NewInMemoryBlacklistStore()
	logoutController := NewLogoutController(blacklistStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var err error
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Contains(t, resp["error"], "authorization header")
}

func TestLogoutMissingClaims(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	blacklistStore := NewInMemoryBlacklistStore()
	logoutController := NewLogoutController(blacklistStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+accessToken)

	// Don't set claims in context (simulating missing middleware)
	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "invalid token claims", resp["error"])
}

func TestLogoutBlacklistStoreError(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	mockStore := &MockBlacklistStore{
		addError: fmt.Errorf("database connection failed"),
	}
	logoutController := NewLogoutController(mockStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+accessToken)

	token, err := ValidatedToken(accessToken)
	assert.NoError(t, err)
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	assert.True(t, ok)
	c.Set("claims", claims)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "Failed to logout", resp["error"])
}

func TestExtractClaims(t *testing.T) {
	t.Run("ValidClaims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

		expectedClaims := &jwt.RegisteredClaims{
			Subject:   "test-user-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		c.Set("claims", expectedClaims)

		claims, err := extractClaims(c)
		assert.NoError(t, err)
		assert.Equal(t, expectedClaims.Subject, claims.Subject)
	})

	t.Run("MissingClaims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

		claims, err := extractClaims(c)
		assert.Error(t, err)
		assert.Nil(t, claims)
		assert.Equal(t, "invalid token claims", err.Error())
	})

	t.Run("InvalidClaimsType", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
		c.Set("claims", "invalid")

		claims, err := extractClaims(c)
		assert.Error(t, err)
		assert.Nil(t, claims)
		assert.Equal(t, "invalid token claims type", err.Error())
	})
}

// MockBlacklistStore is a mock implementation of JwtBlacklistStore for testing error scenarios
type MockBlacklistStore struct {
	blacklisted map[string]time.Time
	addError    error
	checkError  error
}

func (m *MockBlacklistStore) IsBlacklisted(token string) (bool, error) {
	if m.checkError != nil {
		return false, m.checkError
	}
	if m.blacklisted == nil {
		return false, nil
	}
	_, exists := m.blacklisted[token]
	return exists, nil
}

func (m *MockBlacklistStore) AddToBlacklist(token string, exp time.Time) error {
	if m.addError != nil {
		return m.addError
	}
	if m.blacklisted == nil {
		m.blacklisted = make(map[string]time.Time)
	}
	m.blacklisted[token] = exp
	return nil
}
