package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vkuznetsov/paperdesk-backend/internal/http/middleware"
)

func TestOrderHandler_Place_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil}
	r.POST("/orders", handler.Place)

	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{"topic":"эссе","pages":3,"deadline_hours":48}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_Get_InvalidOrderID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil}
	r.GET("/orders/:id", fakeAuth(uuid.New()), handler.Get)

	req, _ := http.NewRequest("GET", "/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Place_MissingTopic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil}
	r.POST("/orders", fakeAuth(uuid.New()), handler.Place)

	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{"pages":3,"deadline_hours":48}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_Estimate_InvalidPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &PricingHandler{pricing: nil}
	r.POST("/estimate", handler.Estimate)

	req, _ := http.NewRequest("POST", "/estimate", strings.NewReader(`{"pages":0,"deadline_hours":48}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// fakeAuth подставляет авторизованного пользователя без проверки токена.
func fakeAuth(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, "client")
		c.Next()
	}
}
