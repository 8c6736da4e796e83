package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/domain"
	"evea/internal/middleware"
	"evea/internal/pkg/jwt"
)

func newRouter(t *testing.T, env *testEnv) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("test-secret-123", time.Hour)

	r := gin.New()
	r.Use(middleware.Session(jwtService, "evea_session"))
	NewHandler(env.svc).RegisterRoutes(r.Group("/api", middleware.RequireAuth()))

	token, err := jwtService.GenerateToken(domain.Principal{UserID: env.user.ID, Role: env.user.Role, Email: env.user.Email})
	require.NoError(t, err)
	return r, token
}

func call(r http.Handler, token, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHandler_CartFlow(t *testing.T) {
	env := newTestEnv(t)
	r, token := newRouter(t, env)
	card := env.card(t, 7500, true)

	w, body := call(r, token, http.MethodPost, "/api/cart", gin.H{"vendorCardId": card.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := int64(body["item"].(map[string]any)["id"].(float64))

	w, body = call(r, token, http.MethodPatch, fmt.Sprintf("/api/cart/%d", itemID), gin.H{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["item"].(map[string]any)["quantity"])

	w, body = call(r, token, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := body["cart"].(map[string]any)
	assert.EqualValues(t, 3, cart["itemCount"])
	assert.Equal(t, "22500", cart["subtotal"])

	w, _ = call(r, token, http.MethodDelete, fmt.Sprintf("/api/cart/%d", itemID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = call(r, token, http.MethodDelete, fmt.Sprintf("/api/cart/%d", itemID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = call(r, token, http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_CartValidation(t *testing.T) {
	env := newTestEnv(t)
	r, token := newRouter(t, env)
	card := env.card(t, 7500, true)

	for _, body := range []gin.H{
		{"quantity": 1},
		{"vendorCardId": card.ID, "quantity": 0.5},
		{"vendorCardId": card.ID, "quantity": 101},
		{"vendorCardId": card.ID, "eventDate": "24/12/2026"},
	} {
		w, resp := call(r, token, http.MethodPost, "/api/cart", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "VALIDATION_ERROR", resp["code"], body)
	}

	w, _ := call(r, token, http.MethodPatch, "/api/cart/1", gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(r, "", http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
