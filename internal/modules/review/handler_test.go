package review

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

func newRouter(env *testEnv) (*gin.Engine, *jwt.Service) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("test-secret-123", time.Hour)

	r := gin.New()
	r.Use(middleware.Session(jwtService, "evea_session"))
	api := r.Group("/api")
	NewHandler(env.svc).RegisterRoutes(api, api.Group("", middleware.RequireAuth()))
	return r, jwtService
}

func post(r http.Handler, token, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
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

func TestHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	r, jwtService := newRouter(env)
	u := env.user(t, "Asha", domain.RoleCustomer)
	token, err := jwtService.GenerateToken(domain.Principal{UserID: u.ID, Role: u.Role})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/vendor-cards/%d/reviews", env.card.ID)

	w, _ := post(r, "", path, gin.H{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := post(r, token, path, gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	w, body = post(r, token, path, gin.H{"rating": 4, "comment": "Beautiful mandap"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["reviewCount"])
	assert.EqualValues(t, 4, body["rating"])
	assert.Equal(t, "Asha", body["review"].(map[string]any)["reviewerName"])

	w, body = post(r, token, path, gin.H{"rating": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_REVIEWED", body["code"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list["total"])
	assert.Len(t, list["reviews"].([]any), 1)
}
