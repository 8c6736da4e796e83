package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(f *fixture, cache ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api"), cache...)
	return r
}

func get(r http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHandler_ListCards(t *testing.T) {
	f := newFixture(t)
	royal, _, spice, _ := f.seedMarket(t)
	r := newRouter(f)

	w, body := get(r, "/api/vendor-cards?city=Mumbai&sort=price_desc&limit=10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 10, body["limit"])
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.EqualValues(t, spice.ID, items[0].(map[string]any)["id"])
	assert.EqualValues(t, royal.ID, items[1].(map[string]any)["id"])

	w, _ = get(r, "/api/vendor-cards?category=photography&featured=true")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_ListCardsValidation(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	for _, q := range []string{"sort=cheapest", "minPrice=abc", "minPrice=-1", "minRating=9", "featured=maybe", "minPrice=10&maxPrice=5"} {
		w, body := get(r, "/api/vendor-cards?"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "VALIDATION_ERROR", body["code"], q)
	}
}

func TestHandler_CacheMiddlewareWrapsListings(t *testing.T) {
	f := newFixture(t)
	calls := 0
	r := newRouter(f, func(c *gin.Context) {
		calls++
		c.Next()
	})

	get(r, "/api/vendor-cards")
	get(r, "/api/categories")
	get(r, "/api/search?q=photo")
	assert.Equal(t, 2, calls)
}

func TestHandler_GetCardAndSearch(t *testing.T) {
	f := newFixture(t)
	royal, _, _, hidden := f.seedMarket(t)
	r := newRouter(f)

	w, body := get(r, "/api/vendor-cards/"+strconv.FormatInt(royal.ID, 10))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Royal Lens Studio", body["vendorCard"].(map[string]any)["title"])

	w, _ = get(r, "/api/vendor-cards/"+strconv.FormatInt(hidden.ID, 10))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = get(r, "/api/vendor-cards/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = get(r, "/api/search?q=p")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search query must be at least 2 characters", body["error"])

	w, body = get(r, "/api/search?q=royal")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["vendorCards"].([]any), 1)
	assert.Empty(t, body["categories"].([]any))
}
