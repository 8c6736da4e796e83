package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSuccess_FlattensFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)

	Success(c, http.StatusCreated, gin.H{"vendorId": 7})

	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["vendorId"])
}

func TestError_Shape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)

	Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email is required")

	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "email is required", body["error"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestInternal_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)

	Internal(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decode(t, rr)["error"])
	require.Len(t, c.Errors, 1)
}
