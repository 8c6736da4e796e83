package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, Limit: 50}, NewPage(3, 50))
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(-2, 500))
	assert.Equal(t, 40, NewPage(3, 20).Offset())
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=abc", nil)

	assert.Equal(t, Page{Page: 2, Limit: 20}, PageFromQuery(c))
}
