package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/warden/internal/shared/constants"
)

func newQueryContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/user-groups?"+rawQuery, nil)
	return c
}

func TestParsePaginationWithLimits(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"empty query uses group default", "", 1, constants.GroupListPageSize},
		{"explicit values", "page=3&page_size=30", 3, 30},
		{"page_size capped", "page_size=1000", 1, constants.MaxPageSize},
		{"garbage falls back", "page=abc&page_size=-2", 1, constants.GroupListPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newQueryContext(tt.query)
			p := ParsePaginationWithLimits(c, constants.GroupListPageSize, constants.MaxPageSize)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 15))
	assert.Equal(t, 1, TotalPages(15, 15))
	assert.Equal(t, 2, TotalPages(16, 15))
	assert.Equal(t, 1, TotalPages(10, 0))
}

func TestParseUintParam(t *testing.T) {
	c := newQueryContext("")
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "x"}, {Key: "zero", Value: "0"}}

	id, ok := ParseUintParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = ParseUintParam(c, "bad")
	assert.False(t, ok)
	_, ok = ParseUintParam(c, "zero")
	assert.False(t, ok)
}
