package types

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) ListParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x"+query, nil)
	return ParseListParams(c)
}

func TestParseListParamsDefaults(t *testing.T) {
	p := paramsFor(t, "")
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestParseListParamsClamping(t *testing.T) {
	p := paramsFor(t, "?offset=-3&limit=500")
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, MaxLimit, p.Limit)

	p = paramsFor(t, "?offset=abc&limit=0")
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = paramsFor(t, "?offset=10&limit=5")
	assert.Equal(t, 10, p.Offset)
	assert.Equal(t, 5, p.Limit)
}

func TestHasMoreHeuristic(t *testing.T) {
	// A full page means there is probably more; a short or empty one
	// means the end was reached.
	assert.True(t, HasMore(5, 5))
	assert.False(t, HasMore(3, 5))
	assert.False(t, HasMore(0, 5))
	assert.False(t, HasMore(0, 0))
}
