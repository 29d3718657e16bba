package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/runs", func(c *gin.Context) {
		*capture = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	var seen string
	r := newIDRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(Header))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestRequestIDKeepsCallerSuppliedID(t *testing.T) {
	var seen string
	r := newIDRouter(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	req.Header.Set(Header, "client-trace-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-trace-42", seen)
	assert.Equal(t, "client-trace-42", w.Header().Get(Header))
}

func TestRequestIDValueOutsideChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, Value(c))
}
