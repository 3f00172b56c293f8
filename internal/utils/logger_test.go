package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestContextLogger_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallback := NewSlogLogger(NewDiscardLogger())

	var seenCtxID, seenKeyID string
	var scoped Logger
	router := gin.New()
	router.Use(ContextLogger(fallback))
	router.GET("/", func(c *gin.Context) {
		seenCtxID = RequestIDFromContext(c.Request.Context())
		seenKeyID = c.GetString("request_id")
		scoped = GetLoggerFromContext(c, fallback)
		c.Status(http.StatusNoContent)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.Equal(t, id, seenCtxID)
		assert.Equal(t, id, seenKeyID)
		assert.NotSame(t, fallback, scoped)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "req-42", seenCtxID)
		assert.Equal(t, "req-42", seenKeyID)
	})
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := NewSlogLogger(NewDiscardLogger())

	assert.Same(t, fallback, GetLoggerFromContext(c, fallback))
	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
