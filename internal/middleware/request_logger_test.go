package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"job_tracker/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ok", func(c *gin.Context) {
		c.Set(auth.UserIDKey, 9)
		c.Status(http.StatusOK)
	})
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, 9, entries[0].Data["user_id"])
	assert.Equal(t, "/ok", entries[0].Data["path"])

	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, http.StatusBadRequest, entries[1].Data["status"])
	assert.NotContains(t, entries[1].Data, "user_id")
}
