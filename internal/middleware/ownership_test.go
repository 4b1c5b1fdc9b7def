package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"job_tracker/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupOwnerRouter(authenticatedUserID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Mock auth middleware
	router.Use(func(c *gin.Context) {
		if authenticatedUserID > 0 {
			c.Set(auth.UserIDKey, authenticatedUserID)
		}
		c.Next()
	})

	router.GET("/api/:user_id/jobs", RequireOwner("user_id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name   string
		userID int
		path   string
		status int
		body   string
	}{
		{"own resources", 1, "/api/1/jobs", http.StatusOK, ""},
		{"other user's resources", 1, "/api/2/jobs", http.StatusForbidden, `{"status":"error","message":"Forbidden"}`},
		{"non-numeric id", 1, "/api/abc/jobs", http.StatusBadRequest, `{"status":"error","message":"Invalid user ID"}`},
		{"zero id", 1, "/api/0/jobs", http.StatusBadRequest, `{"status":"error","message":"Invalid user ID"}`},
		{"no identity in context", 0, "/api/1/jobs", http.StatusUnauthorized, `{"status":"error","message":"Unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupOwnerRouter(tt.userID)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}
