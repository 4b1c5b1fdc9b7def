package middleware

import (
	"net/http"
	"strconv"

	"job_tracker/internal/auth"
	"job_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireOwner rejects requests whose path parameter names a user other than
// the authenticated one. It must run after AuthMiddleware.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pathID, err := strconv.Atoi(c.Param(param))
		if err != nil || pathID <= 0 {
			utils.Abort(c, http.StatusBadRequest, "Invalid user ID")
			return
		}

		userID, err := auth.GetUserIDFromContext(c)
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if pathID != userID {
			logrus.WithFields(logrus.Fields{
				"user_id":      userID,
				"path_user_id": pathID,
				"path":         c.FullPath(),
			}).Warn("Rejected access to another user's resources")
			utils.Abort(c, http.StatusForbidden, "Forbidden")
			return
		}

		c.Next()
	}
}
