package middleware

import (
	"errors"
	"net/http"
	"strings"

	"job_tracker/internal/auth"
	"job_tracker/internal/observability"
	"job_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenVerifier is satisfied by *auth.TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

const bearerScheme = "Bearer"

// AuthMiddleware validates the token in the Authorization header and stores
// the verified user id in the context. Every rejection gets the same body;
// the reason is only logged and counted.
func AuthMiddleware(verifier TokenVerifier, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			reject(c, metrics, "missing", nil)
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrExpiredToken) {
				reason = "expired"
			}
			reject(c, metrics, reason, err)
			return
		}

		c.Set(auth.UserIDKey, claims.UserID)
		c.Next()
	}
}

// extractToken accepts both a raw token and "Bearer <token>". A scheme
// with nothing after it yields "".
func extractToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) > 0 && strings.EqualFold(fields[0], bearerScheme) {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

func reject(c *gin.Context, metrics *observability.Metrics, reason string, err error) {
	metrics.AuthFailure(reason)

	entry := logrus.WithFields(logrus.Fields{
		"reason": reason,
		"path":   c.Request.URL.Path,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Rejected unauthenticated request")

	utils.Abort(c, http.StatusUnauthorized, "Unauthorized")
}
