package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"job_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 3 * time.Second

type HealthController struct {
	db *sql.DB
}

func NewHealthController(db *sql.DB) *HealthController {
	return &HealthController{db: db}
}

// Readiness reports whether the database answers a ping.
func (h *HealthController) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logrus.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, utils.Response{
			Status:  utils.StatusError,
			Message: "degraded",
			Data:    gin.H{"db": "unreachable"},
		})
		return
	}

	utils.Success(c, http.StatusOK, "ready", gin.H{"db": "ok"})
}
