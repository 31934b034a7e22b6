package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqh/photokeep/utils"
)

func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	if err := ctrl.Infra.Postgres.Ping(); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Health] Database ping failed: %v", err)
		utils.JSON503(c, "Database unavailable", err)
		return
	}

	if err := ctrl.Infra.Minio.Health(ctx); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Health] Object store probe failed: %v", err)
		utils.JSON503(c, "Object store unavailable", err)
		return
	}

	utils.JSON200(c, gin.H{"status": "ok"})
}
