package controller

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/infra"
	"github.com/tranqh/photokeep/infra/produce"
	"github.com/tranqh/photokeep/repository"
	"gorm.io/datatypes"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Logger     *infra.LoggerClient
	Storage    infra.ObjectStorage
	Cache      infra.URLCache
	Publisher  produce.TriggerPublisher
}

func NewController(cfg *config.Config, infraInst *infra.Infra, repo *repository.Repository) *Controller {
	return &Controller{
		Config:     cfg,
		Infra:      infraInst,
		Repository: repo,
		Logger:     infraInst.Logger,
		Storage:    infraInst.Minio,
		Cache:      infraInst.Redis,
		Publisher:  infraInst.Produce.ReconcileService,
	}
}

func objectKeysJSON(keys []string) datatypes.JSON {
	if keys == nil {
		keys = []string{}
	}
	b, _ := json.Marshal(keys)
	return datatypes.JSON(b)
}

// triggerReconcile nudges the worker after a partial failure. Best-effort:
// the periodic sweep catches the intent even when the publish fails.
func (ctrl *Controller) triggerReconcile(ctx context.Context, taskID uuid.UUID) {
	if err := ctrl.Publisher.PublishReconcileTrigger(ctx, taskID); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Reconcile] Failed to publish trigger for task %s: %v", taskID, err)
	}
}
