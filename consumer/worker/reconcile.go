package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/entity"
	"github.com/tranqh/photokeep/infra"
	"github.com/tranqh/photokeep/infra/produce"
	"github.com/tranqh/photokeep/repository"
	"gorm.io/gorm"
)

// Reconciler finishes or rolls back cross-store operations whose intent-log
// entry never got its completion mark. Delete intents are driven to
// completion (object removal is idempotent, so re-removing is safe); upload
// intents are completed when the metadata row exists and rolled back by
// removing the orphaned binary when it doesn't.
type Reconciler struct {
	repository *repository.Repository
	storage    infra.ObjectStorage
	logger     *infra.LoggerClient
	staleAfter time.Duration
}

func NewReconciler(repo *repository.Repository, storage infra.ObjectStorage, logger *infra.LoggerClient, staleAfter time.Duration) *Reconciler {
	return &Reconciler{
		repository: repo,
		storage:    storage,
		logger:     logger,
		staleAfter: staleAfter,
	}
}

// Sweep resolves every pending intent older than the stale threshold and
// returns how many were resolved.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.staleAfter)
	tasks, err := r.repository.ReconcileRepo.FindStalePending(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale intents: %w", err)
	}

	resolved := 0
	for i := range tasks {
		if err := r.Resolve(ctx, &tasks[i]); err != nil {
			r.logger.ErrorWithContextf(ctx, err, "[Reconcile] Failed to resolve task %s (%s): %v", tasks[i].ID, tasks[i].Op, err)
			continue
		}
		resolved++
	}

	return resolved, nil
}

func (r *Reconciler) Resolve(ctx context.Context, task *entity.ReconcileTask) error {
	if task.Status == entity.ReconcileStatusDone {
		return nil
	}

	var keys []string
	if err := json.Unmarshal(task.ObjectKeys, &keys); err != nil {
		return fmt.Errorf("failed to decode object keys of task %s: %w", task.ID, err)
	}

	switch task.Op {
	case entity.ReconcileOpUpload:
		if err := r.resolveUpload(ctx, task, keys); err != nil {
			return err
		}
	case entity.ReconcileOpDeletePhoto:
		if err := r.resolveDeletePhoto(ctx, task, keys); err != nil {
			return err
		}
	case entity.ReconcileOpDeleteFolder:
		if err := r.resolveDeleteFolder(ctx, task, keys); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown reconcile op %q on task %s", task.Op, task.ID)
	}

	if err := r.repository.ReconcileRepo.MarkDone(task.ID); err != nil {
		return fmt.Errorf("failed to mark task %s done: %w", task.ID, err)
	}
	return nil
}

func (r *Reconciler) resolveUpload(ctx context.Context, task *entity.ReconcileTask, keys []string) error {
	for _, key := range keys {
		_, err := r.repository.PhotoRepo.FindByFilePath(key)
		if err == nil {
			// The row made it; the operation completed after all.
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up photo row for %s: %w", key, err)
		}
		// No row: the binary is orphaned, roll the upload back.
		if err := r.storage.RemoveObject(ctx, key); err != nil {
			return fmt.Errorf("failed to remove orphaned object %s: %w", key, err)
		}
		r.logger.InfoWithContextf(ctx, "[Reconcile] Rolled back orphaned upload %s (task %s)", key, task.ID)
	}
	return nil
}

func (r *Reconciler) resolveDeletePhoto(ctx context.Context, task *entity.ReconcileTask, keys []string) error {
	for _, key := range keys {
		if err := r.storage.RemoveObject(ctx, key); err != nil {
			return fmt.Errorf("failed to remove object %s: %w", key, err)
		}
	}
	if task.PhotoID != nil {
		if _, err := r.repository.PhotoRepo.Delete(*task.PhotoID); err != nil {
			return fmt.Errorf("failed to delete dangling photo row %s: %w", *task.PhotoID, err)
		}
	}
	r.logger.InfoWithContextf(ctx, "[Reconcile] Finished photo delete (task %s)", task.ID)
	return nil
}

func (r *Reconciler) resolveDeleteFolder(ctx context.Context, task *entity.ReconcileTask, keys []string) error {
	if len(keys) > 0 {
		if err := r.storage.RemoveObjects(ctx, keys); err != nil {
			return fmt.Errorf("failed to remove folder objects: %w", err)
		}
	}
	if task.FolderID != nil {
		if _, err := r.repository.FolderRepo.Delete(*task.FolderID); err != nil {
			return fmt.Errorf("failed to delete folder row %s: %w", *task.FolderID, err)
		}
	}
	r.logger.InfoWithContextf(ctx, "[Reconcile] Finished folder delete (task %s)", task.ID)
	return nil
}

// ReconcileConsumer wires the Reconciler to its two triggers: queue messages
// published by the API after a partial failure, and a periodic sweep that
// catches intents whose trigger was lost.
type ReconcileConsumer struct {
	channel       *amqp.Channel
	infra         *infra.Infra
	reconciler    *Reconciler
	sweepInterval time.Duration
}

func NewReconcileConsumer(cfg *config.Config, channel *amqp.Channel, infraInst *infra.Infra, repo *repository.Repository) *ReconcileConsumer {
	return &ReconcileConsumer{
		channel: channel,
		infra:   infraInst,
		reconciler: NewReconciler(
			repo,
			infraInst.Minio,
			infraInst.Logger,
			time.Duration(cfg.EnvConfig.Reconcile.StaleAfterSeconds)*time.Second,
		),
		sweepInterval: time.Duration(cfg.EnvConfig.Reconcile.SweepIntervalSec) * time.Second,
	}
}

func (c *ReconcileConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ReconcileQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register reconcile consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Started listening on queue: %s", produce.ReconcileQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Reconcile Consumer] Channel closed")
					return
				}
				c.handleTrigger(ctx, msg)
			}
		}
	}()

	go c.runSweepLoop(ctx)

	return nil
}

func (c *ReconcileConsumer) runSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resolved, err := c.reconciler.Sweep(ctx)
			if err != nil {
				c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Sweep failed: %v", err)
				continue
			}
			if resolved > 0 {
				c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Sweep resolved %d stale intents", resolved)
			}
		}
	}
}

func (c *ReconcileConsumer) handleTrigger(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ReconcileTriggerMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Invalid task ID %q: %v", payload.TaskID, err)
		_ = msg.Nack(false, false)
		return
	}

	task, err := c.reconciler.repository.ReconcileRepo.FindByID(taskID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Task %s not found: %v", taskID, err)
		_ = msg.Nack(false, false)
		return
	}

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = c.reconciler.Resolve(ctx, task); err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Resolved task %s (%s)", task.ID, task.Op)
			_ = msg.Ack(false)
			return
		}
		c.infra.Logger.WarningWithContextf(ctx, "[Reconcile Consumer] Attempt %d/%d failed for task %s: %v", attempt, maxRetries, task.ID, err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Giving up on task %s, leaving for the sweep: %v", task.ID, err)
	_ = msg.Nack(false, false)
}
