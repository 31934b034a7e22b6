package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tranqh/photokeep/entity"
	"gorm.io/gorm"
)

type ReconcileRepository struct {
	db *gorm.DB
}

func NewReconcileRepository(db *gorm.DB) *ReconcileRepository {
	return &ReconcileRepository{db: db}
}

func (r *ReconcileRepository) Create(task *entity.ReconcileTask) error {
	return r.db.Create(task).Error
}

func (r *ReconcileRepository) FindByID(id uuid.UUID) (*entity.ReconcileTask, error) {
	var task entity.ReconcileTask
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *ReconcileRepository) MarkDone(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&entity.ReconcileTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.ReconcileStatusDone,
			"completed_at": &now,
		}).Error
}

// FindStalePending returns pending intents older than the cutoff, oldest
// first. These are the operations whose second phase never confirmed.
func (r *ReconcileRepository) FindStalePending(olderThan time.Time) ([]entity.ReconcileTask, error) {
	var tasks []entity.ReconcileTask
	err := r.db.
		Where("status = ? AND created_at < ?", entity.ReconcileStatusPending, olderThan).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
