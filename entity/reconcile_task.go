package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReconcileOp string

const (
	ReconcileOpUpload       ReconcileOp = "upload"
	ReconcileOpDeletePhoto  ReconcileOp = "delete_photo"
	ReconcileOpDeleteFolder ReconcileOp = "delete_folder"
)

type ReconcileStatus string

const (
	ReconcileStatusPending ReconcileStatus = "pending"
	ReconcileStatusDone    ReconcileStatus = "done"
)

// ReconcileTask is the intent log for cross-store operations. A row is
// written before the first side effect and marked done after the last one;
// rows still pending past the stale threshold are picked up by the sweep.
type ReconcileTask struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Op          ReconcileOp     `json:"op" gorm:"type:varchar(32);not null;index"`
	Status      ReconcileStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	ObjectKeys  datatypes.JSON  `json:"object_keys" gorm:"not null"`
	PhotoID     *uuid.UUID      `json:"photo_id" gorm:"type:uuid"`
	FolderID    *uuid.UUID      `json:"folder_id" gorm:"type:uuid"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;autoCreateTime;index"`
	CompletedAt *time.Time      `json:"completed_at"`
}
