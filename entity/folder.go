package entity

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID       uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string     `json:"name" gorm:"type:varchar(255);not null"`
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	// PhotoCount is computed by the list query (left join count), never stored.
	PhotoCount int64     `json:"photo_count" gorm:"->;-:migration"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;autoCreateTime"`

	Parent *Folder `json:"parent,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Photos []Photo `json:"photos,omitempty" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}
