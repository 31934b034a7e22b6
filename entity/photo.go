package entity

import (
	"time"

	"github.com/google/uuid"
)

// Photo covers images, videos and PDFs alike. FilePath is the object-store
// key the binary lives under, of the form {folder_id}/{generated name}.
type Photo struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FolderID  uuid.UUID `json:"folder_id" gorm:"type:uuid;not null;index"`
	FileName  string    `json:"file_name" gorm:"type:varchar(512);not null"`
	FilePath  string    `json:"file_path" gorm:"type:varchar(1024);not null;uniqueIndex"`
	FileSize  int64     `json:"file_size" gorm:"not null"`
	MimeType  string    `json:"mime_type" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`

	Folder *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}
