package repository

import (
	"github.com/google/uuid"
	"github.com/tranqh/photokeep/entity"
	"gorm.io/gorm"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(folder *entity.Folder) error {
	return r.db.Create(folder).Error
}

func (r *FolderRepository) FindByID(id uuid.UUID) (*entity.Folder, error) {
	var folder entity.Folder
	err := r.db.Where("id = ?", id).First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) ExistsByID(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Folder{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByParentID lists folders whose parent matches exactly, newest first.
// A nil parent means root folders only, never all folders. Each row carries
// the derived photo count.
func (r *FolderRepository) FindByParentID(parentID *uuid.UUID) ([]entity.Folder, error) {
	var folders []entity.Folder
	query := r.db.Model(&entity.Folder{}).
		Select("folders.*, count(photos.id) as photo_count").
		Joins("LEFT JOIN photos ON photos.folder_id = folders.id").
		Group("folders.id").
		Order("folders.created_at DESC")

	if parentID == nil {
		query = query.Where("folders.parent_id IS NULL")
	} else {
		query = query.Where("folders.parent_id = ?", *parentID)
	}

	err := query.Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// Delete removes the folder row; dependent photo rows go with it through the
// store-level cascade. Returns the number of folder rows removed so callers
// can tell a missing folder apart from success.
func (r *FolderRepository) Delete(id uuid.UUID) (int64, error) {
	res := r.db.Delete(&entity.Folder{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
