package repository

import (
	"github.com/google/uuid"
	"github.com/tranqh/photokeep/entity"
	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(photo *entity.Photo) error {
	return r.db.Create(photo).Error
}

func (r *PhotoRepository) FindByID(id uuid.UUID) (*entity.Photo, error) {
	var photo entity.Photo
	err := r.db.Where("id = ?", id).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepository) FindByFolderID(folderID uuid.UUID) ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.Where("folder_id = ?", folderID).Order("created_at DESC").Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) FindByFilePath(filePath string) (*entity.Photo, error) {
	var photo entity.Photo
	err := r.db.Where("file_path = ?", filePath).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// FilePathsByFolderID collects the object-store keys of every photo in the
// folder, for the batch removal step of folder deletion.
func (r *PhotoRepository) FilePathsByFolderID(folderID uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.Model(&entity.Photo{}).Where("folder_id = ?", folderID).Pluck("file_path", &paths).Error
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *PhotoRepository) CountByFolderID(folderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Photo{}).Where("folder_id = ?", folderID).Count(&count).Error
	return count, err
}

func (r *PhotoRepository) Delete(id uuid.UUID) (int64, error) {
	res := r.db.Delete(&entity.Photo{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
