package repository

import (
	"github.com/tranqh/photokeep/infra"
	"gorm.io/gorm"
)

type Repository struct {
	FolderRepo    *FolderRepository
	PhotoRepo     *PhotoRepository
	ReconcileRepo *ReconcileRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		FolderRepo:    NewFolderRepository(db),
		PhotoRepo:     NewPhotoRepository(db),
		ReconcileRepo: NewReconcileRepository(db),
	}
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) BeginTransaction(db *gorm.DB) *gorm.DB {
	return db.Begin()
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
