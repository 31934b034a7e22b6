package controller

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tranqh/photokeep/entity"
	"github.com/tranqh/photokeep/http/controller/dto"
	"github.com/tranqh/photokeep/utils"
	"gorm.io/gorm"
)

func (ctrl *Controller) ListFolders(c *gin.Context) {
	ctx := c.Request.Context()

	var parentID *uuid.UUID
	if raw := c.Query("parentId"); raw != "" && raw != "null" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Folder] Invalid parentId %q: %v", raw, err)
			utils.JSON400(c, "Invalid parent folder ID format")
			return
		}
		parentID = &id
	}

	folders, err := ctrl.Repository.FolderRepo.FindByParentID(parentID)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to fetch folders: %v", err)
		utils.JSON500(c, "Failed to fetch folders", err)
		return
	}
	if folders == nil {
		folders = []entity.Folder{}
	}

	utils.JSON200(c, folders)
}

func (ctrl *Controller) CreateFolder(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Folder] Failed to bind create request: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.JSON400(c, "Folder name is required")
		return
	}

	if req.ParentID != nil {
		exists, err := ctrl.Repository.FolderRepo.ExistsByID(*req.ParentID)
		if err != nil {
			ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to check parent folder: %v", err)
			utils.JSON500(c, "Failed to create folder", err)
			return
		}
		if !exists {
			utils.JSON400(c, "Parent folder does not exist")
			return
		}
	}

	folder := entity.Folder{
		ID:       uuid.New(),
		Name:     name,
		ParentID: req.ParentID,
	}
	if err := ctrl.Repository.FolderRepo.Create(&folder); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to create folder %q: %v", name, err)
		utils.JSON500(c, "Failed to create folder", err)
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Folder] Created folder %s (%q)", folder.ID, folder.Name)
	utils.JSON201(c, folder)
}

// DeleteFolder removes the folder's binaries from the object store first,
// then the folder row; the store cascade takes the photo rows with it. The
// two phases are bracketed by an intent-log entry so a crash in between is
// finished by the reconciliation sweep.
func (ctrl *Controller) DeleteFolder(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid folder ID format")
		return
	}

	if _, err := ctrl.Repository.FolderRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "Folder not found")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to fetch folder %s: %v", id, err)
		utils.JSON500(c, "Failed to delete folder", err)
		return
	}

	filePaths, err := ctrl.Repository.PhotoRepo.FilePathsByFolderID(id)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to collect file paths for folder %s: %v", id, err)
		utils.JSON500(c, "Failed to delete folder", err)
		return
	}

	task := entity.ReconcileTask{
		ID:         uuid.New(),
		Op:         entity.ReconcileOpDeleteFolder,
		Status:     entity.ReconcileStatusPending,
		ObjectKeys: objectKeysJSON(filePaths),
		FolderID:   &id,
	}
	if err := ctrl.Repository.ReconcileRepo.Create(&task); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to record delete intent for folder %s: %v", id, err)
		utils.JSON500(c, "Failed to delete folder", err)
		return
	}

	if len(filePaths) > 0 {
		if err := ctrl.Storage.RemoveObjects(ctx, filePaths); err != nil {
			ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Failed to remove %d objects for folder %s: %v", len(filePaths), id, err)
			ctrl.triggerReconcile(ctx, task.ID)
			utils.JSON500(c, "Failed to delete folder", err)
			return
		}
	}

	rows, err := ctrl.Repository.FolderRepo.Delete(id)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Folder] Objects removed but folder row delete failed for %s: %v", id, err)
		ctrl.triggerReconcile(ctx, task.ID)
		utils.JSON500(c, "Failed to delete folder", err)
		return
	}

	if err := ctrl.Repository.ReconcileRepo.MarkDone(task.ID); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Folder] Failed to mark delete intent %s done: %v", task.ID, err)
	}
	if err := ctrl.Cache.InvalidateSignedURLs(ctx, filePaths...); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Folder] Failed to invalidate cached URLs for folder %s: %v", id, err)
	}

	if rows == 0 {
		// Lost the race against a concurrent delete; the other caller won.
		utils.JSON404(c, "Folder not found")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Folder] Deleted folder %s with %d objects", id, len(filePaths))
	utils.JSON200(c, gin.H{"success": true})
}
