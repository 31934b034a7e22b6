package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tranqh/photokeep/entity"
	"github.com/tranqh/photokeep/http/controller/dto"
	"github.com/tranqh/photokeep/utils"
	"gorm.io/gorm"
)

// signedURLCacheMargin keeps cached URLs from outliving their signature.
const signedURLCacheMargin = 5 * time.Minute

func (ctrl *Controller) ListPhotos(c *gin.Context) {
	ctx := c.Request.Context()

	folderIDStr := c.Query("folderId")
	if folderIDStr == "" {
		utils.JSON400(c, "Folder ID is required")
		return
	}
	folderID, err := uuid.Parse(folderIDStr)
	if err != nil {
		utils.JSON400(c, "Invalid folder ID format")
		return
	}

	photos, err := ctrl.Repository.PhotoRepo.FindByFolderID(folderID)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to fetch photos for folder %s: %v", folderID, err)
		utils.JSON500(c, "Failed to fetch photos", err)
		return
	}

	ttl := time.Duration(ctrl.Config.EnvConfig.SignedURL.TTLSeconds) * time.Second

	// Sign per photo concurrently; the indexed slice keeps the newest-first
	// query order no matter which signing finishes when. A failed signing
	// degrades that single item to an empty URL.
	results := make([]dto.PhotoWithURL, len(photos))
	var wg sync.WaitGroup
	for i := range photos {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = dto.PhotoWithURL{
				Photo: photos[i],
				URL:   ctrl.signedURLFor(ctx, photos[i].FilePath, ttl),
			}
		}(i)
	}
	wg.Wait()

	utils.JSON200(c, results)
}

func (ctrl *Controller) signedURLFor(ctx context.Context, filePath string, ttl time.Duration) string {
	if cached, err := ctrl.Cache.GetSignedURL(ctx, filePath); err == nil && cached != "" {
		return cached
	} else if err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Photo] Signed URL cache lookup failed for %s: %v", filePath, err)
	}

	url, err := ctrl.Storage.PresignedGetURL(ctx, filePath, ttl)
	if err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to sign URL for %s: %v", filePath, err)
		return ""
	}

	if cacheTTL := ttl - signedURLCacheMargin; cacheTTL > 0 {
		if err := ctrl.Cache.SetSignedURL(ctx, filePath, url, cacheTTL); err != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to cache signed URL for %s: %v", filePath, err)
		}
	}

	return url
}

// UploadPhoto stores the binary first, then the metadata row. A row-insert
// failure after a successful store leaves the binary orphaned behind a
// pending intent, which the reconciliation sweep rolls back.
func (ctrl *Controller) UploadPhoto(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSON400(c, "File and folder ID are required")
		return
	}
	folderIDStr := c.PostForm("folderId")
	if folderIDStr == "" {
		utils.JSON400(c, "File and folder ID are required")
		return
	}
	folderID, err := uuid.Parse(folderIDStr)
	if err != nil {
		utils.JSON400(c, "Invalid folder ID format")
		return
	}

	// A photo cannot exist without its parent folder.
	if _, err := ctrl.Repository.FolderRepo.FindByID(folderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "Folder not found")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to fetch folder %s: %v", folderID, err)
		utils.JSON500(c, "Failed to upload photo", err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := utils.GenerateObjectKey(folderID, fileHeader.Filename)

	task := entity.ReconcileTask{
		ID:         uuid.New(),
		Op:         entity.ReconcileOpUpload,
		Status:     entity.ReconcileStatusPending,
		ObjectKeys: objectKeysJSON([]string{key}),
		FolderID:   &folderID,
	}
	if err := ctrl.Repository.ReconcileRepo.Create(&task); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to record upload intent: %v", err)
		utils.JSON500(c, "Failed to upload photo", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to open uploaded file %q: %v", fileHeader.Filename, err)
		utils.JSON500(c, "Failed to upload photo", err)
		return
	}
	defer file.Close()

	if err := ctrl.Storage.PutObject(ctx, key, file, fileHeader.Size, contentType); err != nil {
		// Nothing was stored; the intent can be closed right away.
		if mdErr := ctrl.Repository.ReconcileRepo.MarkDone(task.ID); mdErr != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to close upload intent %s: %v", task.ID, mdErr)
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to store object %s: %v", key, err)
		utils.JSON500(c, "Failed to upload photo", err)
		return
	}

	photo := entity.Photo{
		ID:       uuid.New(),
		FolderID: folderID,
		FileName: fileHeader.Filename,
		FilePath: key,
		FileSize: fileHeader.Size,
		MimeType: contentType,
	}
	if err := ctrl.Repository.PhotoRepo.Create(&photo); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Object %s stored but row insert failed: %v", key, err)
		ctrl.triggerReconcile(ctx, task.ID)
		utils.JSON500(c, "Failed to upload photo", err)
		return
	}

	if err := ctrl.Repository.ReconcileRepo.MarkDone(task.ID); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to mark upload intent %s done: %v", task.ID, err)
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Photo] Uploaded %q (%d bytes) to folder %s as %s",
		photo.FileName, photo.FileSize, folderID, key)
	utils.JSON201(c, photo)
}

// DeletePhoto removes the object first, then the metadata row, matching the
// folder deletion ordering.
func (ctrl *Controller) DeletePhoto(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid photo ID format")
		return
	}

	photo, err := ctrl.Repository.PhotoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "Photo not found")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to fetch photo %s: %v", id, err)
		utils.JSON500(c, "Failed to delete photo", err)
		return
	}

	task := entity.ReconcileTask{
		ID:         uuid.New(),
		Op:         entity.ReconcileOpDeletePhoto,
		Status:     entity.ReconcileStatusPending,
		ObjectKeys: objectKeysJSON([]string{photo.FilePath}),
		PhotoID:    &id,
	}
	if err := ctrl.Repository.ReconcileRepo.Create(&task); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to record delete intent for photo %s: %v", id, err)
		utils.JSON500(c, "Failed to delete photo", err)
		return
	}

	if err := ctrl.Storage.RemoveObject(ctx, photo.FilePath); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to remove object %s: %v", photo.FilePath, err)
		ctrl.triggerReconcile(ctx, task.ID)
		utils.JSON500(c, "Failed to delete photo", err)
		return
	}

	if _, err := ctrl.Repository.PhotoRepo.Delete(id); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Photo] Object removed but row delete failed for %s: %v", id, err)
		ctrl.triggerReconcile(ctx, task.ID)
		utils.JSON500(c, "Failed to delete photo", err)
		return
	}

	if err := ctrl.Repository.ReconcileRepo.MarkDone(task.ID); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to mark delete intent %s done: %v", task.ID, err)
	}
	if err := ctrl.Cache.InvalidateSignedURLs(ctx, photo.FilePath); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Photo] Failed to invalidate cached URL for %s: %v", photo.FilePath, err)
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Photo] Deleted photo %s (%s)", id, photo.FilePath)
	utils.JSON200(c, gin.H{"success": true})
}
