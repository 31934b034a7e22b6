package controller

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tranqh/photokeep/entity"
)

func TestCreateFolder_TrimsName(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(http.MethodPost, "/folders", map[string]any{"name": "  Vacation 2026  "})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created entity.Folder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "Vacation 2026", created.Name)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Nil(t, created.ParentID)
	require.EqualValues(t, 0, created.PhotoCount)
	require.False(t, created.CreatedAt.IsZero())
}

func TestCreateFolder_EmptyNameRejected(t *testing.T) {
	env := setupTestEnv(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		rr := env.doJSON(http.MethodPost, "/folders", map[string]any{"name": name})
		require.Equal(t, http.StatusBadRequest, rr.Code, "name %q", name)
	}

	// No store mutation happened.
	var count int64
	require.NoError(t, env.db.Model(&entity.Folder{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCreateFolder_UnknownParentRejected(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(http.MethodPost, "/folders", map[string]any{
		"name":     "Child",
		"parentId": uuid.New().String(),
	})
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestCreateFolder_WithExistingParent(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.mustCreateFolder(t, "Parent", nil, time.Now())

	rr := env.doJSON(http.MethodPost, "/folders", map[string]any{
		"name":     "Child",
		"parentId": parent.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created entity.Folder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotNil(t, created.ParentID)
	require.Equal(t, parent.ID, *created.ParentID)
}

func TestListFolders_RootSetOnly(t *testing.T) {
	env := setupTestEnv(t)
	base := time.Now().Add(-time.Hour)

	older := env.mustCreateFolder(t, "Older", nil, base)
	newer := env.mustCreateFolder(t, "Newer", nil, base.Add(10*time.Minute))
	env.mustCreateFolder(t, "Nested", &older.ID, base.Add(20*time.Minute))

	rr := env.doJSON(http.MethodGet, "/folders", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var folders []entity.Folder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &folders))
	require.Len(t, folders, 2)
	require.Equal(t, newer.ID, folders[0].ID)
	require.Equal(t, older.ID, folders[1].ID)

	// parentId=null behaves the same as omitting it.
	rr = env.doJSON(http.MethodGet, "/folders?parentId=null", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var viaNull []entity.Folder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &viaNull))
	require.Len(t, viaNull, 2)
}

func TestListFolders_ByParentWithPhotoCount(t *testing.T) {
	env := setupTestEnv(t)
	base := time.Now().Add(-time.Hour)

	parent := env.mustCreateFolder(t, "Parent", nil, base)
	child := env.mustCreateFolder(t, "Child", &parent.ID, base.Add(time.Minute))
	env.mustCreatePhoto(t, child.ID, "a.jpg", base.Add(2*time.Minute))
	env.mustCreatePhoto(t, child.ID, "b.jpg", base.Add(3*time.Minute))

	rr := env.doJSON(http.MethodGet, "/folders?parentId="+parent.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var folders []entity.Folder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &folders))
	require.Len(t, folders, 1)
	require.Equal(t, child.ID, folders[0].ID)
	require.EqualValues(t, 2, folders[0].PhotoCount)
}

func TestListFolders_InvalidParentID(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(http.MethodGet, "/folders?parentId=not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteFolder_RemovesContentsFromBothStores(t *testing.T) {
	env := setupTestEnv(t)
	base := time.Now().Add(-time.Hour)

	folder := env.mustCreateFolder(t, "Doomed", nil, base)
	p1 := env.mustCreatePhoto(t, folder.ID, "a.jpg", base.Add(time.Minute))
	p2 := env.mustCreatePhoto(t, folder.ID, "b.jpg", base.Add(2*time.Minute))

	rr := env.doJSON(http.MethodDelete, "/folders/"+folder.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])

	require.False(t, env.storage.has(p1.FilePath))
	require.False(t, env.storage.has(p2.FilePath))

	count, err := env.repo.PhotoRepo.CountByFolderID(folder.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	// Second delete of the same folder is NotFound.
	rr = env.doJSON(http.MethodDelete, "/folders/"+folder.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteFolder_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(http.MethodDelete, "/folders/"+uuid.New().String(), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteFolder_ObjectRemovalFailureAborts(t *testing.T) {
	env := setupTestEnv(t)
	base := time.Now().Add(-time.Hour)

	folder := env.mustCreateFolder(t, "Sticky", nil, base)
	photo := env.mustCreatePhoto(t, folder.ID, "a.jpg", base.Add(time.Minute))

	env.storage.failRm = true
	rr := env.doJSON(http.MethodDelete, "/folders/"+folder.ID.String(), nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	// Folder and photo rows are untouched and the worker got nudged.
	_, err := env.repo.FolderRepo.FindByID(folder.ID)
	require.NoError(t, err)
	_, err = env.repo.PhotoRepo.FindByID(photo.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.publisher.triggerCount())

	// The intent stays pending for the sweep.
	var pending int64
	require.NoError(t, env.db.Model(&entity.ReconcileTask{}).
		Where("status = ?", entity.ReconcileStatusPending).Count(&pending).Error)
	require.EqualValues(t, 1, pending)
}
