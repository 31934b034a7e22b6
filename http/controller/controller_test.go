package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/entity"
	"github.com/tranqh/photokeep/infra"
	"github.com/tranqh/photokeep/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/* ==================== FAKES ==================== */

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failPut  bool
	failSign map[string]bool
	failRm   bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:  make(map[string][]byte),
		failSign: make(map[string]bool),
	}
}

func (s *fakeStorage) PutObject(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if s.failPut {
		return fmt.Errorf("storage unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; exists {
		return fmt.Errorf("object %s already exists", key)
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) RemoveObject(_ context.Context, key string) error {
	if s.failRm {
		return fmt.Errorf("storage unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key) // absent key is success
	return nil
}

func (s *fakeStorage) RemoveObjects(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.RemoveObject(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStorage) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSign[key] {
		return "", fmt.Errorf("signing failed")
	}
	return "https://storage.test/" + key + "?signature=abc", nil
}

func (s *fakeStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) GetSignedURL(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *fakeCache) SetSignedURL(_ context.Context, key, url string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = url
	return nil
}

func (c *fakeCache) InvalidateSignedURLs(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	triggers []uuid.UUID
}

func (p *fakePublisher) PublishReconcileTrigger(_ context.Context, taskID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.triggers = append(p.triggers, taskID)
	return nil
}

func (p *fakePublisher) triggerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.triggers)
}

/* ==================== SETUP ==================== */

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	repo      *repository.Repository
	storage   *fakeStorage
	cache     *fakeCache
	publisher *fakePublisher
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:controller_test_%s?mode=memory&cache=shared&_fk=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Folder{}, &entity.Photo{}, &entity.ReconcileTask{}))

	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	cfg.EnvConfig.SignedURL.TTLSeconds = 3600

	env := &testEnv{
		db:        db,
		repo:      repository.NewRepository(db),
		storage:   newFakeStorage(),
		cache:     newFakeCache(),
		publisher: &fakePublisher{},
	}

	ctrl := &Controller{
		Config:     cfg,
		Repository: env.repo,
		Logger:     infra.NewNopLogger(),
		Storage:    env.storage,
		Cache:      env.cache,
		Publisher:  env.publisher,
	}

	r := gin.New()
	r.GET("/folders", ctrl.ListFolders)
	r.POST("/folders", ctrl.CreateFolder)
	r.DELETE("/folders/:id", ctrl.DeleteFolder)
	r.GET("/photos", ctrl.ListPhotos)
	r.POST("/photos", ctrl.UploadPhoto)
	r.DELETE("/photos/:id", ctrl.DeletePhoto)
	env.router = r

	return env
}

func (env *testEnv) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader = bytes.NewReader(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) doUpload(folderID, fileName, content string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fileName != "" {
		fw, _ := w.CreateFormFile("file", fileName)
		_, _ = fw.Write([]byte(content))
	}
	if folderID != "" {
		_ = w.WriteField("folderId", folderID)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/photos", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) mustCreateFolder(t *testing.T, name string, parentID *uuid.UUID, createdAt time.Time) entity.Folder {
	t.Helper()
	folder := entity.Folder{ID: uuid.New(), Name: name, ParentID: parentID, CreatedAt: createdAt}
	require.NoError(t, env.repo.FolderRepo.Create(&folder))
	return folder
}

func (env *testEnv) mustCreatePhoto(t *testing.T, folderID uuid.UUID, fileName string, createdAt time.Time) entity.Photo {
	t.Helper()
	photo := entity.Photo{
		ID:        uuid.New(),
		FolderID:  folderID,
		FileName:  fileName,
		FilePath:  fmt.Sprintf("%s/%d-%s", folderID, createdAt.UnixMilli(), fileName),
		FileSize:  int64(len(fileName)),
		MimeType:  "image/jpeg",
		CreatedAt: createdAt,
	}
	require.NoError(t, env.repo.PhotoRepo.Create(&photo))
	env.storage.objects[photo.FilePath] = []byte(fileName)
	return photo
}
