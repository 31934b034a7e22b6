package utils

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateObjectKey composes the storage key for an uploaded file:
// {folderID}/{unix-millis}-{random token}{.ext}. Keys are never reused;
// the original extension is kept so signed URLs serve with a sensible name.
func GenerateObjectKey(folderID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	token := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s/%d-%s%s", folderID, time.Now().UnixMilli(), token, ext)
}
