package dto

import "github.com/google/uuid"

type CreateFolderRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parentId"`
}
