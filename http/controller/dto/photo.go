package dto

import "github.com/tranqh/photokeep/entity"

// PhotoWithURL decorates a photo row with its time-limited signed retrieval
// URL. An empty URL means signing failed for that item only.
type PhotoWithURL struct {
	entity.Photo
	URL string `json:"url"`
}
