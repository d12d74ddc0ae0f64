package entities

import (
	"time"
)

type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Video is assembled from the objects stored under one id prefix. It is never persisted as a whole.
type Video struct {
	ID           string    `json:"id"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
}

func (v Video) HasThumbnail() bool {
	return v.ThumbnailURL != ""
}
