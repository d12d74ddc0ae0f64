package dto

import (
	"io"

	"video-library/constant"
	"video-library/entities"
)

type UploadRequest struct {
	Filename    string
	ContentType string
	File        io.Reader
}

// StepOutcome records what happened to one best-effort enrichment step of an upload.
type StepOutcome struct {
	Step   constant.StepName   `json:"step"`
	Status constant.StepStatus `json:"status"`
	Error  string              `json:"error,omitempty"`
}

type UploadResult struct {
	ID           string             `json:"video_id"`
	VideoURL     string             `json:"video_url"`
	ThumbnailURL string             `json:"thumbnail_url,omitempty"`
	Metadata     *entities.Metadata `json:"metadata,omitempty"`
	Outcomes     []StepOutcome      `json:"outcomes"`
}

func (r *UploadResult) Outcome(step constant.StepName) (StepOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Step == step {
			return o, true
		}
	}
	return StepOutcome{}, false
}

type UploadEvent struct {
	VideoID     string `json:"videoId"`
	ObjectPath  string `json:"objectPath"`
	VideoURI    string `json:"videoUri"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}
