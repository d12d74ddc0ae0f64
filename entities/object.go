package entities

import "time"

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}
