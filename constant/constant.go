package constant

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

type StorageBackend string

const (
	StorageBackendGCS   StorageBackend = "gcs"
	StorageBackendMinIO StorageBackend = "minio"
	StorageBackendLocal StorageBackend = "local"
)

func (b StorageBackend) String() string {
	return string(b)
}

// Object names inside a video's prefix. The layout is shared with existing buckets and must not change.
const (
	VideoObject     = "video.mp4"
	ThumbnailObject = "thumbnail.jpg"
	MetadataObject  = "metadata.json"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypeJSON = "application/json"
	ContentTypeMP4  = "video/mp4"
)

type StepName string

const (
	StepThumbnail StepName = "thumbnail"
	StepMetadata  StepName = "metadata"
	StepNotify    StepName = "notify"
)

type StepStatus string

const (
	StepStatusSucceeded StepStatus = "SUCCEEDED"
	StepStatusFailed    StepStatus = "FAILED"
	StepStatusSkipped   StepStatus = "SKIPPED"
)

const DefaultDescription = "No description available."
