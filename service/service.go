package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-library/constant"
	"video-library/dto"
	"video-library/pkg/analyzer"
	"video-library/pkg/metrics"
	"video-library/repository"
)

var (
	ErrNoFile          = errors.New("no video file part")
	ErrEmptyFilename   = errors.New("no selected file")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrStorage         = errors.New("storage error")
	ErrNotFound        = errors.New("video not found")
)

var allowedExtensions = map[string]struct{}{
	"mp4": {},
	"avi": {},
	"mov": {},
	"mkv": {},
}

// AllowedFile reports whether the text after the last dot of filename is an accepted video extension.
func AllowedFile(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// Notifier receives an event once a video object is stored.
type Notifier interface {
	PublishUpload(ctx context.Context, event dto.UploadEvent) error
}

type UploadService interface {
	Upload(ctx context.Context, req dto.UploadRequest) (*dto.UploadResult, error)
}

type uploadService struct {
	store      repository.ObjectStore
	extractor  ThumbnailExtractor
	analyzer   analyzer.Analyzer
	notifier   Notifier
	scratchDir string
	metrics    *metrics.Metrics
}

// NewUploadService wires the upload workflow. extractor, analyzer, notifier and m may be nil; the matching steps
// are then skipped.
func NewUploadService(
	store repository.ObjectStore,
	extractor ThumbnailExtractor,
	analyzer analyzer.Analyzer,
	notifier Notifier,
	scratchDir string,
	m *metrics.Metrics,
) UploadService {
	return &uploadService{
		store:      store,
		extractor:  extractor,
		analyzer:   analyzer,
		notifier:   notifier,
		scratchDir: scratchDir,
		metrics:    m,
	}
}

func (s *uploadService) Upload(ctx context.Context, req dto.UploadRequest) (result *dto.UploadResult, err error) {
	switch {
	case req.File == nil:
		return nil, ErrNoFile
	case req.Filename == "":
		return nil, ErrEmptyFilename
	case !AllowedFile(req.Filename):
		return nil, ErrInvalidFileType
	}

	start := time.Now()
	defer func() { s.observeUpload(start, err) }()

	id := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("video_id", id).Logger()
	ctx = logger.WithContext(ctx)
	zerolog.Ctx(ctx).Info().Str("file_name", req.Filename).Msg("processing upload")

	tempDir, err := os.MkdirTemp(s.scratchDir, "upload-*")
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create scratch dir")
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			zerolog.Ctx(ctx).Error().Err(rmErr).Str("dir", tempDir).Msg("failed to remove scratch dir")
		}
	}()

	videoPath := filepath.Join(tempDir, constant.VideoObject)
	size, err := writeScratchFile(videoPath, req.File)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save upload to scratch file")
		return nil, err
	}

	videoKey := repository.ObjectKey(id, constant.VideoObject)
	zerolog.Ctx(ctx).Info().Str("key", videoKey).Int64("size", size).Msg("storing video")
	videoURL, err := s.putFile(ctx, videoKey, videoPath, req.ContentType)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", videoKey).Msg("failed to store video")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	result = &dto.UploadResult{ID: id, VideoURL: videoURL}
	result.Outcomes = append(result.Outcomes,
		s.storeThumbnail(ctx, result, videoPath, tempDir),
		s.storeMetadata(ctx, result, videoKey),
		s.notify(ctx, dto.UploadEvent{
			VideoID:     id,
			ObjectPath:  videoKey,
			VideoURI:    s.store.Reference(videoKey),
			ContentType: req.ContentType,
			FileName:    req.Filename,
		}),
	)

	for _, outcome := range result.Outcomes {
		s.observeStep(outcome)
	}
	zerolog.Ctx(ctx).Info().Interface("outcomes", result.Outcomes).Msg("upload completed")

	return result, nil
}

func (s *uploadService) storeThumbnail(ctx context.Context, result *dto.UploadResult, videoPath, outputDir string) dto.StepOutcome {
	if s.extractor == nil {
		return skipped(constant.StepThumbnail, "no extractor configured")
	}

	imagePath, err := s.extractor.ExtractFirstFrame(ctx, videoPath, outputDir)
	if errors.Is(err, ErrEmptyVideo) {
		zerolog.Ctx(ctx).Warn().Msg("empty video, no thumbnail")
		return skipped(constant.StepThumbnail, err.Error())
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to extract thumbnail")
		return failed(constant.StepThumbnail, err)
	}

	thumbnailURL, err := s.putFile(ctx, repository.ObjectKey(result.ID, constant.ThumbnailObject), imagePath, constant.ContentTypeJPEG)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to store thumbnail")
		return failed(constant.StepThumbnail, err)
	}

	result.ThumbnailURL = thumbnailURL
	return succeeded(constant.StepThumbnail)
}

func (s *uploadService) storeMetadata(ctx context.Context, result *dto.UploadResult, videoKey string) dto.StepOutcome {
	if s.analyzer == nil {
		return skipped(constant.StepMetadata, "metadata generation disabled")
	}

	metadata, err := s.analyzer.Analyze(ctx, s.store.Reference(videoKey))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to generate metadata")
		return failed(constant.StepMetadata, err)
	}

	body, err := json.Marshal(metadata)
	if err != nil {
		return failed(constant.StepMetadata, err)
	}

	key := repository.ObjectKey(result.ID, constant.MetadataObject)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), constant.ContentTypeJSON); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to store metadata")
		return failed(constant.StepMetadata, err)
	}

	result.Metadata = metadata
	return succeeded(constant.StepMetadata)
}

func (s *uploadService) notify(ctx context.Context, event dto.UploadEvent) dto.StepOutcome {
	if s.notifier == nil {
		return skipped(constant.StepNotify, "no notifier configured")
	}
	if err := s.notifier.PublishUpload(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to publish upload event")
		return failed(constant.StepNotify, err)
	}
	return succeeded(constant.StepNotify)
}

func (s *uploadService) putFile(ctx context.Context, key, path, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return s.store.Put(ctx, key, f, info.Size(), contentType)
}

func (s *uploadService) observeUpload(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.Uploads.WithLabelValues(result).Inc()
	s.metrics.UploadDuration.Observe(time.Since(start).Seconds())
}

func (s *uploadService) observeStep(outcome dto.StepOutcome) {
	if s.metrics == nil {
		return
	}
	s.metrics.StepOutcomes.WithLabelValues(string(outcome.Step), string(outcome.Status)).Inc()
}

func writeScratchFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write scratch file: %w", err)
	}
	return n, nil
}

func succeeded(step constant.StepName) dto.StepOutcome {
	return dto.StepOutcome{Step: step, Status: constant.StepStatusSucceeded}
}

func failed(step constant.StepName, err error) dto.StepOutcome {
	return dto.StepOutcome{Step: step, Status: constant.StepStatusFailed, Error: err.Error()}
}

func skipped(step constant.StepName, reason string) dto.StepOutcome {
	return dto.StepOutcome{Step: step, Status: constant.StepStatusSkipped, Error: reason}
}
