package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"video-library/constant"
)

var ErrEmptyVideo = errors.New("video file is empty")

type ThumbnailExtractor interface {
	ExtractFirstFrame(ctx context.Context, videoPath, outputDir string) (string, error)
}

type ffmpegExtractor struct {
	binary string
}

// NewFFmpegExtractor returns an extractor that shells out to ffmpeg. An empty binary means "ffmpeg" from PATH.
func NewFFmpegExtractor(binary string) ThumbnailExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return ffmpegExtractor{binary: binary}
}

func (e ffmpegExtractor) ExtractFirstFrame(ctx context.Context, videoPath, outputDir string) (string, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return "", fmt.Errorf("stat video: %w", err)
	}
	if info.Size() == 0 {
		return "", ErrEmptyVideo
	}

	outputPath := filepath.Join(outputDir, constant.ThumbnailObject)
	ffmpegArgs := []string{
		"-y",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, e.binary, ffmpegArgs...)
	zerolog.Ctx(ctx).Debug().Msgf("executing: %s %s", e.binary, strings.Join(ffmpegArgs, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("output", string(output)).Msg("ffmpeg failed")
		return "", fmt.Errorf("ffmpeg: %w", err)
	}

	frame, err := os.Stat(outputPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg produced no frame: %w", err)
	}
	if frame.Size() == 0 {
		return "", errors.New("ffmpeg produced an empty frame")
	}
	return outputPath, nil
}
