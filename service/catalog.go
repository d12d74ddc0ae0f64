package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"video-library/constant"
	"video-library/entities"
	"video-library/pkg/metrics"
	"video-library/repository"
)

type CatalogService interface {
	List(ctx context.Context) ([]entities.Video, error)
	Get(ctx context.Context, id string) (*entities.Video, error)
}

type catalogService struct {
	store   repository.ObjectStore
	metrics *metrics.Metrics
}

func NewCatalogService(store repository.ObjectStore, m *metrics.Metrics) CatalogService {
	return &catalogService{
		store:   store,
		metrics: m,
	}
}

// List returns every complete video, newest first.
func (s *catalogService) List(ctx context.Context) ([]entities.Video, error) {
	objects, err := s.store.List(ctx, "")
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list objects")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	groups := groupByID(objects)
	videos := make([]entities.Video, 0, len(groups))
	for id, group := range groups {
		if _, ok := group[constant.VideoObject]; !ok {
			continue
		}
		videos = append(videos, s.assemble(ctx, id, group))
	}
	SortNewestFirst(videos)

	if s.metrics != nil {
		s.metrics.CatalogSize.Set(float64(len(videos)))
	}
	zerolog.Ctx(ctx).Debug().Int("objects", len(objects)).Int("videos", len(videos)).Msg("catalog listed")
	return videos, nil
}

func (s *catalogService) Get(ctx context.Context, id string) (*entities.Video, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return nil, ErrNotFound
	}

	objects, err := s.store.List(ctx, id+"/")
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", id).Msg("failed to list objects")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	group := groupByID(objects)[id]
	if _, ok := group[constant.VideoObject]; !ok {
		return nil, ErrNotFound
	}
	video := s.assemble(ctx, id, group)
	return &video, nil
}

// groupByID buckets objects by the first segment of their key. Keys without a second segment are ignored.
func groupByID(objects []entities.ObjectInfo) map[string]map[string]entities.ObjectInfo {
	groups := make(map[string]map[string]entities.ObjectInfo)
	for _, obj := range objects {
		id, name, ok := repository.SplitKey(obj.Key)
		if !ok {
			continue
		}
		if groups[id] == nil {
			groups[id] = make(map[string]entities.ObjectInfo)
		}
		groups[id][name] = obj
	}
	return groups
}

func (s *catalogService) assemble(ctx context.Context, id string, group map[string]entities.ObjectInfo) entities.Video {
	video := entities.Video{
		ID:        id,
		VideoURL:  s.store.PublicURL(repository.ObjectKey(id, constant.VideoObject)),
		CreatedAt: group[constant.VideoObject].CreatedAt,
	}
	if _, ok := group[constant.ThumbnailObject]; ok {
		video.ThumbnailURL = s.store.PublicURL(repository.ObjectKey(id, constant.ThumbnailObject))
	}

	var metadata entities.Metadata
	if _, ok := group[constant.MetadataObject]; ok {
		parsed, err := s.readMetadata(ctx, repository.ObjectKey(id, constant.MetadataObject))
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("video_id", id).Msg("unreadable metadata, using defaults")
		} else {
			metadata = *parsed
		}
	}

	applyDefaults(&metadata, id)
	video.Title = metadata.Title
	video.Description = metadata.Description
	video.Tags = metadata.Tags
	return video
}

func (s *catalogService) readMetadata(ctx context.Context, key string) (*entities.Metadata, error) {
	text, err := s.store.GetText(ctx, key)
	if err != nil {
		return nil, err
	}
	var metadata entities.Metadata
	if err := json.Unmarshal([]byte(text), &metadata); err != nil {
		return nil, errors.Join(fmt.Errorf("decode %s", key), err)
	}
	return &metadata, nil
}

func applyDefaults(metadata *entities.Metadata, id string) {
	if metadata.Title == "" {
		metadata.Title = id
	}
	if metadata.Description == "" {
		metadata.Description = constant.DefaultDescription
	}
	if metadata.Tags == nil {
		metadata.Tags = []string{}
	}
}

// SortNewestFirst orders videos by creation time descending. Videos without a timestamp go last; ties are broken by
// id so the order is stable across listings.
func SortNewestFirst(videos []entities.Video) {
	slices.SortFunc(videos, func(a, b entities.Video) int {
		aZero, bZero := a.CreatedAt.IsZero(), b.CreatedAt.IsZero()
		switch {
		case aZero && !bZero:
			return 1
		case !aZero && bZero:
			return -1
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
