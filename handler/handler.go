package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"video-library/constant"
	"video-library/dto"
	"video-library/entities"
	"video-library/repository"
	"video-library/service"
)

const (
	msgUploaded      = "Video uploaded successfully!"
	msgNoFilePart    = "No video file part"
	msgNoSelection   = "No selected file"
	msgInvalidType   = "Invalid file type"
	msgTooLarge      = "File too large"
	msgUploadFailed  = "An error occurred while uploading the video."
	msgListFailed    = "Error retrieving video list"
	msgVideoNotFound = "Video not found"
	msgVideoFailed   = "An error occurred while loading the video."
)

// Form fields accepted for the uploaded file, in order of preference.
var uploadFields = []string{"video", "file"}

// Parts bigger than this are spooled to disk by the multipart reader.
const multipartMemory = 32 << 20

type ServiceDependencies struct {
	UploadService  service.UploadService
	CatalogService service.CatalogService
	Store          repository.ObjectStore
	MaxUploadSize  int64
}

type Handler struct {
	deps ServiceDependencies
}

func New(deps ServiceDependencies) *Handler {
	return &Handler{deps: deps}
}

func (h *Handler) Index(c *gin.Context) {
	messages := flashes(c)
	videos, err := h.deps.CatalogService.List(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list videos")
		messages = append(messages, msgListFailed)
		videos = nil
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Title":    "Videos",
		"Messages": messages,
		"Videos":   videos,
	})
}

func (h *Handler) UploadForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload", gin.H{
		"Title":    "Upload",
		"Messages": flashes(c),
	})
}

func (h *Handler) Upload(c *gin.Context) {
	result, err := h.upload(c)
	if err != nil {
		flash(c, uploadErrorMessage(err))
		c.Redirect(http.StatusFound, "/upload")
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().Str("video_id", result.ID).Msg("video uploaded")
	flash(c, msgUploaded)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Watch(c *gin.Context) {
	video, err := h.deps.CatalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flash(c, msgVideoNotFound)
		} else {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("video_id", c.Param("id")).Msg("failed to load video")
			flash(c, msgVideoFailed)
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "watch", gin.H{
		"Title":    video.Title,
		"Messages": flashes(c),
		"Video":    video,
	})
}

// Media streams a stored object. Backends without public URLs (local, private buckets) play back through it.
func (h *Handler) Media(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, err := h.deps.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) || errors.Is(err, repository.ErrInvalidKey) {
			c.Status(http.StatusNotFound)
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("key", key).Msg("failed to open object")
		c.Status(http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", mediaContentType(key))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, path.Base(key), time.Time{}, rs)
		return
	}
	c.DataFromReader(http.StatusOK, -1, mediaContentType(key), rc, nil)
}

func (h *Handler) APIUpload(c *gin.Context) {
	result, err := h.upload(c)
	if err != nil {
		c.JSON(uploadErrorStatus(err), gin.H{"error": uploadErrorMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":        "uploaded",
		"video_id":      result.ID,
		"video_url":     result.VideoURL,
		"thumbnail_url": result.ThumbnailURL,
		"metadata":      result.Metadata,
		"outcomes":      result.Outcomes,
	})
}

func (h *Handler) APIList(c *gin.Context) {
	videos, err := h.deps.CatalogService.List(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list videos")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgListFailed})
		return
	}
	if videos == nil {
		videos = []entities.Video{}
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *Handler) upload(c *gin.Context) (*dto.UploadResult, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.deps.MaxUploadSize)

	req, cleanup, err := uploadRequest(c.Request)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Info().Err(err).Msg("rejected upload form")
		return nil, err
	}
	defer cleanup()

	result, err := h.deps.UploadService.Upload(c.Request.Context(), req)
	if err != nil {
		if isClientError(err) {
			zerolog.Ctx(c.Request.Context()).Info().Err(err).Str("file_name", req.Filename).Msg("rejected upload")
		} else {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("file_name", req.Filename).Msg("upload failed")
		}
		return nil, err
	}
	return result, nil
}

// uploadRequest extracts the uploaded file from a multipart form. A missing part yields a request without File;
// a part sent with an empty filename yields a request without Filename.
func uploadRequest(r *http.Request) (dto.UploadRequest, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return dto.UploadRequest{}, noop, nil
		}
		return dto.UploadRequest{}, noop, err
	}

	var header *multipart.FileHeader
	for _, field := range uploadFields {
		if files := r.MultipartForm.File[field]; len(files) > 0 {
			header = files[0]
			break
		}
		if _, ok := r.MultipartForm.Value[field]; ok {
			return dto.UploadRequest{File: strings.NewReader("")}, noop, nil
		}
	}
	if header == nil {
		return dto.UploadRequest{}, noop, nil
	}

	f, err := header.Open()
	if err != nil {
		return dto.UploadRequest{}, noop, err
	}
	return dto.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		File:        f,
	}, func() { f.Close() }, nil
}

func isClientError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) ||
		errors.Is(err, service.ErrNoFile) ||
		errors.Is(err, service.ErrEmptyFilename) ||
		errors.Is(err, service.ErrInvalidFileType)
}

func uploadErrorMessage(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return msgTooLarge
	case errors.Is(err, service.ErrNoFile):
		return msgNoFilePart
	case errors.Is(err, service.ErrEmptyFilename):
		return msgNoSelection
	case errors.Is(err, service.ErrInvalidFileType):
		return msgInvalidType
	default:
		return msgUploadFailed
	}
}

func uploadErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case isClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func mediaContentType(key string) string {
	switch path.Base(key) {
	case constant.VideoObject:
		return constant.ContentTypeMP4
	case constant.ThumbnailObject:
		return constant.ContentTypeJPEG
	case constant.MetadataObject:
		return constant.ContentTypeJSON
	}
	return "application/octet-stream"
}

func flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to save session")
	}
}

func flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to save session")
	}

	messages := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
