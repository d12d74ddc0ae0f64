package handler

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionName = "video_library_session"

// NewRouter builds the engine serving the web pages, the JSON API and stored media.
func NewRouter(h *Handler, logger zerolog.Logger, secretKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	store := cookie.NewStore([]byte(secretKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.SetHTMLTemplate(parseTemplates())

	r.GET("/", h.Index)
	r.GET("/upload", h.UploadForm)
	r.POST("/upload", h.Upload)
	r.GET("/watch/:id", h.Watch)
	r.GET("/media/*key", h.Media)

	api := r.Group("/api/videos")
	api.GET("", h.APIList)
	api.POST("/upload", h.APIUpload)

	return r
}

// RequestLogger attaches a request-scoped logger to the request context and logs every finished request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		logger := base.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
