package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"video-library/entities"
	"video-library/repository"
)

type unreachableStore struct {
	repository.ObjectStore
}

func (unreachableStore) List(context.Context, string) ([]entities.ObjectInfo, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	addHealth(r, repository.NewLocalStore(afero.NewMemMapFs(), "/data", repository.MediaURLPrefix))

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestReadyzStoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	addHealth(r, unreachableStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
