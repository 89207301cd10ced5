package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers"
	"github.com/ignatzorin/foodrescue-backend/internal/http/middleware"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/storage"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newMediaRouter(t *testing.T, actor entity.Actor) (*gin.Engine, *storage.PhotoStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	photos, err := storage.NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	h := handlers.NewMediaHandler(photos)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	})
	r.POST("/api/media/photos", h.UploadPhoto)
	r.DELETE("/api/media/photos/:owner/:file", h.DeletePhoto)
	return r, photos
}

func multipartBody(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMediaHandler_UploadPhoto(t *testing.T) {
	hotel := entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel}
	r, photos := newMediaRouter(t, hotel)

	body, contentType := multipartBody(t, "plov.jpg", append(append([]byte{}, pngHeader...), make([]byte, 512)...))
	req := httptest.NewRequest(http.MethodPost, "/api/media/photos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Host = "food.example.org"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env struct {
		Data dto.PhotoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	// расширение берётся из содержимого, а не из имени файла
	assert.Equal(t, "image/png", env.Data.ContentType)
	assert.True(t, strings.HasSuffix(env.Data.Path, ".png"))
	assert.Equal(t, "https://food.example.org/media/"+env.Data.Path, env.Data.URL)

	_, err := os.Stat(filepath.Join(photos.Root(), env.Data.Path))
	require.NoError(t, err)

	del := httptest.NewRequest(http.MethodDelete, "/api/media/photos/"+env.Data.Path, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, del)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = os.Stat(filepath.Join(photos.Root(), env.Data.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestMediaHandler_RejectsNonImage(t *testing.T) {
	r, _ := newMediaRouter(t, entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel})

	body, contentType := multipartBody(t, "photo.png", []byte("definitely not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/media/photos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestMediaHandler_MissingFile(t *testing.T) {
	r, _ := newMediaRouter(t, entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel})

	req := httptest.NewRequest(http.MethodPost, "/api/media/photos", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaHandler_DeleteForeignPhoto(t *testing.T) {
	r, _ := newMediaRouter(t, entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel})

	req := httptest.NewRequest(http.MethodDelete, "/api/media/photos/"+uuid.NewString()+"/x.png", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthHandler_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": failingPinger{},
		"redis":    handlers.PingFunc(func(context.Context) error { return nil }),
	})
	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["redis"])
}
