package handlers

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/storage"
)

// MediaPrefix - URL, под которым раздаются сохранённые фотографии.
const MediaPrefix = "/media"

// MediaHandler загружает фотографии еды для поля image_url отчёта.
type MediaHandler struct {
	storage *storage.PhotoStorage
}

func NewMediaHandler(storage *storage.PhotoStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// UploadPhoto обрабатывает POST /api/media/photos (multipart, поле file).
func (h *MediaHandler) UploadPhoto(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	// запас на заголовки multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.storage.MaxUploadBytes()+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, apperror.Wrap(err, apperror.ErrCodeValidation, "поле file обязательно"))
		return
	}
	if file.Size == 0 {
		common.Fail(c, storage.ErrEmptyFile)
		return
	}

	src, err := file.Open()
	if err != nil {
		common.Fail(c, err)
		return
	}
	defer src.Close()

	stored, err := h.storage.SaveImage(c.Request.Context(), actor.UserID, src)
	if err != nil {
		common.Fail(c, err)
		return
	}

	response.Created(c, dto.PhotoResponse{
		URL:         absoluteURL(c.Request, path.Join(MediaPrefix, stored.Path)),
		Path:        stored.Path,
		ContentType: stored.ContentType,
		Size:        stored.Size,
	})
}

// DeletePhoto обрабатывает DELETE /api/media/photos/:owner/:file. Удалять можно только свои файлы.
func (h *MediaHandler) DeletePhoto(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	owner, err := uuid.Parse(c.Param("owner"))
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeBadRequest, "некорректный путь файла"))
		return
	}
	if owner != actor.UserID && !actor.IsAdmin() {
		common.Fail(c, apperror.New(apperror.ErrCodeForbidden, "у вас нет прав на удаление этого файла"))
		return
	}

	name := path.Base(c.Param("file"))
	if err := h.storage.Delete(c.Request.Context(), path.Join(owner.String(), name)); err != nil {
		common.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// absoluteURL собирает публичный URL с учётом прокси: image_url должен быть абсолютным.
func absoluteURL(r *http.Request, p string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host + p
}
