package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// headerSize - сколько байт нужно filetype для определения типа.
const headerSize = 262

// Разрешённые типы фотографий еды
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	ErrEmptyFile       = apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым")
	ErrUnsupportedType = apperror.New(apperror.ErrCodeValidation, "разрешены только изображения JPEG, PNG, GIF и WebP")
)

// StoredPhoto - сохранённый файл с типом, определённым по содержимому.
type StoredPhoto struct {
	Path        string
	ContentType string
	Size        int64
}

// PhotoStorage отвечает за файловое хранилище изображений.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

func (s *PhotoStorage) Root() string { return s.rootPath }

func (s *PhotoStorage) MaxUploadBytes() int64 { return s.maxUploadBytes }

// SaveImage проверяет тип по магическим байтам и сохраняет файл в каталог пользователя.
// Расширение берётся из определённого типа, а не из имени файла.
func (s *PhotoStorage) SaveImage(ctx context.Context, userID uuid.UUID, r io.Reader) (*StoredPhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	header = header[:n]

	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		return nil, ErrUnsupportedType
	}

	fileName := fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().UnixNano(), kind.Extension)
	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(header), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("размер файла превышает лимит %d байт", s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return &StoredPhoto{
		Path:        filepath.ToSlash(filepath.Join(userID.String(), fileName)),
		ContentType: kind.MIME.Value,
		Size:        written,
	}, nil
}

// Delete удаляет файл из хранилища.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}
