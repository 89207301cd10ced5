package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSaveImageDetectsType(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	userID := uuid.New()

	photo, err := s.SaveImage(context.Background(), userID, bytes.NewReader(append(pngHeader, make([]byte, 1000)...)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.True(t, strings.HasPrefix(photo.Path, userID.String()+"/"))
	assert.True(t, strings.HasSuffix(photo.Path, ".png"))
	assert.EqualValues(t, len(pngHeader)+1000, photo.Size)

	_, err = os.Stat(filepath.Join(s.Root(), photo.Path))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), photo.Path))
	_, err = os.Stat(filepath.Join(s.Root(), photo.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImageRejects(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.SaveImage(ctx, uuid.New(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.SaveImage(ctx, uuid.New(), strings.NewReader("<svg xmlns='http://www.w3.org/2000/svg'></svg>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := append(append([]byte{}, pngHeader...), make([]byte, 1024*1024)...)
	_, err = s.SaveImage(ctx, uuid.New(), bytes.NewReader(big))
	assert.True(t, apperror.IsValidation(err))
}
