package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:          http.StatusNotFound,
		ErrCodeValidation:        http.StatusBadRequest,
		ErrCodeInvalidTransition: http.StatusConflict,
		ErrCodeClaimConflict:     http.StatusConflict,
		ErrCodeTransport:         http.StatusServiceUnavailable,
		ErrCodeForbidden:         http.StatusForbidden,
		ErrCodeInternal:          http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, code)
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("claim: %w", ErrClaimConflict)

	assert.True(t, IsClaimConflict(err))
	assert.False(t, IsInvalidTransition(err))
	assert.Equal(t, ErrCodeClaimConflict, CodeOf(err))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("boom")))
}

func TestTransportIsRetryable(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeTransport, "ошибка связи с хранилищем")

	assert.True(t, err.Retryable())
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, ErrReportNotFound.Retryable())
}
