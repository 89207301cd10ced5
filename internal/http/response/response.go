package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Info переводит ошибку в тело ответа и HTTP статус. Внутренние причины наружу не отдаются.
func Info(err error) (int, *ErrorInfo) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, &ErrorInfo{
			Code:      string(appErr.Code),
			Message:   appErr.Message,
			Retryable: appErr.Retryable(),
		}
	}
	return http.StatusInternalServerError, &ErrorInfo{
		Code:    string(apperror.ErrCodeInternal),
		Message: "внутренняя ошибка сервера",
	}
}

func Error(c *gin.Context, err error) {
	status, info := Info(err)
	c.JSON(status, Response{Success: false, Error: info})
}

// ErrorWithData отправляет ошибку вместе с данными, которые помогут клиенту восстановиться.
func ErrorWithData(c *gin.Context, err error, data interface{}) {
	status, info := Info(err)
	c.JSON(status, Response{Success: false, Data: data, Error: info})
}

func abort(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, apperror.ErrCodeNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, apperror.ErrCodeForbidden, message)
}

func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      "RATE_LIMITED",
			Message:   message,
			Retryable: true,
		},
	})
}

func InternalError(c *gin.Context) {
	abort(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
}
