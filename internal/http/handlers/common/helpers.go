package common

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/http/middleware"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// CurrentActor извлекает пользователя и роль, установленные AuthMiddleware.
func CurrentActor(c *gin.Context) (entity.Actor, error) {
	rawID, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return entity.Actor{}, apperror.ErrUnauthorized
	}

	rawRole, _ := c.Get(middleware.ContextRoleKey)
	role, ok := rawRole.(valueobject.Role)
	if !ok {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	return entity.Actor{UserID: userID, Role: role}, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, "параметр "+paramName+" должен быть валидным UUID")
	}
	return parsed, nil
}

// Fail регистрирует ошибку для ErrorHandler и отправляет конверт с ошибкой.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.Error(c, err)
}

// ParseIntQuery безопасно читает целочисленный query параметр.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// ParseFloatQuery возвращает nil, если параметр отсутствует.
func ParseFloatQuery(c *gin.Context, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "параметр "+key+" должен быть числом")
	}
	return &parsed, nil
}

// ParseListQuery разбирает значения вида ?status=a,b&status=c.
func ParseListQuery(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// BindError переводит ошибку привязки тела запроса в ошибку валидации.
func BindError(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные данные запроса")
}
