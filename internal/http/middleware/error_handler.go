package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// ErrorHandler централизованно логирует ошибки запроса, добавленные через c.Error.
// Если обработчик сам не ответил, отправляет конверт с ошибкой.
// Внутренние причины в ответ не попадают.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, info := response.Info(err)

		if logger.Log != nil {
			entry := logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"code":   info.Code,
				"status": status,
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			})
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("Request error")
			case apperror.IsClaimConflict(err):
				entry.Info("Claim conflict")
			default:
				entry.Debug("Request rejected")
			}
		}

		if !c.Writer.Written() {
			c.JSON(status, response.Response{Success: false, Error: info})
		}
	}
}
