package common

import (
	"database/sql"
	"errors"

	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// WrapDBError приводит ошибку драйвера к ошибке приложения: отсутствие строки
// становится notFoundErr, всё остальное считается ошибкой транспорта и может быть повторено.
func WrapDBError(err error, notFoundErr error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFoundErr != nil {
		return notFoundErr
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeTransport, message)
}
