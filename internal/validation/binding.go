package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// RegisterBindingRules регистрирует дополнительные правила для тегов binding в gin.
func RegisterBindingRules() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterRules(engine)
}

// RegisterRules добавляет правила food_category, report_status и role.
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("food_category", func(fl validator.FieldLevel) bool {
		return valueobject.FoodCategory(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
		return valueobject.ReportStatus(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return valueobject.Role(fl.Field().String()).IsValid()
	})
}
