package needy

import (
	"context"
	"time"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
)

const defaultListLimit = 100

func canManage(actor entity.Actor) bool {
	return actor.Role == valueobject.RoleAgent || actor.IsAdmin()
}

type RegisterNeedyPersonUseCase struct {
	persons repository.NeedyPersonRepository
	now     func() time.Time
}

func NewRegisterNeedyPersonUseCase(persons repository.NeedyPersonRepository) *RegisterNeedyPersonUseCase {
	return &RegisterNeedyPersonUseCase{persons: persons, now: func() time.Time { return time.Now().UTC() }}
}

// Execute регистрирует получателя. Регистрировать могут курьеры и администраторы.
func (uc *RegisterNeedyPersonUseCase) Execute(ctx context.Context, actor entity.Actor, params entity.NeedyPersonParams) (*entity.NeedyPerson, error) {
	if !canManage(actor) {
		return nil, apperror.ErrForbidden
	}
	zone := validation.NormalizeText(params.Zone)
	if err := validation.ValidateZone(zone); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	params.Zone = zone

	person, err := entity.NewNeedyPerson(actor.UserID, params, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.persons.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

type ListNeedyPersonsUseCase struct {
	persons repository.NeedyPersonRepository
}

func NewListNeedyPersonsUseCase(persons repository.NeedyPersonRepository) *ListNeedyPersonsUseCase {
	return &ListNeedyPersonsUseCase{persons: persons}
}

func (uc *ListNeedyPersonsUseCase) Execute(ctx context.Context, actor entity.Actor, zone string, limit int) ([]*entity.NeedyPerson, error) {
	if !canManage(actor) {
		return nil, apperror.ErrForbidden
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return uc.persons.List(ctx, validation.NormalizeText(zone), limit)
}
