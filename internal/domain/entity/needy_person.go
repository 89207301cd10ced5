package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
)

type NeedyPerson struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Address      string
	Zone         string
	FamilySize   int
	DietaryNotes *string
	RegisteredBy uuid.UUID
	CreatedAt    time.Time
}

type NeedyPersonParams struct {
	Name         string
	Phone        string
	Address      string
	Zone         string
	FamilySize   int
	DietaryNotes *string
}

func NewNeedyPerson(registeredBy uuid.UUID, params NeedyPersonParams, now time.Time) (*NeedyPerson, error) {
	name := validation.NormalizeText(params.Name)
	if err := validation.ValidateDisplayName(name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	phone := validation.NormalizeText(params.Phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	address := validation.NormalizeText(params.Address)
	if err := validation.ValidateLength("адрес", address, 0, validation.MaxAddressLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if params.FamilySize == 0 {
		params.FamilySize = 1
	}
	if err := validation.ValidateFamilySize(params.FamilySize); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	notes := validation.NormalizeOptional(params.DietaryNotes)
	if notes != nil {
		if err := validation.ValidateLength("пожелания по питанию", *notes, 0, validation.MaxDietaryNotesLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	return &NeedyPerson{
		ID:           uuid.New(),
		Name:         name,
		Phone:        phone,
		Address:      address,
		Zone:         validation.NormalizeText(params.Zone),
		FamilySize:   params.FamilySize,
		DietaryNotes: notes,
		RegisteredBy: registeredBy,
		CreatedAt:    now,
	}, nil
}
