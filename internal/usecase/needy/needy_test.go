package needy_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/needy"
)

type mockPersons struct {
	persons []*entity.NeedyPerson
}

func (m *mockPersons) Create(_ context.Context, p *entity.NeedyPerson) error {
	m.persons = append(m.persons, p)
	return nil
}

func (m *mockPersons) CreateBatch(_ context.Context, persons []*entity.NeedyPerson) error {
	m.persons = append(m.persons, persons...)
	return nil
}

func (m *mockPersons) List(_ context.Context, zone string, limit int) ([]*entity.NeedyPerson, error) {
	var out []*entity.NeedyPerson
	for _, p := range m.persons {
		if zone == "" || p.Zone == zone {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestRegisterNeedyPerson(t *testing.T) {
	repo := &mockPersons{}
	uc := needy.NewRegisterNeedyPersonUseCase(repo)
	agent := entity.Actor{UserID: uuid.New(), Role: valueobject.RoleAgent}

	person, err := uc.Execute(context.Background(), agent, entity.NeedyPersonParams{Name: "  Иван Петров ", Zone: " north "})
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", person.Name)
	assert.Equal(t, "north", person.Zone)
	assert.Equal(t, 1, person.FamilySize)
	assert.Equal(t, agent.UserID, person.RegisteredBy)

	_, err = uc.Execute(context.Background(), agent, entity.NeedyPersonParams{Name: "И"})
	assert.True(t, apperror.IsValidation(err))

	hotel := entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel}
	_, err = uc.Execute(context.Background(), hotel, entity.NeedyPersonParams{Name: "Иван"})
	assert.True(t, apperror.IsForbidden(err))
}

func TestListNeedyPersons(t *testing.T) {
	repo := &mockPersons{}
	admin := entity.Actor{UserID: uuid.New(), Role: valueobject.RoleAdmin}
	register := needy.NewRegisterNeedyPersonUseCase(repo)
	for _, zone := range []string{"north", "south", "north"} {
		_, err := register.Execute(context.Background(), admin, entity.NeedyPersonParams{Name: "Семья", Zone: zone})
		require.NoError(t, err)
	}

	list := needy.NewListNeedyPersonsUseCase(repo)
	north, err := list.Execute(context.Background(), admin, "north", 0)
	require.NoError(t, err)
	assert.Len(t, north, 2)

	_, err = list.Execute(context.Background(), entity.Actor{UserID: uuid.New(), Role: valueobject.RoleHotel}, "", 0)
	assert.True(t, apperror.IsForbidden(err))
}
