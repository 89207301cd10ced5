package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// Fixtures - содержимое YAML файла с тестовыми данными.
type Fixtures struct {
	Hotels  []HotelFixture  `yaml:"hotels"`
	Agents  []AgentFixture  `yaml:"agents"`
	Needy   []NeedyFixture  `yaml:"needy"`
	Reports []ReportFixture `yaml:"reports"`
}

type HotelFixture struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Address   string   `yaml:"address"`
	City      string   `yaml:"city"`
	Zone      string   `yaml:"zone"`
	Phone     string   `yaml:"phone"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
}

type AgentFixture struct {
	ID             string `yaml:"id"`
	DisplayName    string `yaml:"display_name"`
	Phone          string `yaml:"phone"`
	Zone           string `yaml:"zone"`
	Active         *bool  `yaml:"active"`
	TelegramChatID *int64 `yaml:"telegram_chat_id"`
}

type NeedyFixture struct {
	Name         string  `yaml:"name"`
	Phone        string  `yaml:"phone"`
	Address      string  `yaml:"address"`
	Zone         string  `yaml:"zone"`
	FamilySize   int     `yaml:"family_size"`
	DietaryNotes *string `yaml:"dietary_notes"`
	RegisteredBy string  `yaml:"registered_by"`
}

// ReportFixture задаёт время выдачи и срок годности относительно момента загрузки.
type ReportFixture struct {
	ID          string  `yaml:"id"`
	HotelID     string  `yaml:"hotel_id"`
	FoodName    string  `yaml:"food_name"`
	Category    string  `yaml:"category"`
	Quantity    int     `yaml:"quantity"`
	PickupIn    string  `yaml:"pickup_in"`
	ExpiresIn   string  `yaml:"expires_in"`
	Description *string `yaml:"description"`
}

// SeedSummary - сколько записей создано или обновлено.
type SeedSummary struct {
	Hotels  int
	Agents  int
	Needy   int
	Reports int
	Skipped int
}

// SeedService загружает тестовые данные в базу.
type SeedService struct {
	hotels  repository.HotelRepository
	agents  repository.AgentRepository
	persons repository.NeedyPersonRepository
	reports repository.FoodReportRepository
	now     func() time.Time
}

func NewSeedService(
	hotels repository.HotelRepository,
	agents repository.AgentRepository,
	persons repository.NeedyPersonRepository,
	reports repository.FoodReportRepository,
) *SeedService {
	return &SeedService{
		hotels:  hotels,
		agents:  agents,
		persons: persons,
		reports: reports,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DecodeFixtures читает YAML. Неизвестные поля считаются ошибкой, чтобы опечатки не терялись молча.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: не удалось разобрать фикстуры: %w", err)
	}
	return &f, nil
}

// Seed сохраняет фикстуры. Отели и курьеры обновляются по id, отчёты с уже
// существующим id пропускаются, получатели добавляются при каждом запуске.
func (s *SeedService) Seed(ctx context.Context, f *Fixtures) (SeedSummary, error) {
	var sum SeedSummary
	now := s.now()

	hotels := make(map[uuid.UUID]*entity.Hotel, len(f.Hotels))
	for i, h := range f.Hotels {
		id, err := parseFixtureID("hotels", i, h.ID)
		if err != nil {
			return sum, err
		}
		hotel, err := entity.NewHotel(id, entity.HotelProfileParams{
			Name:      h.Name,
			Address:   h.Address,
			City:      h.City,
			Zone:      h.Zone,
			Phone:     h.Phone,
			Latitude:  h.Latitude,
			Longitude: h.Longitude,
		}, now)
		if err != nil {
			return sum, fmt.Errorf("seed: hotels[%d]: %w", i, err)
		}
		if err := s.hotels.Upsert(ctx, hotel); err != nil {
			return sum, fmt.Errorf("seed: hotels[%d]: %w", i, err)
		}
		hotels[id] = hotel
		sum.Hotels++
	}

	for i, a := range f.Agents {
		id, err := parseFixtureID("agents", i, a.ID)
		if err != nil {
			return sum, err
		}
		agent, err := entity.NewDeliveryAgent(id, entity.AgentProfileParams{
			DisplayName: a.DisplayName,
			Phone:       a.Phone,
			Zone:        a.Zone,
			Active:      a.Active,
		}, now)
		if err != nil {
			return sum, fmt.Errorf("seed: agents[%d]: %w", i, err)
		}
		if err := s.agents.Upsert(ctx, agent); err != nil {
			return sum, fmt.Errorf("seed: agents[%d]: %w", i, err)
		}
		if a.TelegramChatID != nil {
			if err := s.agents.LinkTelegram(ctx, id, *a.TelegramChatID); err != nil {
				return sum, fmt.Errorf("seed: agents[%d]: %w", i, err)
			}
		}
		sum.Agents++
	}

	persons := make([]*entity.NeedyPerson, 0, len(f.Needy))
	for i, n := range f.Needy {
		registeredBy, err := parseFixtureID("needy", i, n.RegisteredBy)
		if err != nil {
			return sum, err
		}
		person, err := entity.NewNeedyPerson(registeredBy, entity.NeedyPersonParams{
			Name:         n.Name,
			Phone:        n.Phone,
			Address:      n.Address,
			Zone:         n.Zone,
			FamilySize:   n.FamilySize,
			DietaryNotes: n.DietaryNotes,
		}, now)
		if err != nil {
			return sum, fmt.Errorf("seed: needy[%d]: %w", i, err)
		}
		persons = append(persons, person)
	}
	if len(persons) > 0 {
		if err := s.persons.CreateBatch(ctx, persons); err != nil {
			return sum, fmt.Errorf("seed: needy: %w", err)
		}
		sum.Needy = len(persons)
	}

	for i, r := range f.Reports {
		created, err := s.seedReport(ctx, i, r, hotels, now)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Reports++
		} else {
			sum.Skipped++
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"hotels":  sum.Hotels,
		"agents":  sum.Agents,
		"needy":   sum.Needy,
		"reports": sum.Reports,
		"skipped": sum.Skipped,
	}).Info("фикстуры загружены")
	return sum, nil
}

func (s *SeedService) seedReport(ctx context.Context, i int, r ReportFixture, hotels map[uuid.UUID]*entity.Hotel, now time.Time) (bool, error) {
	var id uuid.UUID
	if r.ID != "" {
		parsed, err := parseFixtureID("reports", i, r.ID)
		if err != nil {
			return false, err
		}
		_, err = s.reports.GetByID(ctx, parsed)
		switch {
		case err == nil:
			return false, nil
		case !apperror.IsNotFound(err):
			return false, fmt.Errorf("seed: reports[%d]: %w", i, err)
		}
		id = parsed
	}

	hotelID, err := parseFixtureID("reports", i, r.HotelID)
	if err != nil {
		return false, err
	}
	hotel, ok := hotels[hotelID]
	if !ok {
		if hotel, err = s.hotels.GetByID(ctx, hotelID); err != nil {
			return false, fmt.Errorf("seed: reports[%d]: %w", i, err)
		}
	}

	pickupIn, err := parseOffset("reports", i, "pickup_in", r.PickupIn)
	if err != nil {
		return false, err
	}
	pickup := now.Add(pickupIn)

	var expiry *time.Time
	if r.ExpiresIn != "" {
		expiresIn, err := parseOffset("reports", i, "expires_in", r.ExpiresIn)
		if err != nil {
			return false, err
		}
		e := now.Add(expiresIn)
		expiry = &e
	}

	report, err := entity.NewFoodReport(hotel, entity.NewFoodReportParams{
		FoodName:            r.FoodName,
		Category:            r.Category,
		Quantity:            r.Quantity,
		PickupAvailableFrom: &pickup,
		ExpiryAt:            expiry,
		Description:         r.Description,
	}, now)
	if err != nil {
		return false, fmt.Errorf("seed: reports[%d]: %w", i, err)
	}
	if id != uuid.Nil {
		report.ID = id
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		return false, fmt.Errorf("seed: reports[%d]: %w", i, err)
	}
	return true, nil
}

func parseFixtureID(section string, i int, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed: %s[%d]: некорректный id %q: %w", section, i, raw, err)
	}
	return id, nil
}

func parseOffset(section string, i int, field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("seed: %s[%d].%s: %w", section, i, field, err)
	}
	return d, nil
}
