package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

// ReportChannel - канал pg_notify, в который пишет триггер food_reports_notify.
const ReportChannel = "food_report_changes"

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

type notification struct {
	Table string                     `json:"table"`
	Op    event.Op                   `json:"op"`
	New   *persistence.FoodReportRow `json:"new"`
	Old   *persistence.FoodReportRow `json:"old"`
}

// DecodeNotification разбирает полезную нагрузку NOTIFY в событие изменения.
func DecodeNotification(payload string) (event.Change, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return event.Change{}, fmt.Errorf("некорректное событие изменения: %w", err)
	}
	if n.Table != event.TableFoodReports {
		return event.Change{}, fmt.Errorf("неизвестная таблица %q", n.Table)
	}
	if n.Op != event.OpInsert && n.Op != event.OpUpdate {
		return event.Change{}, fmt.Errorf("неизвестная операция %q", n.Op)
	}
	if n.New == nil {
		return event.Change{}, fmt.Errorf("событие без новой строки")
	}

	var old *entity.FoodReport
	if n.Old != nil {
		old = n.Old.ToEntity()
	}
	return event.NewReportChange(n.Op, old, n.New.ToEntity()), nil
}

// PGListener слушает LISTEN food_report_changes и публикует события в брокер.
type PGListener struct {
	dsn       string
	publisher Publisher
	reports   repository.FoodReportRepository
}

// NewPGListener создаёт слушателя. reports опционален: через него событие дополняется
// данными отеля и курьера, которых нет в строке таблицы.
func NewPGListener(dsn string, publisher Publisher, reports repository.FoodReportRepository) *PGListener {
	return &PGListener{dsn: dsn, publisher: publisher, reports: reports}
}

func (l *PGListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Log.WithField("event", ev).WithError(err).Warn("состояние LISTEN соединения изменилось")
		}
	})
	defer listener.Close()

	if err := listener.Listen(ReportChannel); err != nil {
		return fmt.Errorf("listen %s: %w", ReportChannel, err)
	}
	logger.Log.WithField("channel", ReportChannel).Info("подписка на изменения отчётов запущена")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// соединение переустановлено, события за время разрыва потеряны
				logger.Log.Warn("LISTEN соединение переустановлено")
				continue
			}
			l.handle(ctx, n.Extra)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				logger.Log.WithError(err).Warn("ping LISTEN соединения не прошёл")
			}
		}
	}
}

func (l *PGListener) handle(ctx context.Context, payload string) {
	change, err := DecodeNotification(payload)
	if err != nil {
		logger.Log.WithError(err).Error("не удалось разобрать событие изменения")
		return
	}
	l.enrich(ctx, change)
	l.publisher.Publish(change)
}

func (l *PGListener) enrich(ctx context.Context, change event.Change) {
	if l.reports == nil {
		return
	}
	current, err := l.reports.GetByID(ctx, change.New.ID)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"report_id": change.New.ID}).WithError(err).
			Debug("событие отправлено без данных отеля")
		return
	}
	for _, r := range []*entity.FoodReport{change.Old, change.New} {
		if r == nil {
			continue
		}
		r.HotelName = current.HotelName
		r.HotelAddress = current.HotelAddress
		r.PickupLocation = current.PickupLocation
		if r.AssignedAgentID != nil && current.IsAssignedTo(*r.AssignedAgentID) {
			r.AgentName = current.AgentName
		}
		if r.Description == nil {
			r.Description = current.Description
		}
	}
}
