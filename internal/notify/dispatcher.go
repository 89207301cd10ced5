package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/goroutine"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

const defaultSinkTimeout = 5 * time.Second

// Sink доставляет уведомление пользователю по одному каналу (WebSocket, Telegram).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// InstanceScoped помечает канал, который доставляет только подключениям этого процесса.
// Для такого канала ключ повтора включает идентификатор экземпляра, и пользователь
// с вкладками на разных экземплярах получает уведомление на каждом.
type InstanceScoped interface {
	InstanceScoped() bool
}

// EventSink получает каждое событие жизненного цикла один раз, без привязки к получателю.
type EventSink interface {
	Name() string
	Publish(ctx context.Context, c event.Change) error
}

type Dispatcher struct {
	fanout      *Fanout
	dedupe      Deduper
	sinks       []Sink
	eventSinks  []EventSink
	sinkTimeout time.Duration
	instanceID  string
}

func NewDispatcher(fanout *Fanout, dedupe Deduper, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		fanout:      fanout,
		dedupe:      dedupe,
		sinks:       sinks,
		sinkTimeout: defaultSinkTimeout,
		instanceID:  uuid.NewString(),
	}
}

func (d *Dispatcher) AddEventSink(sink EventSink) {
	d.eventSinks = append(d.eventSinks, sink)
}

// Run читает ленту изменений до отмены ctx.
func (d *Dispatcher) Run(ctx context.Context, feed repository.ChangeFeed) error {
	changes, err := feed.Subscribe(ctx, event.TableFoodReports, event.All)
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{
		"sinks":       len(d.sinks),
		"instance_id": d.instanceID,
	}).Info("рассылка уведомлений запущена")

	for c := range changes {
		d.Handle(ctx, c)
	}
	return nil
}

// Handle рассылает уведомления по одному событию и возвращает число получателей,
// которым ушло уведомление хотя бы по одному каналу.
func (d *Dispatcher) Handle(ctx context.Context, c event.Change) int {
	if len(d.eventSinks) > 0 {
		if first, err := d.firstSeen(ctx, "event:"+c.ID); err == nil && first {
			for _, sink := range d.eventSinks {
				d.publish(ctx, sink, c)
			}
		}
	}

	delivered := 0
	for _, delivery := range d.fanout.OnChange(c) {
		sent := false
		for _, sink := range d.sinks {
			key := DeliveryKey(c.ID, delivery.UserID, d.channel(sink))
			first, err := d.firstSeen(ctx, key)
			if err != nil {
				// при недоступном хранилище ключей уведомление пропускается: не более одного раза
				logger.Log.WithFields(logrus.Fields{
					"event_id": c.ID,
					"user_id":  delivery.UserID,
					"sink":     sink.Name(),
				}).WithError(err).Warn("не удалось проверить повтор уведомления")
				continue
			}
			if !first {
				continue
			}
			d.deliver(ctx, sink, delivery)
			sent = true
		}
		if sent {
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) channel(sink Sink) string {
	if scoped, ok := sink.(InstanceScoped); ok && scoped.InstanceScoped() {
		return sink.Name() + "@" + d.instanceID
	}
	return sink.Name()
}

func (d *Dispatcher) firstSeen(ctx context.Context, key string) (bool, error) {
	if d.dedupe == nil {
		return true, nil
	}
	return d.dedupe.FirstSeen(ctx, key)
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, delivery Delivery) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
	defer cancel()

	err := goroutine.Guard(sink.Name(), func() error {
		return sink.Deliver(sendCtx, delivery)
	})
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"sink":      sink.Name(),
			"user_id":   delivery.UserID,
			"kind":      delivery.Alert.Kind,
			"report_id": delivery.Alert.ReportID,
		}).WithError(err).Warn("не удалось доставить уведомление")
	}
}

func (d *Dispatcher) publish(ctx context.Context, sink EventSink, c event.Change) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
	defer cancel()

	err := goroutine.Guard(sink.Name(), func() error {
		return sink.Publish(sendCtx, c)
	})
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"sink":     sink.Name(),
			"event_id": c.ID,
		}).WithError(err).Warn("не удалось опубликовать событие")
	}
}
