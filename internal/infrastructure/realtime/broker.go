package realtime

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

const defaultBuffer = 64

// Broker - внутрипроцессная шина событий изменений.
// Медленный подписчик теряет события, публикация никогда не блокируется.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	buffer int
}

type subscription struct {
	table     string
	predicate event.Predicate
	ch        chan event.Change
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		subs:   make(map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe реализует repository.ChangeFeed.
func (b *Broker) Subscribe(ctx context.Context, table string, predicate event.Predicate) (<-chan event.Change, error) {
	if predicate == nil {
		predicate = event.All
	}
	sub := &subscription{
		table:     table,
		predicate: predicate,
		ch:        make(chan event.Change, b.buffer),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, sub)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch, nil
}

func (b *Broker) Publish(change event.Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.table != change.Table || !sub.predicate(change) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			logger.Log.WithFields(logrus.Fields{
				"event_id": change.ID,
				"table":    change.Table,
			}).Warn("подписчик не успевает читать события, событие пропущено")
		}
	}
}

// Subscribers возвращает число активных подписок.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
