package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Deduper пропускает каждую пару (событие, получатель) не более одного раза за TTL.
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// DeliveryKey - ключ повтора для пары (событие, получатель) в одном канале.
func DeliveryKey(eventID string, userID uuid.UUID, channel string) string {
	return "alert:" + eventID + ":" + userID.String() + ":" + channel
}

// MemoryDeduper хранит ключи в памяти процесса.
type MemoryDeduper struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
	clock func() time.Time
}

func NewMemoryDeduper(ttl time.Duration, clock func() time.Time) *MemoryDeduper {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryDeduper{
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		clock: clock,
	}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock()
	if expiresAt, ok := d.seen[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	d.seen[key] = now.Add(d.ttl)
	return true, nil
}

// Run периодически удаляет просроченные ключи до отмены ctx.
func (d *MemoryDeduper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Cleanup()
		}
	}
}

func (d *MemoryDeduper) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock()
	for key, expiresAt := range d.seen {
		if !now.Before(expiresAt) {
			delete(d.seen, key)
		}
	}
}

func (d *MemoryDeduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
