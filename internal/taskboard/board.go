// Package taskboard хранит видимые пользователю списки заявок и обновляет их
// точечно по событиям изменений, без повторной загрузки всего списка.
package taskboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/scoring"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

type Snapshot struct {
	Available []report.RankedReport
	Mine      []*entity.FoodReport
}

type Board struct {
	mu        sync.RWMutex
	viewer    entity.Actor
	zone      string
	origin    *valueobject.GeoPoint
	distance  scoring.DistanceStrategy
	available map[uuid.UUID]*entity.FoodReport
	mine      map[uuid.UUID]*entity.FoodReport
	// versions хранит updated_at последнего применённого состояния, в том числе удалённых строк
	versions map[uuid.UUID]time.Time
}

func New(viewer entity.Actor, zone string, origin *valueobject.GeoPoint) *Board {
	return &Board{
		viewer:    viewer,
		zone:      zone,
		origin:    origin,
		distance:  scoring.Haversine{},
		available: make(map[uuid.UUID]*entity.FoodReport),
		mine:      make(map[uuid.UUID]*entity.FoodReport),
		versions:  make(map[uuid.UUID]time.Time),
	}
}

// Load заполняет доску результатами запросов. Строки старше уже известных пропускаются.
func (b *Board) Load(available, mine []*entity.FoodReport) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range available {
		b.apply(r)
	}
	for _, r := range mine {
		b.apply(r)
	}
}

// Apply применяет событие и сообщает, изменилось ли содержимое доски.
func (b *Board) Apply(c event.Change) bool {
	if c.Table != event.TableFoodReports || c.New == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apply(c.New)
}

func (b *Board) apply(r *entity.FoodReport) bool {
	if seen, ok := b.versions[r.ID]; ok && r.UpdatedAt.Before(seen) {
		return false
	}
	b.versions[r.ID] = r.UpdatedAt

	changed := false
	if b.showsAvailable(r) {
		b.available[r.ID] = r
		changed = true
	} else if _, ok := b.available[r.ID]; ok {
		delete(b.available, r.ID)
		changed = true
	}

	if b.showsMine(r) {
		b.mine[r.ID] = r
		changed = true
	} else if _, ok := b.mine[r.ID]; ok {
		delete(b.mine, r.ID)
		changed = true
	}
	return changed
}

func (b *Board) showsAvailable(r *entity.FoodReport) bool {
	if b.viewer.Role != valueobject.RoleAgent && b.viewer.Role != valueobject.RoleAdmin {
		return false
	}
	if !r.IsAvailable() {
		return false
	}
	return b.zone == "" || r.Zone == "" || b.zone == r.Zone
}

func (b *Board) showsMine(r *entity.FoodReport) bool {
	switch b.viewer.Role {
	case valueobject.RoleAgent:
		return r.IsAssignedTo(b.viewer.UserID) &&
			(r.Status == valueobject.ReportStatusAssigned || r.Status == valueobject.ReportStatusPicked)
	case valueobject.RoleHotel:
		return r.IsOwnedBy(b.viewer.UserID)
	}
	return false
}

// Snapshot возвращает копию доски: свободные заявки ранжируются на момент now,
// собственные отсортированы по времени обновления.
func (b *Board) Snapshot(now time.Time) Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := Snapshot{
		Available: make([]report.RankedReport, 0, len(b.available)),
		Mine:      make([]*entity.FoodReport, 0, len(b.mine)),
	}
	for _, r := range b.available {
		if r.IsExpired(now) {
			continue
		}
		snap.Available = append(snap.Available, report.Rank(r, b.origin, b.distance, now))
	}
	report.SortByPriority(snap.Available)

	for _, r := range b.mine {
		snap.Mine = append(snap.Mine, r)
	}
	sort.Slice(snap.Mine, func(i, j int) bool {
		return snap.Mine[i].UpdatedAt.After(snap.Mine[j].UpdatedAt)
	})
	return snap
}

// Run применяет события ленты до отмены ctx и вызывает onChange после каждого изменения.
func (b *Board) Run(ctx context.Context, feed repository.ChangeFeed, onChange func()) error {
	changes, err := feed.Subscribe(ctx, event.TableFoodReports, event.All)
	if err != nil {
		return err
	}
	b.Follow(changes, onChange)
	return nil
}

// Follow применяет события уже открытой подписки до закрытия канала.
// Подписку стоит открыть до Load, чтобы не потерять изменения между запросом и подпиской.
func (b *Board) Follow(changes <-chan event.Change, onChange func()) {
	for c := range changes {
		if b.Apply(c) && onChange != nil {
			onChange()
		}
	}
}
