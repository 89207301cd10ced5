package notify

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// Subscriber - пользователь, который сейчас подключён хотя бы одним каналом.
type Subscriber struct {
	UserID      uuid.UUID
	Role        valueobject.Role
	Zone        string
	Active      bool
	Preferences entity.NotificationPreference
}

// InZone: пустая зона у подписчика или отчёта означает "все зоны".
func (s Subscriber) InZone(zone string) bool {
	return s.Zone == "" || zone == "" || s.Zone == zone
}

type registration struct {
	sub  Subscriber
	refs int
}

// Registry хранит подписчиков с подсчётом ссылок: у пользователя может быть
// несколько вкладок и Telegram одновременно.
type Registry struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*registration
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[uuid.UUID]*registration)}
}

// Acquire регистрирует подписчика или обновляет данные уже зарегистрированного.
func (r *Registry) Acquire(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.subs[sub.UserID]; ok {
		reg.sub = sub
		reg.refs++
		return
	}
	r.subs[sub.UserID] = &registration{sub: sub, refs: 1}
}

func (r *Registry) Release(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.subs[userID]
	if !ok {
		return
	}
	reg.refs--
	if reg.refs <= 0 {
		delete(r.subs, userID)
	}
}

// UpdatePreferences применяет новые настройки к подключённому пользователю.
func (r *Registry) UpdatePreferences(pref entity.NotificationPreference) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.subs[pref.UserID]; ok {
		reg.sub.Preferences = pref
	}
}

// UpdateProfile обновляет зону и активность без изменения счётчика подключений.
func (r *Registry) UpdateProfile(userID uuid.UUID, zone string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.subs[userID]; ok {
		reg.sub.Zone = zone
		reg.sub.Active = active
	}
}

func (r *Registry) Get(userID uuid.UUID) (Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.subs[userID]
	if !ok {
		return Subscriber{}, false
	}
	return reg.sub, true
}

// Snapshot возвращает подписчиков, упорядоченных по идентификатору.
func (r *Registry) Snapshot() []Subscriber {
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.subs))
	for _, reg := range r.subs {
		subs = append(subs, reg.sub)
	}
	r.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].UserID.String() < subs[j].UserID.String()
	})
	return subs
}
