package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
)

var (
	now      = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	reportID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	hotelID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	agentA   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	agentB   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	adminID  = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func prefs(userID uuid.UUID, mutate func(*entity.NotificationPreference)) entity.NotificationPreference {
	p := entity.DefaultNotificationPreference(userID)
	if mutate != nil {
		mutate(p)
	}
	return *p
}

func newRegistry() *notify.Registry {
	reg := notify.NewRegistry()
	reg.Acquire(notify.Subscriber{UserID: hotelID, Role: valueobject.RoleHotel, Zone: "center", Preferences: prefs(hotelID, nil)})
	reg.Acquire(notify.Subscriber{UserID: agentA, Role: valueobject.RoleAgent, Zone: "center", Active: true, Preferences: prefs(agentA, nil)})
	reg.Acquire(notify.Subscriber{UserID: agentB, Role: valueobject.RoleAgent, Zone: "center", Active: true,
		Preferences: prefs(agentB, func(p *entity.NotificationPreference) { p.Sound = false })})
	reg.Acquire(notify.Subscriber{UserID: adminID, Role: valueobject.RoleAdmin,
		Preferences: prefs(adminID, func(p *entity.NotificationPreference) { p.Vibration = false })})
	return reg
}

func report(status valueobject.ReportStatus, expiryIn time.Duration, agent *uuid.UUID, updatedAt time.Time) *entity.FoodReport {
	r := &entity.FoodReport{
		ID:                  reportID,
		HotelID:             hotelID,
		FoodName:            "Плов",
		Category:            valueobject.FoodCategoryNonVegetarian,
		Quantity:            10,
		PickupAvailableFrom: now,
		Status:              status,
		AssignedAgentID:     agent,
		Zone:                "center",
		CreatedAt:           now,
		UpdatedAt:           updatedAt,
		HotelName:           "Гранд",
	}
	if expiryIn > 0 {
		expiry := now.Add(expiryIn)
		r.ExpiryAt = &expiry
	}
	return r
}

func insertChange(expiryIn time.Duration) event.Change {
	return event.NewReportChange(event.OpInsert, nil, report(valueobject.ReportStatusNew, expiryIn, nil, now))
}

func claimChange() event.Change {
	at := now.Add(5 * time.Minute)
	old := report(valueobject.ReportStatusNew, 90*time.Minute, nil, now)
	updated := report(valueobject.ReportStatusAssigned, 90*time.Minute, &agentA, at)
	return event.NewReportChange(event.OpUpdate, old, updated)
}

func recipients(deliveries []notify.Delivery) map[uuid.UUID]notify.Kind {
	out := make(map[uuid.UUID]notify.Kind, len(deliveries))
	for _, d := range deliveries {
		out[d.UserID] = d.Alert.Kind
	}
	return out
}

type goldenDelivery struct {
	UserID uuid.UUID    `json:"user_id"`
	Alert  notify.Alert `json:"alert"`
}

func assertGolden(t *testing.T, name string, deliveries []notify.Delivery) {
	t.Helper()
	out := make([]goldenDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, goldenDelivery{UserID: d.UserID, Alert: d.Alert})
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, raw)
}

func TestFanoutInsertUrgentGolden(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	deliveries := fanout.OnChange(insertChange(90 * time.Minute))

	require.Len(t, deliveries, 3)
	assertGolden(t, "insert_urgent", deliveries)
}

func TestFanoutClaimGolden(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	deliveries := fanout.OnChange(claimChange())

	require.Len(t, deliveries, 4)
	assertGolden(t, "claim_update", deliveries)
}

func TestFanoutInsertEmitsOneNewTaskPerSubscriber(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	got := recipients(fanout.OnChange(insertChange(0)))

	assert.Equal(t, map[uuid.UUID]notify.Kind{
		agentA:  notify.KindNewTask,
		agentB:  notify.KindNewTask,
		adminID: notify.KindNewTask,
	}, got)
}

func TestFanoutInsertWithOtherStatusIsSilent(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	r := report(valueobject.ReportStatusAssigned, 0, &agentA, now)

	assert.Empty(t, fanout.OnChange(event.NewReportChange(event.OpInsert, nil, r)))
}

func TestFanoutUpdateWithoutStatusChangeIsSilent(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	old := report(valueobject.ReportStatusNew, 0, nil, now)
	updated := report(valueobject.ReportStatusNew, 0, nil, now.Add(time.Minute))
	updated.Quantity = 12

	assert.Empty(t, fanout.OnChange(event.NewReportChange(event.OpUpdate, old, updated)))
}

func TestFanoutPreferenceGates(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*entity.NotificationPreference)
		expiryIn time.Duration
		want     bool
	}{
		{"обычная заявка при выключенных новых", func(p *entity.NotificationPreference) { p.NewTasks = false }, 0, false},
		{"срочная заявка при выключенных новых", func(p *entity.NotificationPreference) { p.NewTasks = false }, time.Hour, true},
		{"срочная заявка при выключенных срочных", func(p *entity.NotificationPreference) { p.UrgentTasks = false }, time.Hour, false},
		{"обычная заявка при выключенных срочных", func(p *entity.NotificationPreference) { p.UrgentTasks = false }, 0, true},
		{"звук не влияет на доставку", func(p *entity.NotificationPreference) { p.Sound, p.Vibration = false, false }, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := notify.NewRegistry()
			reg.Acquire(notify.Subscriber{UserID: agentA, Role: valueobject.RoleAgent, Active: true, Preferences: prefs(agentA, tc.mutate)})

			deliveries := notify.NewFanout(reg, nil).OnChange(insertChange(tc.expiryIn))
			assert.Equal(t, tc.want, len(deliveries) == 1)
		})
	}
}

func TestFanoutScopesAgents(t *testing.T) {
	reg := notify.NewRegistry()
	reg.Acquire(notify.Subscriber{UserID: agentA, Role: valueobject.RoleAgent, Zone: "north", Active: true, Preferences: prefs(agentA, nil)})
	reg.Acquire(notify.Subscriber{UserID: agentB, Role: valueobject.RoleAgent, Zone: "center", Active: false, Preferences: prefs(agentB, nil)})
	reg.Acquire(notify.Subscriber{UserID: hotelID, Role: valueobject.RoleHotel, Preferences: prefs(hotelID, nil)})

	assert.Empty(t, notify.NewFanout(reg, nil).OnChange(insertChange(0)))
}

func TestFanoutCancelNotifiesPreviousHolder(t *testing.T) {
	fanout := notify.NewFanout(newRegistry(), nil)
	old := report(valueobject.ReportStatusAssigned, 0, &agentA, now)
	updated := report(valueobject.ReportStatusCancelled, 0, nil, now.Add(time.Minute))

	got := recipients(fanout.OnChange(event.NewReportChange(event.OpUpdate, old, updated)))
	assert.Equal(t, map[uuid.UUID]notify.Kind{
		hotelID: notify.KindTaskStatus,
		agentA:  notify.KindTaskStatus,
		adminID: notify.KindTaskStatus,
	}, got)
}

func TestFanoutStatusUpdatesGate(t *testing.T) {
	reg := notify.NewRegistry()
	reg.Acquire(notify.Subscriber{UserID: hotelID, Role: valueobject.RoleHotel,
		Preferences: prefs(hotelID, func(p *entity.NotificationPreference) { p.StatusUpdates = false })})
	reg.Acquire(notify.Subscriber{UserID: agentB, Role: valueobject.RoleAgent, Active: true,
		Preferences: prefs(agentB, func(p *entity.NotificationPreference) { p.NewTasks, p.UrgentTasks = false, false })})

	got := recipients(notify.NewFanout(reg, nil).OnChange(claimChange()))
	// сигнал об удалении приходит независимо от настроек
	assert.Equal(t, map[uuid.UUID]notify.Kind{agentB: notify.KindTaskRemoved}, got)
}

func TestRegistryRefCounting(t *testing.T) {
	reg := notify.NewRegistry()
	sub := notify.Subscriber{UserID: agentA, Role: valueobject.RoleAgent, Active: true, Preferences: prefs(agentA, nil)}
	reg.Acquire(sub)
	reg.Acquire(sub)

	reg.Release(agentA)
	_, ok := reg.Get(agentA)
	assert.True(t, ok)

	reg.UpdatePreferences(prefs(agentA, func(p *entity.NotificationPreference) { p.Sound = false }))
	got, _ := reg.Get(agentA)
	assert.False(t, got.Preferences.Sound)

	reg.Release(agentA)
	_, ok = reg.Get(agentA)
	assert.False(t, ok)
	assert.Empty(t, reg.Snapshot())
}

func TestMemoryDeduper(t *testing.T) {
	clock := now
	d := notify.NewMemoryDeduper(time.Minute, func() time.Time { return clock })
	ctx := context.Background()
	key := notify.DeliveryKey("e1", agentA, "websocket")

	first, err := d.FirstSeen(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	again, _ := d.FirstSeen(ctx, key)
	assert.False(t, again)

	clock = clock.Add(2 * time.Minute)
	d.Cleanup()
	assert.Equal(t, 0, d.Len())
	afterTTL, _ := d.FirstSeen(ctx, key)
	assert.True(t, afterTTL)
}

type recordingSink struct {
	mu         sync.Mutex
	deliveries []notify.Delivery
	fail       bool
	panics     bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, d notify.Delivery) error {
	if s.panics {
		panic("sink упал")
	}
	if s.fail {
		return errors.New("канал недоступен")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, d)
	return nil
}

type recordingEventSink struct {
	events []event.Change
}

func (s *recordingEventSink) Name() string { return "events" }

func (s *recordingEventSink) Publish(_ context.Context, c event.Change) error {
	s.events = append(s.events, c)
	return nil
}

type failingDeduper struct{}

func (failingDeduper) FirstSeen(context.Context, string) (bool, error) {
	return false, errors.New("redis недоступен")
}

func TestDispatcherDeliversAtMostOnce(t *testing.T) {
	sink := &recordingSink{}
	events := &recordingEventSink{}
	d := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), notify.NewMemoryDeduper(time.Hour, nil), sink)
	d.AddEventSink(events)

	change := insertChange(0)
	assert.Equal(t, 3, d.Handle(context.Background(), change))
	assert.Equal(t, 0, d.Handle(context.Background(), change))

	assert.Len(t, sink.deliveries, 3)
	assert.Len(t, events.events, 1)
}

type localSink struct {
	recordingSink
}

func (s *localSink) Name() string         { return "websocket" }
func (s *localSink) InstanceScoped() bool { return true }

func TestDispatcherSharedDedupeAcrossInstances(t *testing.T) {
	shared := notify.NewMemoryDeduper(time.Hour, nil)
	localA, localB := &localSink{}, &localSink{}
	chatA, chatB := &recordingSink{}, &recordingSink{}
	instanceA := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), shared, localA, chatA)
	instanceB := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), shared, localB, chatB)

	change := insertChange(0)
	assert.Equal(t, 3, instanceA.Handle(context.Background(), change))
	assert.Equal(t, 3, instanceB.Handle(context.Background(), change))

	// вкладки на обоих экземплярах получают уведомление, общий канал - один раз
	assert.Len(t, localA.deliveries, 3)
	assert.Len(t, localB.deliveries, 3)
	assert.Len(t, chatA.deliveries, 3)
	assert.Empty(t, chatB.deliveries)

	assert.Equal(t, 0, instanceA.Handle(context.Background(), change))
}

func TestDispatcherSurvivesFailingSinks(t *testing.T) {
	good := &recordingSink{}
	d := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), nil,
		&recordingSink{panics: true}, &recordingSink{fail: true}, good)

	assert.Equal(t, 4, d.Handle(context.Background(), claimChange()))
	assert.Len(t, good.deliveries, 4)
}

func TestDispatcherSkipsWhenDedupeUnavailable(t *testing.T) {
	sink := &recordingSink{}
	d := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), failingDeduper{}, sink)

	assert.Equal(t, 0, d.Handle(context.Background(), insertChange(0)))
	assert.Empty(t, sink.deliveries)
}

type staticFeed struct {
	changes []event.Change
}

func (f staticFeed) Subscribe(ctx context.Context, _ string, _ event.Predicate) (<-chan event.Change, error) {
	ch := make(chan event.Change, len(f.changes))
	for _, c := range f.changes {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func TestDispatcherRun(t *testing.T) {
	sink := &recordingSink{}
	d := notify.NewDispatcher(notify.NewFanout(newRegistry(), nil), notify.NewMemoryDeduper(time.Hour, nil), sink)

	err := d.Run(context.Background(), staticFeed{changes: []event.Change{insertChange(0), claimChange()}})
	require.NoError(t, err)
	assert.Len(t, sink.deliveries, 7)
}
