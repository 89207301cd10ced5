package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/app"
	"github.com/ignatzorin/foodrescue-backend/internal/config"
	"github.com/ignatzorin/foodrescue-backend/internal/db"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/infrastructure/persistence"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:               "test",
		HTTPPort:          "0",
		DBDriver:          config.DriverSQLite,
		JWTSecret:         "app-test-secret-app-test-secret-xx",
		RateLimitLimit:    100,
		RateLimitPeriod:   time.Minute,
		TransitionTimeout: 5 * time.Second,
		SweepInterval:     50 * time.Millisecond,
		AlertDedupeTTL:    time.Minute,
		MediaStoragePath:  t.TempDir(),
		MaxUploadSizeMB:   1,
	}
}

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	conn, err := db.NewSQLite(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	fsys, err := db.MigrationsFS("", db.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, conn, fsys))
	return conn
}

func TestHealthIsWired(t *testing.T) {
	conn := openDB(t)
	a, err := app.New(context.Background(), testConfig(t), conn)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "database")
}

func TestRunStopsOnCancel(t *testing.T) {
	conn := openDB(t)
	a, err := app.New(context.Background(), testConfig(t), conn)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

func TestSweeperExpiresReports(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	hotels := persistence.NewHotelRepositoryAdapter(conn)
	reports := persistence.NewFoodReportRepositoryAdapter(conn)
	hotel, err := entity.NewHotel(uuid.New(), entity.HotelProfileParams{Name: "Гранд", Address: "Тверская, 1", Zone: "center"}, now)
	require.NoError(t, err)
	require.NoError(t, hotels.Upsert(ctx, hotel))

	pickup := now.Add(-time.Hour)
	expiry := now.Add(300 * time.Millisecond)
	r, err := entity.NewFoodReport(hotel, entity.NewFoodReportParams{
		FoodName:            "Суп",
		Category:            string(valueobject.FoodCategoryVegetarian),
		Quantity:            5,
		PickupAvailableFrom: &pickup,
		ExpiryAt:            &expiry,
	}, now)
	require.NoError(t, err)
	require.NoError(t, reports.Insert(ctx, r))

	a, err := app.New(ctx, testConfig(t), conn)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		got, err := reports.GetByID(ctx, r.ID)
		return err == nil && got.Status == valueobject.ReportStatusCancelled
	}, 5*time.Second, 50*time.Millisecond)
}
