// Package app собирает сервис из конфигурации: репозитории, ленту изменений, рассылку
// уведомлений, HTTP API, Telegram бота и планировщик списания просроченных отчётов.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/foodrescue-backend/internal/config"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers"
	"github.com/ignatzorin/foodrescue-backend/internal/http/router"
	"github.com/ignatzorin/foodrescue-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/foodrescue-backend/internal/infrastructure/realtime"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/service"
	"github.com/ignatzorin/foodrescue-backend/internal/storage"
	"github.com/ignatzorin/foodrescue-backend/internal/telegram"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/needy"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/profile"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
	"github.com/ignatzorin/foodrescue-backend/internal/ws"
)

const (
	brokerBuffer       = 64
	dedupeCleanup      = time.Minute
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 10 * time.Second
	newRelicConnection = 5 * time.Second
)

type App struct {
	cfg  *config.Config
	conn *sqlx.DB

	broker   *realtime.Broker
	listener *realtime.PGListener
	registry *notify.Registry
	hub      *ws.Hub

	dispatcher  *notify.Dispatcher
	memDedupe   *notify.MemoryDeduper
	redisClient *redis.Client
	busSink     *notify.ServiceBusSink

	sweeper *report.ExpireReportsUseCase
	bot     *telegram.Bot
	nrApp   *newrelic.Application
	engine  http.Handler
}

// New собирает приложение поверх открытого подключения к базе.
// Необязательные интеграции (Redis, Telegram, Service Bus, New Relic) при ошибке
// подключения отключаются с предупреждением, сервис продолжает работу без них.
func New(ctx context.Context, cfg *config.Config, conn *sqlx.DB) (*App, error) {
	if err := validation.RegisterBindingRules(); err != nil {
		return nil, fmt.Errorf("app: не удалось зарегистрировать правила валидации: %w", err)
	}

	a := &App{cfg: cfg, conn: conn, broker: realtime.NewBroker(brokerBuffer)}

	baseReports := persistence.NewFoodReportRepositoryAdapter(conn)
	hotels := persistence.NewHotelRepositoryAdapter(conn)
	agents := persistence.NewAgentRepositoryAdapter(conn)
	persons := persistence.NewNeedyPersonRepositoryAdapter(conn)
	prefs := persistence.NewPreferenceRepositoryAdapter(conn)

	// В PostgreSQL события приходят из триггера через LISTEN, поэтому их видят
	// все экземпляры. SQLite живёт в одном процессе, события публикует сам репозиторий.
	var reports repository.FoodReportRepository = baseReports
	if cfg.DBDriver == config.DriverPostgres {
		a.listener = realtime.NewPGListener(cfg.DatabaseURL, a.broker, baseReports)
	} else {
		reports = realtime.NewPublishingReportRepository(baseReports, a.broker)
	}

	a.registry = notify.NewRegistry()
	a.hub = ws.NewHub(a.registry)

	opts := report.Options{Timeout: cfg.TransitionTimeout}
	listAvailable := report.NewListAvailableUseCase(reports, nil, opts)
	listMine := report.NewListMyReportsUseCase(reports)
	claim := report.NewClaimReportUseCase(reports, agents, opts)
	markPicked := report.NewMarkPickedUseCase(reports, opts)
	markDelivered := report.NewMarkDeliveredUseCase(reports, agents, hotels, opts)
	a.sweeper = report.NewExpireReportsUseCase(reports, opts)

	health := map[string]handlers.Pinger{"database": conn}

	dedupe := a.buildDeduper(ctx)
	if a.redisClient != nil {
		client := a.redisClient
		health["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	subscribers := service.NewSubscriberService(agents, hotels, prefs)
	sinks := []notify.Sink{a.hub}
	if cfg.TelegramBotToken != "" {
		api, err := telegram.Connect(cfg.TelegramBotToken)
		if err != nil {
			logger.Log.WithError(err).Warn("Telegram бот отключён")
		} else {
			a.bot = telegram.NewBot(api, agents, service.NewTokenManager(cfg.JWTSecret), telegram.UseCases{
				ListAvailable: listAvailable,
				ListMine:      listMine,
				Claim:         claim,
				MarkPicked:    markPicked,
				MarkDelivered: markDelivered,
			}).WithSubscriptions(a.registry, subscribers)
			sinks = append(sinks, telegram.NewSink(api, agents))
		}
	}

	a.dispatcher = notify.NewDispatcher(notify.NewFanout(a.registry, nil), dedupe, sinks...)
	if cfg.ServiceBusConnectionString != "" {
		sink, err := notify.NewServiceBusSink(cfg.ServiceBusConnectionString, cfg.ServiceBusQueue)
		if err != nil {
			logger.Log.WithError(err).Warn("публикация событий в Service Bus отключена")
		} else {
			a.busSink = sink
			a.dispatcher.AddEventSink(sink)
		}
	}

	a.nrApp = newRelicApp(cfg)

	photos, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens := service.NewTokenManager(cfg.JWTSecret)
	a.engine = router.SetupRouter(cfg, router.Handlers{
		Health: handlers.NewHealthHandler(health),
		Reports: handlers.NewReportHandler(handlers.ReportUseCases{
			Create:        report.NewCreateReportUseCase(reports, hotels, opts),
			Get:           report.NewGetReportUseCase(reports),
			ListAvailable: listAvailable,
			ListMine:      listMine,
			Claim:         claim,
			MarkPicked:    markPicked,
			MarkDelivered: markDelivered,
			Cancel:        report.NewCancelReportUseCase(reports, opts),
			AgentProfile:  profile.NewGetAgentProfileUseCase(agents),
		}),
		Profiles: handlers.NewProfileHandler(
			profile.NewGetHotelProfileUseCase(hotels),
			profile.NewUpsertHotelProfileUseCase(hotels, a.registry),
			profile.NewGetAgentProfileUseCase(agents),
			profile.NewUpsertAgentProfileUseCase(agents, a.registry),
		),
		Needy:       handlers.NewNeedyHandler(needy.NewRegisterNeedyPersonUseCase(persons), needy.NewListNeedyPersonsUseCase(persons)),
		Preferences: handlers.NewPreferenceHandler(service.NewPreferenceService(prefs, a.registry)),
		Media:       handlers.NewMediaHandler(photos),
		WS: handlers.NewWSHandler(a.hub, tokens, subscribers,
			a.broker, listAvailable, listMine),
	}, tokens, a.nrApp)

	return a, nil
}

// buildDeduper выбирает Redis, если он включён и доступен, иначе память процесса.
func (a *App) buildDeduper(ctx context.Context) notify.Deduper {
	if a.cfg.RedisEnabled {
		client, err := notify.NewRedisClient(ctx, notify.RedisConfig{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err == nil {
			a.redisClient = client
			return notify.NewRedisDeduper(client, a.cfg.AlertDedupeTTL)
		}
		logger.Log.WithError(err).Warn("Redis недоступен, дедупликация уведомлений в памяти процесса")
	}
	a.memDedupe = notify.NewMemoryDeduper(a.cfg.AlertDedupeTTL, nil)
	return a.memDedupe
}

func newRelicApp(cfg *config.Config) *newrelic.Application {
	if cfg.NewRelicLicenseKey == "" {
		return nil
	}
	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelicAppName),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		logger.Log.WithError(err).Warn("New Relic отключён")
		return nil
	}
	if err := nrApp.WaitForConnection(newRelicConnection); err != nil {
		logger.Log.WithError(err).Warn("New Relic ещё не подключился, данные будут отправлены позже")
	}
	return nrApp
}

// Handler возвращает HTTP обработчик без запуска фоновых задач.
func (a *App) Handler() http.Handler { return a.engine }

// Run запускает все компоненты и ждёт отмены ctx или первой фатальной ошибки.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return a.dispatcher.Run(ctx, a.broker)
	})
	if a.listener != nil {
		g.Go(func() error {
			return a.listener.Run(ctx)
		})
	}
	if a.memDedupe != nil {
		g.Go(func() error {
			a.memDedupe.Run(ctx, dedupeCleanup)
			return nil
		})
	}
	if a.bot != nil {
		g.Go(func() error {
			return a.bot.Run(ctx)
		})
	}
	g.Go(func() error {
		return a.runSweeper(ctx)
	})

	server := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           a.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	g.Go(func() error {
		logger.Log.WithField("port", a.cfg.HTTPPort).Info("HTTP сервер запущен")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Log.Info("останавливаем HTTP сервер")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runSweeper раз в SweepInterval списывает свободные отчёты с истёкшим сроком годности.
func (a *App) runSweeper(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("sweeper: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(a.cfg.SweepInterval),
		gocron.NewTask(func() {
			expired, err := a.sweeper.Execute(ctx)
			if err != nil {
				logger.Log.WithError(err).Error("списание просроченных отчётов не завершено")
			}
			if expired > 0 {
				logger.Log.WithFields(logrus.Fields{"expired": expired}).Info("просроченные отчёты списаны")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("sweeper: %w", err)
	}

	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}

// Close освобождает внешние подключения. Подключение к базе закрывает вызывающий код.
func (a *App) Close() {
	if a.busSink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.busSink.Close(ctx); err != nil {
			logger.Log.WithError(err).Warn("не удалось закрыть Service Bus")
		}
		cancel()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Log.WithError(err).Warn("не удалось закрыть Redis")
		}
	}
	if a.nrApp != nil {
		a.nrApp.Shutdown(shutdownTimeout)
	}
}
