package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/goroutine"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/service"
	"github.com/ignatzorin/foodrescue-backend/internal/taskboard"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
	"github.com/ignatzorin/foodrescue-backend/internal/ws"
)

// EventBoardSync - тип сообщения со снимком доски задач.
const EventBoardSync = "board.sync"

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub         *ws.Hub
	tokens      *service.TokenManager
	subscribers *service.SubscriberService
	feed        repository.ChangeFeed
	available   *report.ListAvailableUseCase
	mine        *report.ListMyReportsUseCase
	upgrader    websocket.Upgrader
	now         func() time.Time
}

// NewWSHandler создаёт хэндлер. feed может быть nil, тогда доска задач недоступна.
func NewWSHandler(
	hub *ws.Hub,
	tokens *service.TokenManager,
	subscribers *service.SubscriberService,
	feed repository.ChangeFeed,
	available *report.ListAvailableUseCase,
	mine *report.ListMyReportsUseCase,
) *WSHandler {
	return &WSHandler{
		hub:         hub,
		tokens:      tokens,
		subscribers: subscribers,
		feed:        feed,
		available:   available,
		mine:        mine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Handle обслуживает GET /api/ws?token=...[&board=1&lat=&lng=].
// Уведомления приходят как {"type": <kind>, "data": <alert>}, снимки доски как board.sync.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "access токен обязателен")
		return
	}

	actor, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		response.Unauthorized(c, "невалидный access токен")
		return
	}

	var subscriber *notify.Subscriber
	sub, err := h.subscribers.Load(c.Request.Context(), actor)
	if err != nil {
		// соединение остаётся полезным для доски задач и без уведомлений
		logger.Log.WithError(err).WithField("user_id", actor.UserID).Warn("subscriber load failed, alerts disabled")
	} else {
		subscriber = &sub
	}

	wantBoard := c.Query("board") == "1" && h.feed != nil
	var origin *valueobject.GeoPoint
	if wantBoard {
		lat, err := common.ParseFloatQuery(c, "lat")
		if err != nil {
			common.Fail(c, err)
			return
		}
		lng, err := common.ParseFloatQuery(c, "lng")
		if err != nil {
			common.Fail(c, err)
			return
		}
		origin = valueobject.PointFromNullable(lat, lng)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	client := ws.NewClient(conn, h.hub, actor.UserID, subscriber)
	h.hub.Register(client)

	if wantBoard {
		zone := ""
		if subscriber != nil {
			zone = subscriber.Zone
		}
		goroutine.SafeGo("ws.board", func() { h.runBoard(ctx, client, actor, zone, origin) })
	}

	client.Run(ctx)
}

// runBoard подписывается на ленту, загружает доску и отправляет снимок после каждого изменения.
func (h *WSHandler) runBoard(ctx context.Context, client *ws.Client, actor entity.Actor, zone string, origin *valueobject.GeoPoint) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": actor.UserID, "role": actor.Role})

	changes, err := h.feed.Subscribe(ctx, event.TableFoodReports, event.All)
	if err != nil {
		log.WithError(err).Warn("board subscribe failed")
		return
	}

	board := taskboard.New(actor, zone, origin)
	if err := h.loadBoard(ctx, board, actor, zone, origin); err != nil {
		log.WithError(err).Warn("board load failed")
	}

	push := func() {
		snap := board.Snapshot(h.now())
		payload := dto.BoardResponse{
			Available: dto.FromRankedList(snap.Available),
			Mine:      dto.ToReportResponses(snap.Mine, h.now()),
		}
		if err := h.hub.SendToClient(ctx, client, EventBoardSync, payload); err != nil {
			log.WithError(err).Debug("board sync not sent")
		}
	}

	push()
	board.Follow(changes, push)
}

func (h *WSHandler) loadBoard(ctx context.Context, board *taskboard.Board, actor entity.Actor, zone string, origin *valueobject.GeoPoint) error {
	var available, mine []*entity.FoodReport

	if actor.Role == valueobject.RoleAgent || actor.Role == valueobject.RoleAdmin {
		ranked, err := h.available.Execute(ctx, report.ListAvailableInput{Zone: zone, Origin: origin})
		if err != nil {
			return err
		}
		for _, r := range ranked {
			available = append(available, r.Report)
		}
	}

	if actor.Role == valueobject.RoleAgent || actor.Role == valueobject.RoleHotel {
		reports, err := h.mine.Execute(ctx, actor, nil)
		if err != nil {
			return err
		}
		mine = reports
	}

	board.Load(available, mine)
	return nil
}
