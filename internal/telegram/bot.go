// Package telegram - бот для курьеров: список свободных заявок, захват и отметки доставки.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

const listLimit = 10

// API - часть tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TokenParser проверяет access токен, которым курьер привязывает чат.
type TokenParser interface {
	ParseAccess(token string) (entity.Actor, error)
}

// UseCases - операции над заявками, доступные из бота.
type UseCases struct {
	ListAvailable *report.ListAvailableUseCase
	ListMine      *report.ListMyReportsUseCase
	Claim         *report.ClaimReportUseCase
	MarkPicked    *report.MarkPickedUseCase
	MarkDelivered *report.MarkDeliveredUseCase
}

// SubscriberLoader собирает подписчика уведомлений из профиля и настроек.
type SubscriberLoader interface {
	Load(ctx context.Context, actor entity.Actor) (notify.Subscriber, error)
}

type Bot struct {
	api    API
	agents repository.AgentRepository
	tokens TokenParser
	uc     UseCases
	now    func() time.Time

	registry    *notify.Registry
	subscribers SubscriberLoader
	mu          sync.Mutex
	chats       map[int64]uuid.UUID
}

// Connect авторизует бота по токену Telegram.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: не удалось подключиться: %w", err)
	}
	logger.Log.WithField("username", api.Self.UserName).Info("Telegram bot authorized")
	return api, nil
}

func NewBot(api API, agents repository.AgentRepository, tokens TokenParser, uc UseCases) *Bot {
	return &Bot{
		api:    api,
		agents: agents,
		tokens: tokens,
		uc:     uc,
		now:    func() time.Time { return time.Now().UTC() },
		chats:  make(map[int64]uuid.UUID),
	}
}

// WithSubscriptions регистрирует привязанных курьеров в реестре, чтобы уведомления
// доходили до них и без открытого WebSocket.
func (b *Bot) WithSubscriptions(registry *notify.Registry, loader SubscriberLoader) *Bot {
	b.registry = registry
	b.subscribers = loader
	return b
}

// Run читает обновления до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.subscribeLinked(ctx)
	defer b.unsubscribeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate обрабатывает одно сообщение. Ошибки превращаются в ответ пользователю.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText)
		return
	}

	var text string
	switch msg.Command() {
	case "start":
		text = b.handleStart(ctx, msg)
	case "help":
		text = helpText
	case "list":
		text = b.withAgent(ctx, msg, b.handleList)
	case "mine":
		text = b.withAgent(ctx, msg, b.handleMine)
	case "claim":
		text = b.withAgent(ctx, msg, b.handleClaim)
	case "picked":
		text = b.withAgent(ctx, msg, b.handlePicked)
	case "done":
		text = b.withAgent(ctx, msg, b.handleDone)
	default:
		text = "Неизвестная команда. /help - список команд."
	}
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) string {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		if agent, err := b.agents.GetByTelegramChatID(ctx, msg.Chat.ID); err == nil {
			return fmt.Sprintf("Вы вошли как %s (зона %s).\n\n%s", agent.DisplayName, zoneLabel(agent.Zone), helpText)
		}
		return "Чтобы получать заявки, отправьте /start <токен> с токеном из приложения."
	}

	actor, err := b.tokens.ParseAccess(token)
	if err != nil || actor.Role != valueobject.RoleAgent {
		return "Токен не подходит. Получите новый токен курьера в приложении."
	}
	if err := b.agents.LinkTelegram(ctx, actor.UserID, msg.Chat.ID); err != nil {
		if apperror.IsNotFound(err) {
			return "Сначала заполните профиль курьера в приложении."
		}
		return b.failure(err, msg.Chat.ID, "start")
	}
	if err := b.subscribe(ctx, actor.UserID, msg.Chat.ID); err != nil {
		logger.Log.WithError(err).WithField("agent_id", actor.UserID).Warn("не удалось подписать курьера на уведомления")
	}
	return "Чат привязан. Новые заявки будут приходить сюда.\n\n" + helpText
}

// subscribeLinked подписывает всех курьеров с привязанным чатом.
func (b *Bot) subscribeLinked(ctx context.Context) {
	linked, err := b.agents.ListLinkedToTelegram(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("не удалось получить курьеров с привязанным чатом")
		return
	}
	for _, agent := range linked {
		if err := b.subscribe(ctx, agent.ID, *agent.TelegramChatID); err != nil {
			logger.Log.WithError(err).WithField("agent_id", agent.ID).Warn("не удалось подписать курьера на уведомления")
		}
	}
	logger.Log.WithField("linked_agents", len(linked)).Info("Telegram бот запущен")
}

// subscribe держит в реестре одну ссылку на курьера на каждый привязанный чат.
// Чат, перешедший к другому курьеру, снимает подписку прежнего.
func (b *Bot) subscribe(ctx context.Context, agentID uuid.UUID, chatID int64) error {
	if b.registry == nil {
		return nil
	}
	sub, err := b.subscribers.Load(ctx, entity.Actor{UserID: agentID, Role: valueobject.RoleAgent})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.chats[chatID]; ok {
		if prev == agentID {
			return nil
		}
		b.registry.Release(prev)
		delete(b.chats, chatID)
	}
	for chat, id := range b.chats {
		if id == agentID {
			// курьер сменил чат
			delete(b.chats, chat)
			b.chats[chatID] = agentID
			return nil
		}
	}
	b.registry.Acquire(sub)
	b.chats[chatID] = agentID
	return nil
}

func (b *Bot) unsubscribeAll() {
	if b.registry == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for chat, id := range b.chats {
		b.registry.Release(id)
		delete(b.chats, chat)
	}
}

type agentCommand func(ctx context.Context, agent *entity.DeliveryAgent, args string) (string, error)

func (b *Bot) withAgent(ctx context.Context, msg *tgbotapi.Message, cmd agentCommand) string {
	agent, err := b.agents.GetByTelegramChatID(ctx, msg.Chat.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "Чат не привязан к курьеру. Отправьте /start <токен>."
		}
		return b.failure(err, msg.Chat.ID, msg.Command())
	}

	text, err := cmd(ctx, agent, strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		return b.failure(err, msg.Chat.ID, msg.Command())
	}
	return text
}

func (b *Bot) handleList(ctx context.Context, agent *entity.DeliveryAgent, _ string) (string, error) {
	ranked, err := b.uc.ListAvailable.Execute(ctx, report.ListAvailableInput{Zone: agent.Zone, Limit: listLimit})
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "Свободных заявок нет.", nil
	}
	return formatAvailable(ranked, b.now()), nil
}

func (b *Bot) handleMine(ctx context.Context, agent *entity.DeliveryAgent, _ string) (string, error) {
	reports, err := b.uc.ListMine.Execute(ctx, entity.Actor{UserID: agent.ID, Role: valueobject.RoleAgent}, nil)
	if err != nil {
		return "", err
	}
	if len(reports) == 0 {
		return "У вас нет активных заявок.", nil
	}
	return formatMine(reports), nil
}

func (b *Bot) handleClaim(ctx context.Context, agent *entity.DeliveryAgent, args string) (string, error) {
	id, err := parseReportID(args, "claim")
	if err != nil {
		return "", err
	}
	r, err := b.uc.Claim.Execute(ctx, id, agent.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Заявка ваша: %s.\n%s\nКогда заберёте: /picked %s", r.FoodName, pickupLine(r), r.ID), nil
}

func (b *Bot) handlePicked(ctx context.Context, agent *entity.DeliveryAgent, args string) (string, error) {
	id, err := parseReportID(args, "picked")
	if err != nil {
		return "", err
	}
	r, err := b.uc.MarkPicked.Execute(ctx, id, agent.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Отмечено: %s забрана. После доставки: /done %s", r.FoodName, r.ID), nil
}

func (b *Bot) handleDone(ctx context.Context, agent *entity.DeliveryAgent, args string) (string, error) {
	id, err := parseReportID(args, "done")
	if err != nil {
		return "", err
	}
	r, err := b.uc.MarkDelivered.Execute(ctx, id, agent.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Спасибо! %s доставлена, порций: %d.", r.FoodName, r.Quantity), nil
}

// failure переводит ошибку в текст. Сообщения AppError показываются как есть, остальные скрываются.
func (b *Bot) failure(err error, chatID int64, command string) string {
	switch {
	case apperror.IsClaimConflict(err):
		return "Эту заявку уже забрал другой курьер. /list - свежий список."
	case apperror.IsTransport(err):
		logger.Log.WithFields(logrus.Fields{"chat_id": chatID, "command": command}).WithError(err).Warn("telegram command transport error")
		return "Сервис временно недоступен, повторите команду позже."
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code != apperror.ErrCodeInternal {
		return appErr.Message
	}
	logger.Log.WithFields(logrus.Fields{"chat_id": chatID, "command": command}).WithError(err).Error("telegram command failed")
	return "Что-то пошло не так, попробуйте позже."
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Log.WithField("chat_id", chatID).WithError(err).Warn("telegram send failed")
	}
}

func parseReportID(args, command string) (uuid.UUID, error) {
	id, err := uuid.Parse(args)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, fmt.Sprintf("Использование: /%s <id заявки>", command))
	}
	return id, nil
}
