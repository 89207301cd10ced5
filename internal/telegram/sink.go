package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sink отправляет уведомления курьерам, привязавшим чат Telegram.
// Сигналы task.removed не отправляются: в чате их нельзя убрать из уже полученного списка.
type Sink struct {
	sender Sender
	agents repository.AgentRepository
}

func NewSink(sender Sender, agents repository.AgentRepository) *Sink {
	return &Sink{sender: sender, agents: agents}
}

func (s *Sink) Name() string { return "telegram" }

func (s *Sink) Deliver(ctx context.Context, d notify.Delivery) error {
	if d.Role != valueobject.RoleAgent || d.Alert.Kind == notify.KindTaskRemoved {
		return nil
	}

	agent, err := s.agents.GetByID(ctx, d.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if agent.TelegramChatID == nil {
		return nil
	}

	msg := tgbotapi.NewMessage(*agent.TelegramChatID, formatAlert(d.Alert))
	msg.DisableNotification = !d.Alert.Effects.Sound
	if _, err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram: не удалось отправить уведомление: %w", err)
	}
	return nil
}
