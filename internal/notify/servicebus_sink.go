package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// LifecycleMessage - тело сообщения очереди событий жизненного цикла.
type LifecycleMessage struct {
	EventID        string                   `json:"event_id"`
	Op             event.Op                 `json:"op"`
	ReportID       uuid.UUID                `json:"report_id"`
	HotelID        uuid.UUID                `json:"hotel_id"`
	AgentID        *uuid.UUID               `json:"agent_id,omitempty"`
	Status         valueobject.ReportStatus `json:"status"`
	PreviousStatus valueobject.ReportStatus `json:"previous_status,omitempty"`
	Quantity       int                      `json:"quantity"`
	Zone           string                   `json:"zone,omitempty"`
	At             time.Time                `json:"at"`
}

func NewLifecycleMessage(c event.Change) LifecycleMessage {
	msg := LifecycleMessage{
		EventID:  c.ID,
		Op:       c.Op,
		ReportID: c.New.ID,
		HotelID:  c.New.HotelID,
		AgentID:  c.New.AssignedAgentID,
		Status:   c.New.Status,
		Quantity: c.New.Quantity,
		Zone:     c.New.Zone,
		At:       c.At,
	}
	if c.Old != nil {
		msg.PreviousStatus = c.Old.Status
	}
	return msg
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// ServiceBusSink публикует события создания и смены статуса в очередь Azure Service Bus.
type ServiceBusSink struct {
	client *azservicebus.Client
	sender messageSender
}

func NewServiceBusSink(connectionString, queue string) (*ServiceBusSink, error) {
	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент service bus: %w", err)
	}
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("не удалось создать отправителя для очереди %s: %w", queue, err)
	}
	return &ServiceBusSink{client: client, sender: sender}, nil
}

func (s *ServiceBusSink) Name() string { return "servicebus" }

func (s *ServiceBusSink) Publish(ctx context.Context, c event.Change) error {
	if c.New == nil {
		return nil
	}
	if c.Op == event.OpUpdate && !c.StatusChanged() {
		return nil
	}

	body, err := json.Marshal(NewLifecycleMessage(c))
	if err != nil {
		return fmt.Errorf("не удалось сериализовать событие: %w", err)
	}
	messageID := c.ID
	contentType := "application/json"
	subject := string(c.New.Status)
	return s.sender.SendMessage(ctx, &azservicebus.Message{
		MessageID:   &messageID,
		ContentType: &contentType,
		Subject:     &subject,
		Body:        body,
	}, nil)
}

func (s *ServiceBusSink) Close(ctx context.Context) error {
	if err := s.sender.Close(ctx); err != nil {
		return err
	}
	if s.client != nil {
		return s.client.Close(ctx)
	}
	return nil
}
