package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/goroutine"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
)

// Hub управляет всеми WebSocket клиентами и регистрирует их как подписчиков уведомлений.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	direct     chan directMessage
	registry   *notify.Registry
	done       chan struct{}
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// NewHub создаёт хаб. registry может быть nil, тогда подключения не становятся подписчиками.
func NewHub(registry *notify.Registry) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		direct:     make(chan directMessage, 32),
		registry:   registry,
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		case msg := <-h.direct:
			if _, ok := h.clients[msg.client.userID][msg.client]; ok {
				h.enqueue(msg.client, msg.payload)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Encode собирает сообщение по контракту WebSocket API: "type" - имя события, "data" - полезная нагрузка.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	return raw, nil
}

// BroadcastToUser отправляет сообщение во все подключения пользователя.
func (h *Hub) BroadcastToUser(ctx context.Context, userID uuid.UUID, event string, data any) error {
	raw, err := Encode(event, data)
	if err != nil {
		return err
	}

	if h.stopped() {
		return fmt.Errorf("ws: хаб остановлен")
	}
	select {
	case h.broadcast <- message{userID: userID, payload: raw}:
		return nil
	case <-h.done:
		return fmt.Errorf("ws: хаб остановлен")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendToClient отправляет сообщение в одно конкретное подключение.
func (h *Hub) SendToClient(ctx context.Context, client *Client, event string, data any) error {
	raw, err := Encode(event, data)
	if err != nil {
		return err
	}

	if h.stopped() {
		return fmt.Errorf("ws: хаб остановлен")
	}
	select {
	case h.direct <- directMessage{client: client, payload: raw}:
		return nil
	case <-h.done:
		return fmt.Errorf("ws: хаб остановлен")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) Name() string { return "websocket" }

// InstanceScoped: хаб знает только о подключениях своего процесса.
func (h *Hub) InstanceScoped() bool { return true }

// Deliver реализует notify.Sink.
func (h *Hub) Deliver(ctx context.Context, d notify.Delivery) error {
	return h.BroadcastToUser(ctx, d.UserID, string(d.Alert.Kind), d.Alert)
}

func (h *Hub) addClient(client *Client) {
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}

	if h.registry != nil && client.subscriber != nil {
		h.registry.Acquire(*client.subscriber)
	}
}

func (h *Hub) removeClient(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)

	if h.registry != nil && client.subscriber != nil {
		h.registry.Release(client.userID)
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	for client := range h.clients[userID] {
		h.enqueue(client, payload)
	}
}

func (h *Hub) enqueue(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		logger.Log.WithFields(logrus.Fields{"user_id": client.userID}).Warn("клиент WebSocket не успевает читать, соединение закрывается")
		goroutine.SafeGo("ws.evict", client.Close)
	}
}

func (h *Hub) closeAll() {
	for _, clients := range h.clients {
		for client := range clients {
			h.removeClient(client)
		}
	}
}
