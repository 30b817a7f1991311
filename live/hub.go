// Package live раздаёт события хода архивации и удаления турниров по
// WebSocket. Клиенты (админская панель) подписываются на комнату своего
// турнира и получают прогресс в реальном времени.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Типы событий, рассылаемых сервисами архивации и удаления.
const (
	EventArchiveStarted    = "ARCHIVE_STARTED"
	EventArchiveCompleted  = "ARCHIVE_COMPLETED"
	EventArchiveDeleted    = "ARCHIVE_DELETED"
	EventDeletionStep      = "DELETION_STEP"
	EventDeletionCompleted = "DELETION_COMPLETED"
	EventDeletionFailed    = "DELETION_FAILED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
			h.logger.Debug("live: client registered", slog.String("room", client.Room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.closeSend()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("live: client unregistered", slog.String("room", client.Room))
		}
	}
}

// BroadcastToRoom отправляет событие всем клиентам комнаты. Отправка
// неблокирующая: клиент с переполненным каналом пропускается.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("live: failed to marshal message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.trySend(messageBytes)
	}
}
