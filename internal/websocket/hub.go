package websocket

import (
	"bytes"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"tradebots/internal/metrics"
	"tradebots/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sync.Pool для JSON буферов, чтобы не аллоцировать на каждый Broadcast
var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

// broadcastBufferSize - ёмкость очереди broadcast
const broadcastBufferSize = 256

// Hub управляет всеми активными WebSocket соединениями
//
// Рассылает события изменений стратегий и ботов всем подключенным клиентам
// (strategyCreated, botUpdated и т.д.). Клиенты только читают поток,
// входящие сообщения игнорируются.
//
// Использование:
// 1. Создать hub: hub := NewHub(logger)
// 2. Запустить в горутине: go hub.Run()
// 3. Передать в сервисы: strategyService.SetWebSocketHub(hub)
// 4. При завершении: hub.Stop()
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once

	clientCount atomic.Int64
	dropped     atomic.Int64

	logger *zap.Logger
	mu     sync.RWMutex
}

// NewHub создает новый Hub. nil logger заменяется на zap.NewNop().
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(zap.String("component", "websocket")),
	}
}

// Run запускает главный цикл Hub
//
// Должен запускаться в отдельной горутине: go hub.Run()
// Завершается после Stop().
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			total := h.clientCount.Add(1)
			metrics.WebSocketClients.Set(float64(total))
			h.logger.Debug("client connected", zap.Int64("clients", total))

		case client := <-h.unregister:
			h.remove(client)
			h.logger.Debug("client disconnected", zap.Int64("clients", h.clientCount.Load()))

		case message := <-h.broadcast:
			// копируем список под коротким RLock, отправляем без блокировки
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var slow []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}

			for _, client := range slow {
				h.remove(client)
			}
			if len(slow) > 0 {
				h.logger.Warn("removed slow clients",
					zap.Int("removed", len(slow)),
					zap.Int64("clients", h.clientCount.Load()),
				)
			}
		}
	}
}

// remove удаляет клиента и закрывает его канал (идемпотентно)
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.WebSocketClients.Set(float64(h.clientCount.Add(-1)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.clientCount.Store(0)
	metrics.WebSocketClients.Set(0)
}

// Stop останавливает Run и закрывает все соединения
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast сериализует сообщение и ставит его в очередь рассылки.
// Не блокирует: при переполненной очереди сообщение отбрасывается.
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer jsonBufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}

	data := bytes.TrimRight(buf.Bytes(), "\n")

	// буфер вернётся в пул, поэтому копируем
	msg := make([]byte, len(data))
	copy(msg, data)

	h.BroadcastRaw(msg)
}

// BroadcastRaw ставит в очередь уже сериализованные данные
func (h *Hub) BroadcastRaw(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
		metrics.WebSocketDroppedMessages.Inc()
	}
}

// BroadcastChange рассылает событие изменения стратегии или бота
func (h *Hub) BroadcastChange(event *models.ChangeEvent) {
	msg, err := NewChangeMessage(event)
	if err != nil {
		h.logger.Error("failed to build change message", zap.Error(err))
		return
	}

	metrics.ChangeEventsBroadcast.WithLabelValues(string(msg.Type)).Inc()
	h.Broadcast(msg)
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// DroppedMessages возвращает количество отброшенных сообщений
func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}
