// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/LilVoxy/harga_pangan/forecast"
	"github.com/LilVoxy/harga_pangan/metrics"
	"github.com/LilVoxy/harga_pangan/models"
	"github.com/LilVoxy/harga_pangan/utils"
)

// ForecastSource источник прогноза, отправляемого подписчику при подключении
type ForecastSource interface {
	Predict(ctx context.Context, regionID int) (*forecast.Result, error)
}

// Manager менеджер подписчиков ленты прогнозов.
// Карта клиентов принадлежит горутине Run, остальные обращаются к ней через каналы.
type Manager struct {
	clients    map[int]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan update
	done       chan struct{}

	source  ForecastSource
	metrics *metrics.Metrics
	logger  *utils.AppLogger
	count   atomic.Int64
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS проверяется на уровне middleware
	},
}

// NewManager создает менеджер ленты
func NewManager(source ForecastSource, m *metrics.Metrics, logger *utils.AppLogger) *Manager {
	return &Manager{
		clients:    make(map[int]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan update, 64),
		done:       make(chan struct{}),
		source:     source,
		metrics:    m,
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены контекста
func (manager *Manager) Run(ctx context.Context) {
	defer func() {
		close(manager.done)
		for _, clients := range manager.clients {
			for client := range clients {
				close(client.Send)
			}
		}
		manager.clients = nil
		manager.count.Store(0)
		manager.metrics.FeedClients.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			manager.logger.Info("Лента прогнозов остановлена")
			return

		case client := <-manager.register:
			if manager.clients[client.RegionID] == nil {
				manager.clients[client.RegionID] = make(map[*Client]bool)
			}
			manager.clients[client.RegionID][client] = true
			manager.metrics.FeedClients.Set(float64(manager.count.Add(1)))
			manager.logger.Info("👤 Подписчик региона %d подключился", client.RegionID)

		case client := <-manager.unregister:
			manager.remove(client)

		case u := <-manager.broadcast:
			// Рассылаем прогноз подписчикам региона
			for client := range manager.clients[u.regionID] {
				select {
				case client.Send <- u.payload:
				default:
					// Медленный клиент отключается
					manager.remove(client)
				}
			}
			manager.metrics.FeedBroadcast.Inc()
		}
	}
}

func (manager *Manager) remove(client *Client) {
	clients := manager.clients[client.RegionID]
	if !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(manager.clients, client.RegionID)
	}
	close(client.Send)
	manager.metrics.FeedClients.Set(float64(manager.count.Add(-1)))
	manager.logger.Info("👤 Подписчик региона %d отключился", client.RegionID)
}

// ClientCount возвращает количество подключенных подписчиков
func (manager *Manager) ClientCount() int {
	return int(manager.count.Load())
}

// Publish отправляет прогноз подписчикам региона.
// После остановки менеджера вызов ничего не делает.
func (manager *Manager) Publish(result *forecast.Result) {
	payload, err := json.Marshal(Message{Type: MessageForecast, DaerahID: result.DaerahID, Data: result})
	if err != nil {
		manager.logger.Error("❌ Ошибка кодирования прогноза: %v", err)
		return
	}
	select {
	case manager.broadcast <- update{regionID: result.DaerahID, payload: payload}:
	case <-manager.done:
	}
}

// HandleConnections обработчик подключения к ленте /ws/prediksi/{id_daerah}
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	// Получаем ID региона из URL
	regionID, err := strconv.Atoi(mux.Vars(r)["id_daerah"])
	if err != nil {
		http.Error(w, "Невалидный ID региона", http.StatusBadRequest)
		return
	}

	// Устанавливаем WebSocket-соединение
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		manager.logger.Error("❌ Ошибка при установке WebSocket-соединения: %v", err)
		return
	}

	client := &Client{
		RegionID: regionID,
		Socket:   conn,
		Send:     make(chan []byte, sendBufferSize),
		pong:     make(chan struct{}, 1),
	}

	// Текущий прогноз отправляется первым сообщением
	client.Send <- manager.currentForecast(r.Context(), regionID)

	select {
	case manager.register <- client:
	case <-manager.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(manager)
}

// currentForecast рассчитывает прогноз региона для нового подписчика
func (manager *Manager) currentForecast(ctx context.Context, regionID int) []byte {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initialForecastTimeout)
	defer cancel()

	msg := Message{Type: MessageForecast, DaerahID: regionID}
	result, err := manager.source.Predict(ctx, regionID)
	if err != nil {
		msg.Type = MessageError
		msg.Error = publicError(err)
	} else {
		msg.Data = result
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		manager.logger.Error("❌ Ошибка кодирования сообщения: %v", err)
		payload = []byte(`{"type":"error"}`)
	}
	return payload
}

// publicError скрывает подробности ошибок хранилища от клиента
func publicError(err error) string {
	var e *models.Error
	switch {
	case models.KindOf(err) == models.KindConnection:
		return "Database connection failed"
	case errors.As(err, &e) && e.Message != "":
		return e.Message
	default:
		return err.Error()
	}
}

// HandleStatus возвращает количество подписчиков ленты
func (manager *Manager) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   false,
		"message": "Success",
		"data": map[string]int{
			"clients": manager.ClientCount(),
		},
	})
	if err != nil {
		manager.logger.Error("❌ Ошибка при отправке статуса ленты: %v", err)
	}
}
