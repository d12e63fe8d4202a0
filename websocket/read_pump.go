// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// readPump читает служебные сообщения клиента до разрыва соединения
func (c *Client) readPump(manager *Manager) {
	defer func() {
		// Отправляем сигнал отключения
		select {
		case manager.unregister <- c:
		case <-manager.done:
		}
		c.Socket.Close()
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				manager.logger.Error("❌ Ошибка чтения от подписчика региона %d: %v", c.RegionID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			manager.logger.Debug("Ошибка декодирования сообщения: %v", err)
			continue
		}

		if msg.Type == MessagePing {
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}
