// websocket/constants.go
package websocket

import (
	"time"
)

// Константы для WebSocket-соединения
const (
	// Время ожидания записи сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания сообщения от клиента
	pongWait = 60 * time.Second

	// Период отправки пинг-сообщений
	pingPeriod = (pongWait * 9) / 10

	// Клиент присылает только служебные сообщения
	maxMessageSize = 4 * 1024

	// Размер очереди исходящих сообщений клиента
	sendBufferSize = 16

	// Таймаут расчета прогноза при подключении
	initialForecastTimeout = 30 * time.Second
)

// Типы сообщений ленты
const (
	MessageForecast = "forecast"
	MessageError    = "error"
	MessagePing     = "ping"
	MessagePong     = "pong"
)
