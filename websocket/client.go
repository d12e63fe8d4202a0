// websocket/client.go
package websocket

import (
	"github.com/gorilla/websocket"
)

// Client подписчик ленты прогнозов одного региона
type Client struct {
	RegionID int
	Socket   *websocket.Conn
	Send     chan []byte

	// Запросы pong от readPump; канал не закрывается
	pong chan struct{}
}

// Message сообщение ленты
type Message struct {
	Type     string      `json:"type"`
	DaerahID int         `json:"daerah_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// update прогноз для рассылки подписчикам региона
type update struct {
	regionID int
	payload  []byte
}
