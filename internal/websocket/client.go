package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Send     chan OutgoingMessage
	Hub      *Hub
}

const (
	writeWait  = 10 * time.Second    // 单次写超时
	pongWait   = 60 * time.Second    // 读超时
	pingPeriod = (pongWait * 9) / 10 // 心跳发送周期
)

// 写协程
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭 Send，通知前端
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				return
			}

		// 定时发送 ping 维持连接健康
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// 读协程
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg IncomingMessage
		if err := c.Conn.ReadJSON(&msg); err != nil {
			return
		}

		c.Hub.incoming <- IncomingMessage{
			From:  c.PlayerID,
			Event: msg.Event,
			Data:  msg.Data,
		}
	}
}
