package mockbackend

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteJSON(v)
}

// Hub раскладывает соединения по топикам ("user:1_2", "group:7").
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*conn]struct{})}
}

func (h *Hub) Add(topic string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cs, ok := h.topics[topic]
	if !ok {
		cs = make(map[*conn]struct{})
		h.topics[topic] = cs
	}
	cs[c] = struct{}{}
}

func (h *Hub) Remove(topic string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cs, ok := h.topics[topic]; ok {
		delete(cs, c)
		if len(cs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Broadcast шлёт фрейм всем подключённым к топику, включая отправителя —
// клиент рассчитывает на echo собственных сообщений.
func (h *Hub) Broadcast(topic string, v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if cs, ok := h.topics[topic]; ok {
		for c := range cs {
			_ = c.send(v) // best-effort
		}
	}
}
