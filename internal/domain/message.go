package domain

import (
	"sync"
	"time"
)

const KindText = "text"

type Message struct {
	ID         int64     `json:"id"`
	Sender     UserRef   `json:"sender"`
	ReceiverID *int64    `json:"receiver_id,omitempty"`
	GroupID    *int64    `json:"group_id,omitempty"`
	Body       string    `json:"message"`
	Kind       string    `json:"message_type"`
	CreatedAt  time.Time `json:"created_at"`
	Optimistic bool      `json:"-"`
}

var (
	tempMu   sync.Mutex
	lastTemp int64
)

// TempID выдаёт клиентский id для локально созданного сообщения.
// Отрицательный UnixNano никогда не пересечётся с серверными id; строго
// убывающая последовательность страхует от коллизии в один тик.
func TempID(now time.Time) int64 {
	tempMu.Lock()
	defer tempMu.Unlock()

	id := -now.UnixNano()
	if id >= lastTemp {
		id = lastTemp - 1
	}
	lastTemp = id
	return id
}
