package rest

import (
	"time"

	"github.com/timebank/chat-client/internal/domain"
)

// DTO повторяют сериализаторы бэкенда один в один.

type GroupMessageItem struct {
	ID          int64       `json:"id"`
	User        domain.User `json:"user"`
	Message     string      `json:"message"`
	MessageType string      `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
}

type PrivateMessageItem struct {
	ID          int64       `json:"id"`
	Sender      domain.User `json:"sender"`
	Receiver    domain.User `json:"receiver"`
	Message     string      `json:"message"`
	MessageType string      `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
	IsRead      bool        `json:"is_read"`
}

type SendMessageRequest struct {
	IsGroupChat bool   `json:"is_group_chat"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	GroupID     *int64 `json:"group_id,omitempty"`
	OtherUserID *int64 `json:"other_user_id,omitempty"`
}

// ToDomain привязывает сообщение к группе: в ответе эндпоинта group id
// не дублируется, комната задана самим путём запроса.
func (m GroupMessageItem) ToDomain(groupID int64) domain.Message {
	return domain.Message{
		ID:        m.ID,
		Sender:    m.User.Ref(),
		GroupID:   &groupID,
		Body:      m.Message,
		Kind:      m.MessageType,
		CreatedAt: m.CreatedAt,
	}
}

func (m PrivateMessageItem) ToDomain() domain.Message {
	rid := m.Receiver.ID
	return domain.Message{
		ID:         m.ID,
		Sender:     m.Sender.Ref(),
		ReceiverID: &rid,
		Body:       m.Message,
		Kind:       m.MessageType,
		CreatedAt:  m.CreatedAt,
	}
}
