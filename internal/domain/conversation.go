package domain

import "time"

// Conversation — сводка приватного диалога для списка чатов.
type Conversation struct {
	OtherUser   User       `json:"other_user"`
	LastMessage string     `json:"last_message_content"`
	LastSentAt  *time.Time `json:"last_message_timestamp"`
	Unread      int        `json:"unread_count"`
}
