package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

// Формат фрейма совпадает в обе стороны:
// {"user": "...", "message": "...", "message_type": "text"}
type ChatFrame struct {
	User        string `json:"user"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
}

var ErrBadFrame = errors.New("malformed chat frame")

// DecodeFrame валидирует обязательные поля вместо слепого каста.
// Пустой user допустим — отправитель остаётся неопознанным, это решает
// сессия; пустой message делает фрейм бессмысленным и отбрасывается.
func DecodeFrame(data []byte) (ChatFrame, error) {
	var f ChatFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return ChatFrame{}, errors.Join(ErrBadFrame, err)
	}
	if strings.TrimSpace(f.Message) == "" {
		return ChatFrame{}, ErrBadFrame
	}
	if f.MessageType == "" {
		f.MessageType = "text"
	}
	return f, nil
}
