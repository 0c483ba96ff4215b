package mockbackend

import (
	"sync"
	"time"

	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/rest"
)

// Store — вся "база" мок-бэкенда в памяти. Переиспользуем rest-DTO как
// формат хранения: это ровно те записи, которые уходят клиенту.
type Store struct {
	mu        sync.Mutex
	users     map[int64]domain.User
	groups    map[int64]domain.Group
	private   []rest.PrivateMessageItem
	groupMsgs map[int64][]rest.GroupMessageItem
	nextID    int64
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]domain.User),
		groups:    make(map[int64]domain.Group),
		groupMsgs: make(map[int64][]rest.GroupMessageItem),
	}
}

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddGroup(g domain.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

func (s *Store) User(id int64) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UserByName(username string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *Store) Group(id int64) (domain.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	return g, ok
}

func (s *Store) SavePrivate(senderID, receiverID int64, body, kind string) rest.PrivateMessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := rest.PrivateMessageItem{
		ID:          s.nextID,
		Sender:      s.users[senderID],
		Receiver:    s.users[receiverID],
		Message:     body,
		MessageType: kind,
		CreatedAt:   time.Now(),
	}
	s.private = append(s.private, item)
	return item
}

func (s *Store) SaveGroup(groupID, senderID int64, body, kind string) rest.GroupMessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := rest.GroupMessageItem{
		ID:          s.nextID,
		User:        s.users[senderID],
		Message:     body,
		MessageType: kind,
		CreatedAt:   time.Now(),
	}
	s.groupMsgs[groupID] = append(s.groupMsgs[groupID], item)
	return item
}

// PrivateBetween отдаёт переписку двух пользователей в хронологическом
// порядке с offset/limit-пагинацией.
func (s *Store) PrivateBetween(a, b int64, offset, limit int) []rest.PrivateMessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []rest.PrivateMessageItem
	for _, m := range s.private {
		if (m.Sender.ID == a && m.Receiver.ID == b) || (m.Sender.ID == b && m.Receiver.ID == a) {
			out = append(out, m)
		}
	}
	return page(out, offset, limit)
}

func (s *Store) GroupHistory(groupID int64, offset, limit int) []rest.GroupMessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return page(s.groupMsgs[groupID], offset, limit)
}

// Conversations собирает сводки приватных диалогов пользователя.
func (s *Store) Conversations(userID int64) []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := make(map[int64]rest.PrivateMessageItem)
	for _, m := range s.private {
		var other int64
		switch userID {
		case m.Sender.ID:
			other = m.Receiver.ID
		case m.Receiver.ID:
			other = m.Sender.ID
		default:
			continue
		}
		if prev, ok := last[other]; !ok || m.CreatedAt.After(prev.CreatedAt) {
			last[other] = m
		}
	}

	out := make([]domain.Conversation, 0, len(last))
	for other, m := range last {
		ts := m.CreatedAt
		out = append(out, domain.Conversation{
			OtherUser:   s.users[other],
			LastMessage: m.Message,
			LastSentAt:  &ts,
		})
	}
	return out
}

// page отдаёт свежую страницу: offset отсчитывается от хвоста (как
// order_by("-created_at")[offset:offset+limit] у бэкенда), порядок внутри
// страницы хронологический.
func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items) - offset
	start := 0
	if limit > 0 && end-limit > 0 {
		start = end - limit
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
