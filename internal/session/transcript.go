package session

import (
	"sort"
	"sync"

	"github.com/timebank/chat-client/internal/domain"
)

// Transcript — упорядоченный список сообщений одной комнаты. Три источника
// (REST-история, optimistic-отправки, входящие фреймы) сходятся здесь;
// список append-only хронологический, id уникальны.
type Transcript struct {
	mu   sync.Mutex
	msgs []domain.Message
	ids  map[int64]struct{}

	// onUpdate дёргается после каждой мутации списка — это контракт
	// scroll-to-latest для UI.
	onUpdate func()
}

func NewTranscript(onUpdate func()) *Transcript {
	return &Transcript{
		ids:      make(map[int64]struct{}),
		onUpdate: onUpdate,
	}
}

// Seed заменяет REST-префикс списка отсортированной историей. Optimistic-хвост
// переживает повторную загрузку: перечитывание истории не должно терять
// ещё не подтверждённые отправки.
func (t *Transcript) Seed(history []domain.Message) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	t.mu.Lock()
	var tail []domain.Message
	for _, m := range t.msgs {
		if m.Optimistic {
			tail = append(tail, m)
		}
	}

	t.msgs = t.msgs[:0]
	t.ids = make(map[int64]struct{}, len(history)+len(tail))
	for _, m := range history {
		if _, ok := t.ids[m.ID]; ok {
			continue
		}
		t.ids[m.ID] = struct{}{}
		t.msgs = append(t.msgs, m)
	}
	for _, m := range tail {
		if _, ok := t.ids[m.ID]; ok {
			continue
		}
		t.ids[m.ID] = struct{}{}
		t.msgs = append(t.msgs, m)
	}
	t.mu.Unlock()

	t.notify()
}

// Append добавляет сообщение в хвост. Повторный id — отказ, список не
// мутируется.
func (t *Transcript) Append(m domain.Message) error {
	t.mu.Lock()
	if _, ok := t.ids[m.ID]; ok {
		t.mu.Unlock()
		return domain.ErrDuplicateID
	}
	t.ids[m.ID] = struct{}{}
	t.msgs = append(t.msgs, m)
	t.mu.Unlock()

	t.notify()
	return nil
}

// Messages возвращает снапшот списка.
func (t *Transcript) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.msgs)
}

func (t *Transcript) notify() {
	if t.onUpdate != nil {
		t.onUpdate()
	}
}
