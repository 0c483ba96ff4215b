package ws

import (
	"log/slog"
	"sync"
)

// Handler получает каждый входящий фрейм. Оборачиваем функцию в структуру,
// чтобы подписку можно было сравнивать по ссылке (set-семантика add/remove).
type Handler struct {
	fn func(data []byte)
}

func NewHandler(fn func(data []byte)) *Handler {
	return &Handler{fn: fn}
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[*Handler]struct{}
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[*Handler]struct{})}
}

// Add — no-op, если handler уже зарегистрирован.
func (r *Registry) Add(h *Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[h]; ok {
		return
	}
	r.handlers[h] = struct{}{}
}

// Remove — no-op, если handler не зарегистрирован.
func (r *Registry) Remove(h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, h)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = make(map[*Handler]struct{})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// Dispatch вызывает каждый из текущих handler-ов ровно один раз.
// Паника в одном handler-е не мешает остальным.
func (r *Registry) Dispatch(data []byte) {
	r.mu.RLock()
	hs := make([]*Handler, 0, len(r.handlers))
	for h := range r.handlers {
		hs = append(hs, h)
	}
	r.mu.RUnlock()

	for _, h := range hs {
		invoke(h, data)
	}
}

func invoke(h *Handler, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("ws handler panic", slog.Any("panic", rec))
		}
	}()
	h.fn(data)
}
