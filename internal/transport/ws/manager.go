package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/timebank/chat-client/internal/domain"

	"github.com/gorilla/websocket"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusErrored    Status = "errored"
)

// Manager владеет единственным сокет-слотом процесса. Одновременно живёт не
// больше одного соединения; переключение комнат идёт через Disconnect.
// Автопереподключения нет: обрыв терминален, retry — явное действие caller-а.
type Manager struct {
	mu        sync.Mutex
	dialer    *websocket.Dialer
	baseURL   string
	token     string
	registry  *Registry
	conn      *websocket.Conn
	status    Status
	lastErr   error
	room      domain.RoomKey
	attempted bool
}

func NewManager(baseURL, token string) *Manager {
	return &Manager{
		dialer:   websocket.DefaultDialer,
		baseURL:  baseURL,
		token:    token,
		registry: NewRegistry(),
		status:   StatusIdle,
	}
}

func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastErr == nil {
		return ""
	}
	return m.lastErr.Error()
}

// Err — последняя транспортная ошибка, обёрнутая в domain.ErrTransport;
// nil, пока соединение живо или слот свободен.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) Room() domain.RoomKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room
}

// Connect открывает сокет для комнаты. Повторный вызов без Disconnect,
// как и вызов без токена — тихий no-op (идемпотентная защита слота).
func (m *Manager) Connect(ctx context.Context, room domain.RoomKey) {
	m.mu.Lock()
	if m.status == StatusOpen || m.status == StatusConnecting || m.attempted {
		m.mu.Unlock()
		slog.Debug("ws connect skipped", "status", m.status, "room", room.String())
		return
	}
	if m.token == "" {
		m.mu.Unlock()
		slog.Error("ws connect skipped: no access token")
		return
	}
	m.attempted = true
	m.status = StatusConnecting
	m.lastErr = nil
	m.room = room
	m.mu.Unlock()

	endpoint := m.endpoint(room)
	slog.Info("ws connecting", "room", room.String())

	conn, _, err := m.dialer.DialContext(ctx, endpoint, nil)

	m.mu.Lock()
	if m.status != StatusConnecting {
		// Disconnect успел сбросить слот, пока шёл dial.
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.status = StatusErrored
		m.lastErr = fmt.Errorf("%w: %v", domain.ErrTransport, err)
		m.conn = nil
		m.mu.Unlock()
		slog.Warn("ws connect failed", "room", room.String(), slog.Any("err", err))
		return
	}
	m.conn = conn
	m.status = StatusOpen
	m.mu.Unlock()
	slog.Info("ws connected", "room", room.String())

	go m.readLoop(conn)
}

func (m *Manager) endpoint(room domain.RoomKey) string {
	q := url.Values{}
	q.Set("token", m.token)
	return m.baseURL + "/chat/" + string(room.Kind) + "/" + room.Identifier + "/?" + q.Encode()
}

// Disconnect закрывает сокет нормальным кодом и всегда приводит слот в Idle.
// Registry чистится здесь же: handler-ы прошлой комнаты не должны стрелять
// по фреймам следующей.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.status = StatusIdle
	m.lastErr = nil
	m.attempted = false
	m.room = domain.RoomKey{}
	m.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"), deadline)
		_ = conn.Close()
		slog.Info("ws disconnected")
	}

	m.registry.Clear()
}

// Send сериализует payload в текстовый фрейм. Fire-and-forget: очереди и
// повторов нет, при закрытом сокете возвращаем ErrNotConnected.
func (m *Manager) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusOpen || m.conn == nil {
		return domain.ErrNotConnected
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.status = StatusErrored
		m.lastErr = fmt.Errorf("%w: %v", domain.ErrTransport, err)
		return m.lastErr
	}
	return nil
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.conn == conn { // игнорируем обрыв уже вытесненного соединения
				m.conn = nil
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					m.status = StatusClosed
				} else {
					m.status = StatusErrored
					m.lastErr = fmt.Errorf("%w: %v", domain.ErrTransport, err)
				}
			}
			m.mu.Unlock()
			slog.Debug("ws read loop finished", slog.Any("err", err))
			return
		}
		m.registry.Dispatch(data)
	}
}
