package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/rest"
	"github.com/timebank/chat-client/internal/transport/ws"
)

type State string

const (
	StateClosed  State = "closed"
	StateOpening State = "opening"
	StateReady   State = "ready"
)

const historyPageSize = 50

// Target задаёт собеседника: либо другой пользователь, либо группа.
type Target struct {
	Kind        domain.RoomKind
	OtherUserID int64
	GroupID     int64
}

// Controller представляет один открытый диалог. Владеет списком сообщений
// комнаты и жизненным циклом единственного сокет-слота на время диалога.
type Controller struct {
	mu    sync.Mutex
	self  domain.User
	api   *rest.Client
	conn  *ws.Manager
	state State

	// epoch растёт на каждый Open/Close; результат REST-фетча применяется
	// только если сессия всё ещё та, для которой его запускали.
	epoch uint64

	target      Target
	room        domain.RoomKey
	counterpart *domain.User
	group       *domain.Group
	handler     *ws.Handler
	transcript  *Transcript
	historyErr  error

	onUpdate func()
}

func NewController(self domain.User, api *rest.Client, conn *ws.Manager, onUpdate func()) *Controller {
	return &Controller{
		self:     self,
		api:      api,
		conn:     conn,
		state:    StateClosed,
		onUpdate: onUpdate,
	}
}

// Open валидирует цель, сеет историю из REST, подтягивает профиль собеседника
// и занимает сокет-слот. Фейл истории не блокирует попытку сокета: сессия
// остаётся рабочей, historyErr отдаётся UI как retry-баннер.
func (c *Controller) Open(ctx context.Context, target Target) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return domain.ErrAlreadyOpen
	}

	room, err := roomFor(c.self.ID, target)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.epoch++
	epoch := c.epoch
	c.state = StateOpening
	c.target = target
	c.room = room
	c.counterpart = nil
	c.group = nil
	c.historyErr = nil
	c.transcript = NewTranscript(c.onUpdate)
	transcript := c.transcript
	c.mu.Unlock()

	history, histErr := c.fetchRoomData(ctx, epoch, target)

	c.mu.Lock()
	if c.epoch != epoch || c.state != StateOpening {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if histErr != nil {
		c.historyErr = fmt.Errorf("%w: %v", domain.ErrHistoryFetch, histErr)
		slog.Warn("session history fetch failed", "room", room.String(), slog.Any("err", histErr))
	}
	c.state = StateReady
	handler := ws.NewHandler(c.onFrame)
	c.handler = handler
	c.mu.Unlock()

	if histErr == nil {
		transcript.Seed(history)
	}

	c.conn.Registry().Add(handler)
	c.conn.Connect(ctx, room)

	// Close мог вклиниться между StateReady и подключением: тогда его
	// Disconnect снимал ещё не зарегистрированный handler и закрывал ещё не
	// открытый сокет. Перепроверяем epoch и откатываем оба действия сами.
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.conn.Registry().Remove(handler)
		c.conn.Disconnect()
		return domain.ErrSessionClosed
	}
	c.mu.Unlock()

	slog.Info("session open", "room", room.String())
	return nil
}

// fetchRoomData тянет историю и профиль собеседника. Профиль нужен только
// для отображения, его фейл не считается фатальным для истории.
func (c *Controller) fetchRoomData(ctx context.Context, epoch uint64, target Target) ([]domain.Message, error) {
	switch target.Kind {
	case domain.RoomGroup:
		group, err := c.api.Group(ctx, target.GroupID)
		if err != nil {
			slog.Debug("session group profile fetch failed", slog.Any("err", err))
		}
		items, err2 := c.api.GroupMessages(ctx, target.GroupID, 0, historyPageSize)
		c.applyProfile(epoch, nil, group)
		if err2 != nil {
			return nil, err2
		}
		msgs := make([]domain.Message, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.ToDomain(target.GroupID))
		}
		return msgs, nil

	default:
		user, err := c.api.User(ctx, target.OtherUserID)
		if err != nil {
			slog.Debug("session user profile fetch failed", slog.Any("err", err))
		}
		items, err2 := c.api.PrivateMessages(ctx, target.OtherUserID, 0, historyPageSize)
		c.applyProfile(epoch, user, nil)
		if err2 != nil {
			return nil, err2
		}
		msgs := make([]domain.Message, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.ToDomain())
		}
		return msgs, nil
	}
}

func (c *Controller) applyProfile(epoch uint64, user *domain.User, group *domain.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return // сессию успели закрыть, профиль уже никому не нужен
	}
	if user != nil {
		c.counterpart = user
	}
	if group != nil {
		c.group = group
	}
}

// Close идемпотентен: снимает handler, освобождает сокет-слот, выбрасывает
// локальный список.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.epoch++
	c.state = StateClosed
	handler := c.handler
	c.handler = nil
	c.transcript = nil
	c.counterpart = nil
	c.group = nil
	c.historyErr = nil
	room := c.room
	c.room = domain.RoomKey{}
	c.mu.Unlock()

	if handler != nil {
		c.conn.Registry().Remove(handler)
	}
	c.conn.Disconnect()
	slog.Info("session closed", "room", room.String())
}

// SendUserMessage сначала кладёт optimistic-запись (мгновенный отклик UI),
// затем шлёт фрейм. При ErrNotConnected запись остаётся непосланной —
// отката нет, индикация на совести caller-а.
func (c *Controller) SendUserMessage(body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	transcript := c.transcript
	target := c.target
	c.mu.Unlock()

	now := time.Now()
	msg := domain.Message{
		ID:         domain.TempID(now),
		Sender:     c.self.Ref(),
		Body:       body,
		Kind:       domain.KindText,
		CreatedAt:  now,
		Optimistic: true,
	}
	switch target.Kind {
	case domain.RoomGroup:
		gid := target.GroupID
		msg.GroupID = &gid
	default:
		rid := target.OtherUserID
		msg.ReceiverID = &rid
	}
	if err := transcript.Append(msg); err != nil {
		return err
	}

	if err := c.conn.Send(ws.ChatFrame{
		User:        c.self.Username,
		Message:     body,
		MessageType: domain.KindText,
	}); err != nil {
		slog.Warn("session send failed", slog.Any("err", err))
		return err
	}
	return nil
}

// onFrame — обработчик входящих фреймов. Эхо собственных отправок
// подавляется: их уже представляет optimistic-запись (канонический путь
// подтверждения — сокетный).
func (c *Controller) onFrame(data []byte) {
	frame, err := ws.DecodeFrame(data)
	if err != nil {
		slog.Debug("session frame dropped", slog.Any("err", err))
		return
	}

	c.mu.Lock()
	if c.state != StateReady || c.transcript == nil {
		c.mu.Unlock()
		return
	}
	if frame.User == c.self.Username {
		c.mu.Unlock()
		return
	}

	sender := domain.PlaceholderUser(frame.User)
	if c.counterpart != nil && frame.User == c.counterpart.Username {
		sender = c.counterpart.Ref()
	}
	transcript := c.transcript
	target := c.target
	c.mu.Unlock()

	now := time.Now()
	msg := domain.Message{
		ID:        domain.TempID(now),
		Sender:    sender,
		Body:      frame.Message,
		Kind:      frame.MessageType,
		CreatedAt: now,
	}
	switch target.Kind {
	case domain.RoomGroup:
		gid := target.GroupID
		msg.GroupID = &gid
	default:
		sid := c.self.ID
		msg.ReceiverID = &sid
	}

	if err := transcript.Append(msg); err != nil {
		slog.Debug("session frame append skipped", slog.Any("err", err))
	}
}

// ReloadHistory — ручной retry после HistoryFetchFailed. Optimistic-хвост
// переживает перечитывание.
func (c *Controller) ReloadHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	epoch := c.epoch
	target := c.target
	transcript := c.transcript
	c.mu.Unlock()

	history, err := c.fetchRoomData(ctx, epoch, target)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if err != nil {
		c.historyErr = fmt.Errorf("%w: %v", domain.ErrHistoryFetch, err)
		c.mu.Unlock()
		return c.historyErr
	}
	c.historyErr = nil
	c.mu.Unlock()

	transcript.Seed(history)
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Room() domain.RoomKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// HistoryErr — не nil, если последний фетч истории провалился.
func (c *Controller) HistoryErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyErr
}

func (c *Controller) Counterpart() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counterpart
}

func (c *Controller) GroupInfo() *domain.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

// Messages — снапшот списка сообщений; пустой срез для закрытой сессии.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	transcript := c.transcript
	c.mu.Unlock()

	if transcript == nil {
		return nil
	}
	return transcript.Messages()
}

func roomFor(selfID int64, target Target) (domain.RoomKey, error) {
	switch target.Kind {
	case domain.RoomGroup:
		return domain.GroupRoom(target.GroupID)
	case domain.RoomUser:
		return domain.PrivateRoom(selfID, target.OtherUserID)
	default:
		return domain.RoomKey{}, domain.ErrInvalidTarget
	}
}
