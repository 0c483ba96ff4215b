package mockbackend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/timebank/chat-client/internal/auth"
	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/rest"
	"github.com/timebank/chat-client/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Server — мок платформенного бэкенда: REST-эндпоинты сообщений плюс
// ws-топики /ws/chat/{kind}/{identifier}/. Держит всё в памяти, нужен для
// локальной разработки chat-cli и интеграционных тестов клиента.
type Server struct {
	store    *Store
	hub      *Hub
	secret   string
	upgrader websocket.Upgrader
}

func NewServer(store *Store, secret string) *Server {
	return &Server{
		store:  store,
		hub:    NewHub(),
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/messages/private/", s.listConversations)
		r.Get("/messages/private/{userId}/", s.privateMessages)
		r.Get("/messages/group/{groupId}/", s.groupMessages)
		r.Post("/messages/send/", s.sendMessage)
		r.Get("/users/{id}/", s.getUser)
		r.Get("/groups/{id}/", s.getGroup)
	})

	r.Get("/ws/chat/{kind}/{identifier}/", s.handleWS)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing token"})
			return
		}
		claims, err := auth.ValidateToken(s.secret, raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyClaims, claims)))
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(ctxKeyClaims).(*auth.Claims)
	return c
}

// GET /api/messages/private/{userId}/?offset&limit
func (s *Server) privateMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	other, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}
	offset, limit := pageParams(r)
	items := s.store.PrivateBetween(claims.UserID, other, offset, limit)
	if items == nil {
		items = []rest.PrivateMessageItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /api/messages/group/{groupId}/?offset&limit
func (s *Server) groupMessages(w http.ResponseWriter, r *http.Request) {
	gid, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid group id"})
		return
	}
	offset, limit := pageParams(r)
	items := s.store.GroupHistory(gid, offset, limit)
	if items == nil {
		items = []rest.GroupMessageItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// POST /api/messages/send/ — persist-and-respond: запись возвращается
// отправителю, по сокету она не рассылается.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req rest.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if req.MessageType == "" {
		req.MessageType = "text"
	}

	if req.IsGroupChat {
		if req.GroupID == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "group_id is required"})
			return
		}
		item := s.store.SaveGroup(*req.GroupID, claims.UserID, req.Message, req.MessageType)
		writeJSON(w, http.StatusCreated, item)
		return
	}

	if req.OtherUserID == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "other_user_id is required"})
		return
	}
	item := s.store.SavePrivate(claims.UserID, *req.OtherUserID, req.Message, req.MessageType)
	writeJSON(w, http.StatusCreated, item)
}

// GET /api/messages/private/
func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	convs := s.store.Conversations(claims.UserID)
	if convs == nil {
		convs = []domain.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

// GET /api/users/{id}/
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}
	u, ok := s.store.User(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GET /api/groups/{id}/
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid group id"})
		return
	}
	g, ok := s.store.Group(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "group not found"})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// WS endpoint: GET /ws/chat/{kind}/{identifier}/?token=...
// Семантика как у реального бэкенда: persist, затем broadcast всему топику,
// отправитель включительно.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ValidateToken(s.secret, token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	kind := chi.URLParam(r, "kind")
	identifier := chi.URLParam(r, "identifier")
	if kind != "user" && kind != "group" {
		http.Error(w, "invalid chat kind", http.StatusBadRequest)
		return
	}
	topic := kind + ":" + identifier

	wsc, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("mock ws upgrade failed", slog.Any("err", err))
		return
	}

	c := &conn{ws: wsc}
	s.hub.Add(topic, c)
	slog.Info("mock ws joined", "topic", topic, "user", claims.Username)

	s.readLoop(c, topic, kind, identifier, claims)

	s.hub.Remove(topic, c)
	_ = wsc.Close()
	slog.Info("mock ws left", "topic", topic, "user", claims.Username)
}

func (s *Server) readLoop(c *conn, topic, kind, identifier string, claims *auth.Claims) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		frame, err := ws.DecodeFrame(data)
		if err != nil {
			continue
		}

		s.persist(kind, identifier, claims, frame)

		s.hub.Broadcast(topic, ws.ChatFrame{
			User:        claims.Username,
			Message:     frame.Message,
			MessageType: frame.MessageType,
		})
	}
}

func (s *Server) persist(kind, identifier string, claims *auth.Claims, frame ws.ChatFrame) {
	switch kind {
	case "group":
		gid, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return
		}
		s.store.SaveGroup(gid, claims.UserID, frame.Message, frame.MessageType)
	case "user":
		// идентификатор вида "<min>_<max>"; получатель — второй id пары
		parts := strings.SplitN(identifier, "_", 2)
		if len(parts) != 2 {
			return
		}
		a, errA := strconv.ParseInt(parts[0], 10, 64)
		b, errB := strconv.ParseInt(parts[1], 10, 64)
		if errA != nil || errB != nil {
			return
		}
		receiver := a
		if receiver == claims.UserID {
			receiver = b
		}
		s.store.SavePrivate(claims.UserID, receiver, frame.Message, frame.MessageType)
	}
}

func pageParams(r *http.Request) (offset, limit int) {
	limit = 50
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}
