package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/timebank/chat-client/internal/auth"
	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/mockbackend"
	"github.com/timebank/chat-client/internal/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newBackend(t *testing.T) (*mockbackend.Store, *httptest.Server) {
	t.Helper()
	store := mockbackend.NewStore()
	store.AddUser(domain.User{ID: 5, Username: "ana", FirstName: "Ana"})
	store.AddUser(domain.User{ID: 9, Username: "boris", FirstName: "Boris"})
	store.AddGroup(domain.Group{ID: 7, Name: "woodworking"})

	srv := httptest.NewServer(mockbackend.NewServer(store, testSecret).Router())
	t.Cleanup(srv.Close)
	return store, srv
}

func clientFor(t *testing.T, srv *httptest.Server, userID int64, username string) *rest.Client {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, username, time.Hour)
	require.NoError(t, err)
	return rest.NewClient(srv.URL+"/api", token)
}

func TestPrivateMessagesRoundTrip(t *testing.T) {
	store, srv := newBackend(t)
	store.SavePrivate(9, 5, "hi", "text")
	store.SavePrivate(5, 9, "hello", "text")

	c := clientFor(t, srv, 5, "ana")
	items, err := c.PrivateMessages(context.Background(), 9, 0, 50)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "hi", items[0].Message)
	assert.Equal(t, int64(9), items[0].Sender.ID)
	assert.Equal(t, int64(5), items[0].Receiver.ID)

	msg := items[0].ToDomain()
	assert.Equal(t, "boris", msg.Sender.Username)
	require.NotNil(t, msg.ReceiverID)
	assert.Equal(t, int64(5), *msg.ReceiverID)
}

func TestGroupMessagesRoundTrip(t *testing.T) {
	store, srv := newBackend(t)
	store.SaveGroup(7, 9, "circle tonight?", "text")

	c := clientFor(t, srv, 5, "ana")
	items, err := c.GroupMessages(context.Background(), 7, 0, 50)
	require.NoError(t, err)
	require.Len(t, items, 1)

	msg := items[0].ToDomain(7)
	require.NotNil(t, msg.GroupID)
	assert.Equal(t, int64(7), *msg.GroupID)
	assert.Equal(t, "circle tonight?", msg.Body)
}

func TestSendMessageValidation(t *testing.T) {
	_, srv := newBackend(t)
	c := clientFor(t, srv, 5, "ana")
	ctx := context.Background()

	_, err := c.SendMessage(ctx, rest.SendMessageRequest{Message: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = c.SendMessage(ctx, rest.SendMessageRequest{Message: "hi", IsGroupChat: true})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = c.SendMessage(ctx, rest.SendMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestSendMessageCreatesRecord(t *testing.T) {
	store, srv := newBackend(t)
	c := clientFor(t, srv, 5, "ana")

	other := int64(9)
	created, err := c.SendMessage(context.Background(), rest.SendMessageRequest{
		Message:     "via rest",
		OtherUserID: &other,
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "via rest", created.Message)
	assert.Equal(t, "text", created.MessageType)

	items := store.PrivateBetween(5, 9, 0, 50)
	require.Len(t, items, 1)
}

func TestPrivateConversations(t *testing.T) {
	store, srv := newBackend(t)
	store.SavePrivate(9, 5, "first", "text")
	store.SavePrivate(5, 9, "second", "text")

	c := clientFor(t, srv, 5, "ana")
	convs, err := c.PrivateConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "boris", convs[0].OtherUser.Username)
	assert.Equal(t, "second", convs[0].LastMessage)
}

func TestUserAndGroupProfiles(t *testing.T) {
	_, srv := newBackend(t)
	c := clientFor(t, srv, 5, "ana")
	ctx := context.Background()

	u, err := c.User(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "boris", u.Username)

	g, err := c.Group(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "woodworking", g.Name)

	_, err = c.User(ctx, 404)
	assert.Error(t, err)
}

func TestUnauthorizedToken(t *testing.T) {
	_, srv := newBackend(t)
	c := rest.NewClient(srv.URL+"/api", "garbage")

	_, err := c.PrivateMessages(context.Background(), 9, 0, 50)
	assert.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	_, srv := newBackend(t)
	c := clientFor(t, srv, 5, "ana")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.PrivateMessages(ctx, 9, 0, 50)
	assert.Error(t, err)
}

func TestNotFoundStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, "tok")
	_, err := c.PrivateConversations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
