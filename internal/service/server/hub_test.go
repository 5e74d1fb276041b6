package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func dialWS(t *testing.T, ts *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Cookie", cookie.String())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *model.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event model.Event
	require.NoError(t, conn.ReadJSON(&event))
	return &event
}

func httpSignup(t *testing.T, ts *httptest.Server, fullName, email string) (*model.User, *http.Cookie) {
	t.Helper()
	body := strings.NewReader(`{"fullName":"` + fullName + `","email":"` + email + `","password":"password123"}`)
	resp, err := http.Post(ts.URL+"/api/auth/signup", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return &user, c
		}
	}
	t.Fatal("no session cookie")
	return nil, nil
}

func TestWS_PresenceBroadcast(t *testing.T) {
	s, _, _, presence := newTestServer()
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	alice, aliceCookie := httpSignup(t, ts, "Alice", "alice@example.com")
	bob, bobCookie := httpSignup(t, ts, "Bob", "bob@example.com")

	aliceConn := dialWS(t, ts, aliceCookie)

	event := readEvent(t, aliceConn)
	assert.Equal(t, model.EventGetOnlineUsers, event.Event)
	var online []string
	require.NoError(t, json.Unmarshal(event.Data, &online))
	assert.Equal(t, []string{alice.ID.Hex()}, online)

	dialWS(t, ts, bobCookie)

	// Alice sees Bob come online.
	event = readEvent(t, aliceConn)
	require.Equal(t, model.EventGetOnlineUsers, event.Event)
	require.NoError(t, json.Unmarshal(event.Data, &online))
	assert.Len(t, online, 2)
	assert.Contains(t, online, bob.ID.Hex())

	got, err := presence.OnlineUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWS_NewMessageRelay(t *testing.T) {
	s, _, _, _ := newTestServer()
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	_, aliceCookie := httpSignup(t, ts, "Alice", "alice@example.com")
	bob, bobCookie := httpSignup(t, ts, "Bob", "bob@example.com")

	bobConn := dialWS(t, ts, bobCookie)
	// drain Bob's own presence broadcast
	event := readEvent(t, bobConn)
	require.Equal(t, model.EventGetOnlineUsers, event.Event)

	// Alice messages Bob over the REST API
	req, err := http.NewRequest(http.MethodPost,
		ts.URL+"/api/message/send/"+bob.ID.Hex(),
		strings.NewReader(`{"text":"hello bob"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(aliceCookie)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	event = readEvent(t, bobConn)
	require.Equal(t, model.EventNewMessage, event.Event)

	var msg model.Message
	require.NoError(t, json.Unmarshal(event.Data, &msg))
	assert.Equal(t, "hello bob", msg.Text)
	assert.Equal(t, bob.ID, msg.ReceiverID)
}

func TestWS_Unauthenticated(t *testing.T) {
	s, _, _, _ := newTestServer()
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_SendToUnknownUserIsNoop(t *testing.T) {
	hub := NewHub(newFakePresence())

	// no connections registered; must not panic
	hub.SendNewMessage(&model.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   primitive.NewObjectID(),
		ReceiverID: primitive.NewObjectID(),
		Text:       "into the void",
	})
}
