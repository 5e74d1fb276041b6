// Package chatstore holds the client-side conversation state: the
// partner list, the active conversation and its messages, and per-partner
// unread markers. It reacts to local actions and to realtime events from
// the server and keeps the three consistent.
package chatstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type (
	// MessageClient is the request/response side of the chat API.
	MessageClient interface {
		GetUsers(ctx context.Context) ([]*model.User, error)
		GetMessages(ctx context.Context, partnerID primitive.ObjectID) ([]*model.Message, error)
		SendMessage(ctx context.Context, partnerID primitive.ObjectID, input model.SendMessageInput) (*model.Message, error)
	}

	// Transport is the realtime event channel. One handler per event
	// name; Unsubscribe without a prior Subscribe is a no-op.
	Transport interface {
		Subscribe(event string, handler func(data json.RawMessage))
		Unsubscribe(event string)
	}

	// Notifier surfaces a single user-visible message per failed call.
	Notifier interface {
		Notify(message string)
	}

	Store struct {
		mu                sync.Mutex
		messages          []*model.Message
		users             []*model.User
		selectedUser      *model.User
		isUsersLoading    bool
		isMessagesLoading bool
		unread            map[primitive.ObjectID]bool

		client   MessageClient
		notifier Notifier
		onChange func()
	}
)

func New(client MessageClient, notifier Notifier) *Store {
	return &Store{
		unread:   make(map[primitive.ObjectID]bool),
		client:   client,
		notifier: notifier,
	}
}

// SetOnChange registers a hook invoked after every state change, outside
// the store lock. The UI uses it to schedule a redraw.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// LoadUsers replaces the partner list with the server's. On failure the
// previous list is kept.
func (s *Store) LoadUsers(ctx context.Context) {
	s.mu.Lock()
	s.isUsersLoading = true
	s.mu.Unlock()
	s.changed()

	users, err := s.client.GetUsers(ctx)

	s.mu.Lock()
	s.isUsersLoading = false
	if err == nil {
		s.users = users
	}
	s.mu.Unlock()

	if err != nil {
		s.notifyError(err, "Failed to load users")
	}
	s.changed()
}

// LoadMessages replaces the message list with the full history for one
// partner and clears that partner's unread marker. There is no
// cancellation: a slow response for a previously selected partner still
// lands when it arrives (see the store tests).
func (s *Store) LoadMessages(ctx context.Context, partnerID primitive.ObjectID) {
	s.mu.Lock()
	s.isMessagesLoading = true
	s.mu.Unlock()
	s.changed()

	messages, err := s.client.GetMessages(ctx, partnerID)

	s.mu.Lock()
	s.isMessagesLoading = false
	if err == nil {
		s.messages = messages
		delete(s.unread, partnerID)
	}
	s.mu.Unlock()

	if err != nil {
		s.notifyError(err, "Failed to load messages")
	}
	s.changed()
}

// MoveUserToTop moves a partner to the front of the list, keeping the
// relative order of everyone else. Unknown ids are a no-op.
func (s *Store) MoveUserToTop(userID primitive.ObjectID) {
	s.mu.Lock()
	s.moveUserToTopLocked(userID)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) moveUserToTopLocked(userID primitive.ObjectID) {
	idx := -1
	for i, u := range s.users {
		if u.ID == userID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}

	user := s.users[idx]
	copy(s.users[1:idx+1], s.users[:idx])
	s.users[0] = user
}

// SendMessage submits a message to the selected partner and appends the
// server's copy on success. Callers must have selected a conversation
// first. Nothing is appended before the call succeeds, so a failure
// needs no rollback.
func (s *Store) SendMessage(ctx context.Context, input model.SendMessageInput) {
	s.mu.Lock()
	selected := s.selectedUser
	s.mu.Unlock()

	msg, err := s.client.SendMessage(ctx, selected.ID, input)
	if err != nil {
		s.notifyError(err, "Message failed")
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.moveUserToTopLocked(selected.ID)
	s.mu.Unlock()
	s.changed()
}

// SubscribeToMessages registers the inbound-message handler on the
// transport. Whether an arriving message counts as read depends on the
// selection at event-handling time, not at subscription time.
func (s *Store) SubscribeToMessages(transport Transport) {
	transport.Subscribe(model.EventNewMessage, s.handleNewMessage)
}

// UnsubscribeFromMessages removes the inbound-message handler. Safe to
// call without a prior subscribe.
func (s *Store) UnsubscribeFromMessages(transport Transport) {
	transport.Unsubscribe(model.EventNewMessage)
}

func (s *Store) handleNewMessage(data json.RawMessage) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error("decode newMessage event failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	isFromSelected := s.selectedUser != nil && msg.SenderID == s.selectedUser.ID
	if isFromSelected {
		// Viewer is looking at this conversation, append directly.
		s.messages = append(s.messages, &msg)
	} else {
		s.unread[msg.SenderID] = true
	}
	s.moveUserToTopLocked(msg.SenderID)
	s.mu.Unlock()
	s.changed()
}

// SetSelectedUser switches the active conversation and clears the
// partner's unread marker. Loading the history is the caller's next
// step, not a side effect.
func (s *Store) SetSelectedUser(user *model.User) {
	s.mu.Lock()
	s.selectedUser = user
	if user != nil {
		delete(s.unread, user.ID)
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Users() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*model.User, len(s.users))
	copy(users, s.users)
	return users
}

func (s *Store) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]*model.Message, len(s.messages))
	copy(messages, s.messages)
	return messages
}

func (s *Store) SelectedUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedUser
}

func (s *Store) IsUsersLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isUsersLoading
}

func (s *Store) IsMessagesLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isMessagesLoading
}

// HasUnread reports whether a partner has messages received while their
// conversation was not active.
func (s *Store) HasUnread(userID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[userID]
}

// UnreadMap returns a copy of the unread marker set.
func (s *Store) UnreadMap() map[primitive.ObjectID]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[primitive.ObjectID]bool, len(s.unread))
	for id := range s.unread {
		m[id] = true
	}
	return m
}

// userMessager is implemented by API errors carrying a server-supplied
// message.
type userMessager interface {
	UserMessage() string
}

func (s *Store) notifyError(err error, fallback string) {
	message := fallback
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		message = um.UserMessage()
	}
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}
