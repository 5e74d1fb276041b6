package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*model.User)}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ListOthers(_ context.Context, selfID primitive.ObjectID) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for id, u := range f.users {
		if id == selfID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	f.users[user.ID] = &cp
	return user.ID, nil
}

func (f *fakeUserStore) UpdateProfilePic(_ context.Context, id primitive.ObjectID, profilePic string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.ProfilePic = profilePic
	cp := *u
	return &cp, nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*model.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) Create(_ context.Context, msg *model.Message) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	cp := *msg
	f.messages = append(f.messages, &cp)
	return msg.ID, nil
}

func (f *fakeMessageStore) GetConversation(_ context.Context, a, b primitive.ObjectID) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Message
	for _, m := range f.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakePresence struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: make(map[string]bool)}
}

func (f *fakePresence) AddOnline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
	return nil
}

func (f *fakePresence) RemoveOnline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.online, userID)
	return nil
}

func (f *fakePresence) OnlineUsers(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.online))
	for id := range f.online {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type memoryDenylist struct {
	mu     sync.Mutex
	denied map[string]bool
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{denied: make(map[string]bool)}
}

func (m *memoryDenylist) Deny(_ context.Context, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[token] = true
	return nil
}

func (m *memoryDenylist) IsDenied(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.denied[token], nil
}

// newTestServer wires an HttpServer onto in-memory stores and presence.
func newTestServer() (*HttpServer, *fakeUserStore, *fakeMessageStore, *fakePresence) {
	users := newFakeUserStore()
	messages := newFakeMessageStore()
	authService := auth.NewService("test-secret", newMemoryDenylist())

	s := NewHttpServer("localhost:0", users, messages, authService, nil)
	presence := newFakePresence()
	s.hub = NewHub(presence)
	return s, users, messages, presence
}
