package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/service/redis"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type (
	// UserStore is the slice of the user repository the server needs.
	UserStore interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
		ListOthers(ctx context.Context, selfID primitive.ObjectID) ([]*model.User, error)
		Create(ctx context.Context, user *model.User) (primitive.ObjectID, error)
		UpdateProfilePic(ctx context.Context, id primitive.ObjectID, profilePic string) (*model.User, error)
	}

	// MessageStore is the slice of the message repository the server needs.
	MessageStore interface {
		Create(ctx context.Context, msg *model.Message) (primitive.ObjectID, error)
		GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]*model.Message, error)
	}

	HttpServer struct {
		addr         string
		userRepo     UserStore
		messageRepo  MessageStore
		authService  *auth.Service
		redisService *redis.RedisService
		hub          *Hub
	}
)

func NewHttpServer(addr string, userRepo UserStore, messageRepo MessageStore,
	authService *auth.Service, redisSvc *redis.RedisService) *HttpServer {
	s := &HttpServer{
		addr:         addr,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		authService:  authService,
		redisService: redisSvc,
	}
	s.hub = NewHub(s)
	return s
}

func (s *HttpServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/signup", s.HandleSignup()).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.HandleLogin()).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.HandleLogout()).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/check", s.authService.Protect(s.HandleCheck())).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/update-profile", s.authService.Protect(s.HandleUpdateProfile())).Methods(http.MethodPut)

	r.HandleFunc("/api/message/users", s.authService.Protect(s.HandleGetUsers())).Methods(http.MethodGet)
	r.HandleFunc("/api/message/send/{id}", s.authService.Protect(s.HandleSendMessage())).Methods(http.MethodPost)
	r.HandleFunc("/api/message/{id}", s.authService.Protect(s.HandleGetMessages())).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.authService.Protect(s.HandleWS()))

	return r
}

func (s *HttpServer) Run() error {
	log.Info("server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response failed", zap.Error(err))
	}
}

// writeError sends the {"message": ...} error body every client-facing
// failure uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// callerID parses the authenticated user id stored by the middleware.
func callerID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(auth.UserID(r.Context()))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
