package server

import (
	"encoding/json"
	"net/http"

	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *HttpServer) HandleGetUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callerID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		users, err := s.userRepo.ListOthers(r.Context(), id)
		if err != nil {
			log.Error("list users failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if users == nil {
			users = []*model.User{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func (s *HttpServer) HandleGetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selfID, ok := callerID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		partnerID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		messages, err := s.messageRepo.GetConversation(r.Context(), selfID, partnerID)
		if err != nil {
			log.Error("get conversation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if messages == nil {
			messages = []*model.Message{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func (s *HttpServer) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selfID, ok := callerID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		receiverID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var input model.SendMessageInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if input.Text == "" && input.Image == "" {
			writeError(w, http.StatusBadRequest, "message text or image is required")
			return
		}

		msg := &model.Message{
			SenderID:   selfID,
			ReceiverID: receiverID,
			Text:       input.Text,
			Image:      input.Image,
		}
		if _, err := s.messageRepo.Create(r.Context(), msg); err != nil {
			log.Error("create message failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		// Relay to the recipient's live connections; nothing to do when
		// the recipient is offline.
		s.hub.SendNewMessage(msg)

		writeJSON(w, http.StatusCreated, msg)
	}
}
