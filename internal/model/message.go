package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	Message struct {
		ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
		SenderID   primitive.ObjectID `bson:"senderId" json:"senderId" validate:"required"`
		ReceiverID primitive.ObjectID `bson:"receiverId" json:"receiverId" validate:"required"`
		Text       string             `bson:"text,omitempty" json:"text,omitempty"`
		Image      string             `bson:"image,omitempty" json:"image,omitempty"`
		CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	}

	// SendMessageInput is the body of a send request. At least one of
	// Text and Image must be set.
	SendMessageInput struct {
		Text  string `json:"text,omitempty"`
		Image string `json:"image,omitempty"`
	}
)
