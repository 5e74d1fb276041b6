package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	User struct {
		ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
		Email      string             `bson:"email" json:"email" validate:"required"`
		FullName   string             `bson:"fullName" json:"fullName" validate:"required"`
		Password   string             `bson:"password" json:"-"`
		ProfilePic string             `bson:"profilePic" json:"profilePic"`
		CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	}
)
