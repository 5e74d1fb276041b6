package model

import "encoding/json"

// Websocket event names shared by server and client.
const (
	EventNewMessage     = "newMessage"
	EventGetOnlineUsers = "getOnlineUsers"
)

type (
	// Event is the envelope for every frame on the realtime channel.
	Event struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
)

func NewEvent(name string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{Event: name, Data: raw}, nil
}
