package server

import "context"

const onlineUsersKey = "chat:online"

// The redis set survives server restarts, so presence stays correct
// across a reconnecting fleet of clients.

func (s *HttpServer) AddOnline(ctx context.Context, userID string) error {
	return s.redisService.SAdd(ctx, onlineUsersKey, userID)
}

func (s *HttpServer) RemoveOnline(ctx context.Context, userID string) error {
	return s.redisService.SRem(ctx, onlineUsersKey, userID)
}

func (s *HttpServer) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.redisService.SMembers(ctx, onlineUsersKey)
}
