package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserItem struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type UserResponse struct {
	User UserItem `json:"user"`
}

type UsersResponse struct {
	Users []UserItem `json:"users"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

type RoomResponse struct {
	RoomID string `json:"roomId"`
	Exists bool   `json:"exists"`
}

type SessionParticipant struct {
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

type SessionItem struct {
	RoomID          string               `json:"roomId"`
	CreatorID       *int64               `json:"creatorId,omitempty"`
	CreatorUsername string               `json:"creatorUsername,omitempty"`
	Participants    []SessionParticipant `json:"participants"`
	CreatedAt       time.Time            `json:"createdAt"`
	LastActivityAt  time.Time            `json:"lastActivityAt"`
}

type SessionsResponse struct {
	Sessions []SessionItem `json:"sessions"`
}

type ICEServer struct {
	URLs       string `json:"urls"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

type TurnCredentialsResponse struct {
	ICEServers []ICEServer `json:"iceServers"`
}
