package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"
	"github.com/Askiater/speak-to-me/internal/security"
	"github.com/Askiater/speak-to-me/internal/service"
	httpmw "github.com/Askiater/speak-to-me/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	authSvc *service.AuthService
	roomSvc *service.RoomService

	iceServers   []ICEServer
	cookieSecure bool
}

func NewHandler(auth *service.AuthService, room *service.RoomService, iceServers []ICEServer, cookieSecure bool) *Handler {
	return &Handler{
		authSvc:      auth,
		roomSvc:      room,
		iceServers:   iceServers,
		cookieSecure: cookieSecure,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username and password required"})
		return
	}

	user, token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		slog.Error("handler.Login:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.authSvc.TokenTTL() / time.Second),
	})

	writeJSON(w, http.StatusOK, UserResponse{User: UserItem{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}})
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := httpmw.IdentityFromCtx(r.Context())
	if !ok || id.UserID == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: UserItem{
		ID:       *id.UserID,
		Username: id.Username,
		IsAdmin:  id.IsAdmin,
	}})
}

// POST /api/auth/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username and password required"})
		return
	}

	user, err := h.authSvc.CreateUser(r.Context(), req.Username, req.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username already exists"})
		case errors.Is(err, security.ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "password too short"})
		default:
			slog.Error("handler.CreateUser:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{User: UserItem{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}})
}

// GET /api/auth/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.ListUsers(r.Context())
	if err != nil {
		slog.Error("handler.ListUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	resp := UsersResponse{Users: make([]UserItem, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, UserItem{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
	}
	writeJSON(w, http.StatusOK, resp)
}

// PUT /api/auth/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username required"})
		return
	}

	if err := h.authSvc.UpdateUser(r.Context(), id, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, security.ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "password too short"})
		default:
			slog.Error("handler.UpdateUser:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
}

// DELETE /api/auth/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	actor, _ := httpmw.IdentityFromCtx(r.Context())
	var actorID int64
	if actor.UserID != nil {
		actorID = *actor.UserID
	}

	if err := h.authSvc.DeleteUser(r.Context(), actorID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfDelete):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cannot delete your own account"})
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			slog.Error("handler.DeleteUser:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// POST /api/rooms/create
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := httpmw.IdentityFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	roomID, err := h.roomSvc.CreateRoom(r.Context(), id)
	if err != nil {
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, CreateRoomResponse{RoomID: roomID})
}

// GET /api/rooms/{roomId} — публичная проверка существования.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if _, err := h.roomSvc.GetRoom(roomID); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, RoomResponse{RoomID: roomID, Exists: true})
}

// GET /api/rooms/admin/sessions — живой снапшот реестра.
func (h *Handler) AdminSessions(w http.ResponseWriter, r *http.Request) {
	rooms := h.roomSvc.ListSessions()

	resp := SessionsResponse{Sessions: make([]SessionItem, 0, len(rooms))}
	for _, rm := range rooms {
		item := SessionItem{
			RoomID:          rm.ID,
			CreatorID:       rm.CreatorID,
			CreatorUsername: rm.CreatorUsername,
			Participants:    make([]SessionParticipant, 0, len(rm.Participants)),
			CreatedAt:       rm.CreatedAt,
			LastActivityAt:  rm.LastActivityAt,
		}
		for _, p := range rm.Participants {
			item.Participants = append(item.Participants, SessionParticipant{
				Username: p.Username,
				JoinedAt: p.JoinedAt,
			})
		}
		resp.Sessions = append(resp.Sessions, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/turn-credentials
func (h *Handler) TurnCredentials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TurnCredentialsResponse{ICEServers: h.iceServers})
}
