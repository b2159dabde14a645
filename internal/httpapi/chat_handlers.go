package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"ideora.org/internal/auth"
	"ideora.org/internal/obs"
	"ideora.org/internal/platform"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin)
	},
}

type createRoomRequest struct {
	UserIDs []string `json:"user_ids"`
}

func (a *API) handleChatRooms(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req createRoomRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		members := req.UserIDs
		if !contains(members, user.ID) {
			members = append(members, user.ID)
		}
		room := &platform.ChatRoom{UserIDs: members}
		if err := a.store.Chats().CreateRoom(r.Context(), room); err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	case http.MethodGet:
		rooms, err := a.store.Chats().ListRoomsByUser(r.Context(), user.ID)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		if rooms == nil {
			rooms = []*platform.ChatRoom{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": rooms})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleChatRoomResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/chat/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	room, err := a.store.Chats().FindRoom(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if !contains(room.UserIDs, user.ID) && user.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if err := a.store.Chats().DeleteRoom(r.Context(), id); err != nil {
		handleStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	if roomID == "" {
		writeError(w, r, http.StatusBadRequest, "room query parameter is required")
		return
	}
	room, err := a.store.Chats().FindRoom(r.Context(), roomID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if !contains(room.UserIDs, user.ID) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	history, err := a.store.Chats().History(r.Context(), roomID, offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": history})
}

type wsInbound struct {
	Body string `json:"body"`
}

// handleChatWS relays room traffic over a WebSocket. Browsers cannot
// set Authorization headers on WebSocket dials, so the token travels
// in the query string and is resolved here instead of in withAuth.
func (a *API) handleChatWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	user, err := a.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrInactiveAccount) {
			obs.CountAuthFailure("invalid_token")
			unauthorized(w, r, "invalid token")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "authentication error")
		return
	}

	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	room, err := a.store.Chats().FindRoom(r.Context(), roomID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if !contains(room.UserIDs, user.ID) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sub := a.broker.Subscribe(ctx, roomID)

	// Writer: broker fan-out to this socket.
	go func() {
		for msg := range sub {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	// Reader: persist then publish, so history never misses a line
	// that subscribers saw.
	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if strings.TrimSpace(in.Body) == "" {
			continue
		}
		msg := platform.ChatMessage{
			RoomID:   roomID,
			UserID:   user.ID,
			UserName: user.Name,
			Body:     in.Body,
			SentAt:   time.Now().UTC(),
		}
		if err := a.store.Chats().AppendMessage(ctx, &msg); err != nil {
			continue
		}
		a.broker.Publish(msg)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
