package httpapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"ideora.org/internal/audit"
	"ideora.org/internal/auth"
	"ideora.org/internal/obs"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	GroupID  string `json:"group_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.register(w, r)
	case http.MethodGet:
		a.listUsers(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, r, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	role := auth.RoleUser
	if req.Role != "" {
		role = auth.Role(req.Role)
		if !role.Valid() || role == auth.RoleAdmin {
			writeError(w, r, http.StatusBadRequest, "invalid role")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		GroupID:      strings.TrimSpace(req.GroupID),
	}
	if err := a.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrConflict) {
			writeError(w, r, http.StatusConflict, "name or email already registered")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "user.register", map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
	})

	w.Header().Set("Location", "/v1/users/"+user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin accepts an OAuth2-style form post: username holds the
// email address. Every failure is the same 401 so callers cannot probe
// which accounts exist.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := a.authn.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.CountAuthFailure("bad_credentials")
			unauthorized(w, r, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	token, expiresAt, err := a.authn.IssueToken(user, a.cfg.TokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "user.login", map[string]any{"user_id": user.ID})

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	users, err := a.users.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []*auth.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	GroupID    *string `json:"group_id"`
	InvestorID *string `json:"investor_id"`
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/users/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, id)
	case http.MethodPatch:
		a.updateUser(w, r, id)
	case http.MethodDelete:
		a.disableUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	user, err := a.users.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// updateUser lets a user rename themselves; role, group and investor
// assignments are admin-only.
func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	caller, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	isAdmin := caller.Role == auth.RoleAdmin
	if !isAdmin && caller.ID != id {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !isAdmin && (req.Role != nil || req.GroupID != nil || req.InvestorID != nil) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	upd := auth.UserUpdate{Name: req.Name, GroupID: req.GroupID, InvestorID: req.InvestorID}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		upd.Role = &role
	}

	user, err := a.users.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "resource not found")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrConflict):
			writeError(w, r, http.StatusConflict, "name already taken")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "user.update", map[string]any{"target": id})
	writeJSON(w, http.StatusOK, user)
}

// disableUser soft-deletes the account. Outstanding tokens stop
// resolving on the next request.
func (a *API) disableUser(w http.ResponseWriter, r *http.Request, id string) {
	caller, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if caller.Role != auth.RoleAdmin && caller.ID != id {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if err := a.users.SetDisabled(r.Context(), id, true); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	_ = audit.LogEvent(r.Context(), "user.disable", map[string]any{"target": id})
	w.WriteHeader(http.StatusNoContent)
}
