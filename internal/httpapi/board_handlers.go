package httpapi

import (
	"net/http"
	"strings"

	"ideora.org/internal/audit"
	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
)

type boardRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (a *API) handleBoardsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createBoard(w, r)
	case http.MethodGet:
		a.listBoards(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// Boards are written by administrators only; the board policy checks
// the role, not a per-resource grant.
func (a *API) createBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceBoard, ""); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req boardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, r, http.StatusBadRequest, "title is required")
		return
	}

	b := &platform.Board{
		Category: platform.BoardCategory(req.Category),
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := a.store.Boards().Create(r.Context(), b); err != nil {
		handleStoreError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "board.create", map[string]any{"board_id": b.ID})

	w.Header().Set("Location", "/v1/board/"+b.ID)
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) listBoards(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category := platform.BoardCategory(strings.TrimSpace(r.URL.Query().Get("category")))
	items, err := a.store.Boards().List(r.Context(), category, offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []*platform.Board{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type updateBoardRequest struct {
	Category *string `json:"category"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
}

func (a *API) handleBoardResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/board/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method == http.MethodGet {
		b, err := a.store.Boards().Find(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}

	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if err := a.authz.Require(r.Context(), user, authz.ResourceBoard, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		var req updateBoardRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		upd := platform.BoardUpdate{Title: req.Title, Content: req.Content}
		if req.Category != nil {
			category := platform.BoardCategory(*req.Category)
			upd.Category = &category
		}
		b, err := a.store.Boards().Update(r.Context(), id, upd)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodDelete:
		if err := a.authz.Require(r.Context(), user, authz.ResourceBoard, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		if err := a.store.Boards().Delete(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) handleNewsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.store.News().List(r.Context(), offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []*platform.News{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleNewsResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/news/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	n, err := a.store.News().Find(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
