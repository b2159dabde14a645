package httpapi

import (
	"net/http"
	"strings"
	"time"

	"ideora.org/internal/audit"
	"ideora.org/internal/auth"
	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
)

func (a *API) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	themes, err := a.store.Themes().List(r.Context())
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if themes == nil {
		themes = []*platform.Theme{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": themes})
}

type ideationRequest struct {
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	ThemeID          string     `json:"theme_id"`
	PresentationURL  string     `json:"presentation_url"`
	PresentationDate *time.Time `json:"presentation_date"`
	CloseDate        *time.Time `json:"close_date"`
	InvestmentGoal   int64      `json:"investment_goal"`
	InvestmentTerms  string     `json:"investment_terms"`
}

func (a *API) handleIdeationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createIdeation(w, r)
	case http.MethodGet:
		a.listIdeations(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// createIdeation persists the proposal and then grants the owner write
// access. The ideation is not visible through write paths until the
// grant lands; a failed grant leaves it readable but immutable rather
// than owned by nobody and writable by anybody.
func (a *API) createIdeation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req ideationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, r, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.ThemeID) == "" {
		writeError(w, r, http.StatusBadRequest, "theme_id is required")
		return
	}

	it := &platform.Ideation{
		Title:            strings.TrimSpace(req.Title),
		Content:          req.Content,
		ThemeID:          req.ThemeID,
		PresentationURL:  req.PresentationURL,
		PresentationDate: req.PresentationDate,
		CloseDate:        req.CloseDate,
		UserID:           user.ID,
		InvestmentGoal:   req.InvestmentGoal,
		InvestmentTerms:  req.InvestmentTerms,
	}
	if err := a.store.Ideations().Create(r.Context(), it); err != nil {
		handleStoreError(w, r, err)
		return
	}
	if err := a.authz.GrantWrite(r.Context(), it.ID, user.ID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "ideation.create", map[string]any{"ideation_id": it.ID})

	w.Header().Set("Location", "/v1/ideation/"+it.ID)
	writeJSON(w, http.StatusCreated, it)
}

func (a *API) listIdeations(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	themeID := strings.TrimSpace(r.URL.Query().Get("theme"))

	groups, err := a.store.Ideations().ListGroupedByTheme(r.Context(), themeID, offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if groups == nil {
		groups = []*platform.ThemeIdeations{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": groups})
}

func (a *API) handleIdeationResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/ideation/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getIdeation(w, r, id)
	case http.MethodPatch:
		a.updateIdeation(w, r, id)
	case http.MethodDelete:
		a.deleteIdeation(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// getIdeation is readable anonymously; only an authenticated owner is
// excluded from the view count.
func (a *API) getIdeation(w http.ResponseWriter, r *http.Request, id string) {
	viewerID := ""
	if user, ok := auth.UserFromContext(r.Context()); ok {
		viewerID = user.ID
	}
	if err := a.store.Ideations().IncrementViewCount(r.Context(), id, viewerID); err != nil {
		handleStoreError(w, r, err)
		return
	}
	it, err := a.store.Ideations().Find(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

type updateIdeationRequest struct {
	Title            *string    `json:"title"`
	Content          *string    `json:"content"`
	ThemeID          *string    `json:"theme_id"`
	PresentationURL  *string    `json:"presentation_url"`
	PresentationDate *time.Time `json:"presentation_date"`
	CloseDate        *time.Time `json:"close_date"`
	Status           *string    `json:"status"`
	InvestmentGoal   *int64     `json:"investment_goal"`
	InvestmentTerms  *string    `json:"investment_terms"`
}

// updateIdeation checks the write grant before touching storage, so a
// caller without access cannot learn whether the id exists.
func (a *API) updateIdeation(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceIdeation, id); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	var req updateIdeationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := platform.IdeationUpdate{
		Title:            req.Title,
		Content:          req.Content,
		ThemeID:          req.ThemeID,
		PresentationURL:  req.PresentationURL,
		PresentationDate: req.PresentationDate,
		CloseDate:        req.CloseDate,
		InvestmentGoal:   req.InvestmentGoal,
		InvestmentTerms:  req.InvestmentTerms,
	}
	if req.Status != nil {
		status := platform.IdeationStatus(*req.Status)
		upd.Status = &status
	}

	it, err := a.store.Ideations().Update(r.Context(), id, upd)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "ideation.update", map[string]any{"ideation_id": id})
	writeJSON(w, http.StatusOK, it)
}

func (a *API) deleteIdeation(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceIdeation, id); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if err := a.store.Ideations().Delete(r.Context(), id); err != nil {
		handleStoreError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "ideation.delete", map[string]any{"ideation_id": id})
	w.WriteHeader(http.StatusNoContent)
}
