package httpapi

import (
	"net/http"
	"strings"

	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
)

type commentRequest struct {
	RelatedID string `json:"related_id"`
	Content   string `json:"content"`
	Rating    int    `json:"rating"`
}

func (a *API) handleCommentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createComment(w, r)
	case http.MethodGet:
		a.listComments(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, r, http.StatusBadRequest, "content is required")
		return
	}
	if _, err := a.store.Ideations().Find(r.Context(), req.RelatedID); err != nil {
		handleStoreError(w, r, err)
		return
	}

	c := &platform.Comment{
		RelatedID: req.RelatedID,
		Content:   req.Content,
		Rating:    req.Rating,
		UserID:    user.ID,
	}
	if err := a.store.Comments().Create(r.Context(), c); err != nil {
		handleStoreError(w, r, err)
		return
	}
	if err := a.authz.GrantWrite(r.Context(), c.ID, user.ID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	relatedID := strings.TrimSpace(r.URL.Query().Get("related"))
	if relatedID == "" {
		writeError(w, r, http.StatusBadRequest, "related query parameter is required")
		return
	}
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	comments, err := a.store.Comments().ListByRelated(r.Context(), relatedID, offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*platform.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": comments})
}

type updateCommentRequest struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

func (a *API) handleCommentResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/comment/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if err := a.authz.Require(r.Context(), user, authz.ResourceComment, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		var req updateCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		c, err := a.store.Comments().Update(r.Context(), id, platform.CommentUpdate{
			Content: req.Content,
			Rating:  req.Rating,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := a.authz.Require(r.Context(), user, authz.ResourceComment, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		if err := a.store.Comments().Delete(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

type attachmentRequest struct {
	FileName  string `json:"file_name"`
	FilePath  string `json:"file_path"`
	RelatedID string `json:"related_id"`
	Kind      string `json:"kind"`
}

func (a *API) handleAttachmentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createAttachment(w, r)
	case http.MethodGet:
		a.listAttachments(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// createAttachment records metadata only; the bytes are expected to
// already live in object storage at file_path. Attaching to an
// ideation requires its write grant.
func (a *API) createAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req attachmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FileName) == "" || strings.TrimSpace(req.FilePath) == "" {
		writeError(w, r, http.StatusBadRequest, "file_name and file_path are required")
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceIdeation, req.RelatedID); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	kind := platform.AttachmentKind(req.Kind)
	if kind != platform.AttachmentImage {
		kind = platform.AttachmentFile
	}
	att := &platform.Attachment{
		FileName:  req.FileName,
		FilePath:  req.FilePath,
		RelatedID: req.RelatedID,
		Kind:      kind,
	}
	if err := a.store.Attachments().Create(r.Context(), att); err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}

func (a *API) listAttachments(w http.ResponseWriter, r *http.Request) {
	relatedID := strings.TrimSpace(r.URL.Query().Get("related"))
	if relatedID == "" {
		writeError(w, r, http.StatusBadRequest, "related query parameter is required")
		return
	}
	items, err := a.store.Attachments().ListByRelated(r.Context(), relatedID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []*platform.Attachment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleAttachmentResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/attachment/")
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
	att, err := a.store.Attachments().Find(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceIdeation, att.RelatedID); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if err := a.store.Attachments().Delete(r.Context(), id); err != nil {
		handleStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
