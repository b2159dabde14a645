package httpapi

import (
	"net/http"

	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
)

// handleFinanceResource serves /v1/finance/{ideationID}. Financial
// plans are sensitive, so even reads require the ideation's write
// grant. The grant check always runs first: callers without access get
// 403 whether or not the ideation exists.
func (a *API) handleFinanceResource(w http.ResponseWriter, r *http.Request) {
	ideationID, ok := pathID(r, "/v1/finance/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.authz.Require(r.Context(), user, authz.ResourceFinancial, ideationID); err != nil {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	switch r.Method {
	case http.MethodGet:
		f, err := a.store.Financials().FindByIdeation(r.Context(), ideationID)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	case http.MethodPost:
		var f platform.Financial
		if err := decodeJSON(w, r, &f); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		f.ID = ""
		f.IdeationID = ideationID
		if err := a.store.Financials().Create(r.Context(), &f); err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, &f)
	case http.MethodPut:
		var f platform.Financial
		if err := decodeJSON(w, r, &f); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := a.store.Financials().Update(r.Context(), ideationID, &f)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := a.store.Financials().DeleteByIdeation(r.Context(), ideationID); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}
