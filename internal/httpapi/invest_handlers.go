package httpapi

import (
	"net/http"
	"strings"

	"ideora.org/internal/audit"
	"ideora.org/internal/auth"
	"ideora.org/internal/authz"
	"ideora.org/internal/platform"
)

type investorRequest struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Image                 string `json:"image"`
	AssetsUnderManagement string `json:"assets_under_management"`
}

func (a *API) handleInvestorsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createInvestor(w, r)
	case http.MethodGet:
		a.listInvestors(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// createInvestor registers an investment company. The grant goes to
// the caller's group so colleagues can maintain the profile; callers
// without a group get a personal grant.
func (a *API) createInvestor(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if user.Role != auth.RoleInvestor && user.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req investorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	inv := &platform.Investor{
		Name:                  strings.TrimSpace(req.Name),
		Description:           req.Description,
		Image:                 req.Image,
		AssetsUnderManagement: req.AssetsUnderManagement,
	}
	if err := a.store.Investors().Create(r.Context(), inv); err != nil {
		handleStoreError(w, r, err)
		return
	}
	subject := user.GroupID
	if subject == "" {
		subject = user.ID
	}
	if err := a.authz.GrantWrite(r.Context(), inv.ID, subject); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "investor.create", map[string]any{"investor_id": inv.ID})

	w.Header().Set("Location", "/v1/investor/"+inv.ID)
	writeJSON(w, http.StatusCreated, inv)
}

func (a *API) listInvestors(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.store.Investors().List(r.Context(), offset, limit)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []*platform.Investor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type updateInvestorRequest struct {
	Name                  *string `json:"name"`
	Description           *string `json:"description"`
	Image                 *string `json:"image"`
	AssetsUnderManagement *string `json:"assets_under_management"`
}

func (a *API) handleInvestorResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/investor/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method == http.MethodGet {
		inv, err := a.store.Investors().Find(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
		return
	}

	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if err := a.authz.Require(r.Context(), user, authz.ResourceInvestor, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		var req updateInvestorRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := a.store.Investors().Update(r.Context(), id, platform.InvestorUpdate{
			Name:                  req.Name,
			Description:           req.Description,
			Image:                 req.Image,
			AssetsUnderManagement: req.AssetsUnderManagement,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	case http.MethodDelete:
		if err := a.authz.Require(r.Context(), user, authz.ResourceInvestor, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		if err := a.store.Investors().Delete(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

type investmentRequest struct {
	IdeationID string `json:"ideation_id"`
	InvestorID string `json:"investor_id"`
	Amount     int64  `json:"amount"`
}

func (a *API) handleInvestmentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createInvestment(w, r)
	case http.MethodGet:
		a.listInvestments(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// createInvestment grants write access to both the caller and their
// group, so an individual's record stays manageable by the company.
func (a *API) createInvestment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if user.Role != auth.RoleInvestor && user.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req investmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	investorID := req.InvestorID
	if investorID == "" {
		investorID = user.InvestorID
	}
	if investorID == "" {
		writeError(w, r, http.StatusBadRequest, "investor_id is required")
		return
	}

	inv := &platform.Investment{
		IdeationID: req.IdeationID,
		InvestorID: investorID,
		Amount:     req.Amount,
	}
	if err := a.store.Investments().Create(r.Context(), inv); err != nil {
		handleStoreError(w, r, err)
		return
	}
	if err := a.authz.GrantWrite(r.Context(), inv.ID, user.ID, user.GroupID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "investment.create", map[string]any{
		"investment_id": inv.ID,
		"ideation_id":   inv.IdeationID,
	})

	writeJSON(w, http.StatusCreated, inv)
}

func (a *API) listInvestments(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	ideationID := strings.TrimSpace(r.URL.Query().Get("ideation"))
	if ideationID == "" {
		writeError(w, r, http.StatusBadRequest, "ideation query parameter is required")
		return
	}
	items, err := a.store.Investments().ListByIdeation(r.Context(), ideationID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	if items == nil {
		items = []*platform.Investment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type updateInvestmentRequest struct {
	Amount   *int64 `json:"amount"`
	Approved *bool  `json:"approved"`
}

func (a *API) handleInvestmentResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "/v1/investments/")
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
		if err := a.authz.Require(r.Context(), user, authz.ResourceInvestment, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		var req updateInvestmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := a.store.Investments().Update(r.Context(), id, platform.InvestmentUpdate{
			Amount:   req.Amount,
			Approved: req.Approved,
		})
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	case http.MethodDelete:
		if err := a.authz.Require(r.Context(), user, authz.ResourceInvestment, id); err != nil {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		if err := a.store.Investments().Delete(r.Context(), id); err != nil {
			handleStoreError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "investment.delete", map[string]any{"investment_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}
